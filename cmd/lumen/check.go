package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/internal/manifest"
	"github.com/vango-dev/lumen/pkg/reactive"
)

func checkCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check [manifest]",
		Short: "Validate a manifest without rendering it",
		Long: `Check decodes the manifest, resolves every reference and compiles
every method expression. It reports the first problem found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd, manifestArg(args), nil); err != nil {
				return err
			}
			m, err := manifest.Load(c.cfg.Manifest)
			if err != nil {
				return err
			}
			bundle, err := m.Build(reactive.New())
			if err != nil {
				return errors.FromError(err, "L002").WithFile(c.cfg.Manifest)
			}
			success(cmd.OutOrStdout(), "%s: %d components, root %s",
				c.cfg.Manifest, len(bundle.Components), bundle.Root)
			return nil
		},
	}
}

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long:  `Explain prints the meaning of an error code, or lists every code.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range errors.Codes() {
					t, _ := errors.Lookup(code)
					fmt.Fprintf(w, "%s  %-10s %s\n", code, t.Category, t.Message)
				}
				return nil
			}
			code := strings.ToUpper(args[0])
			t, ok := errors.Lookup(code)
			if !ok {
				return errors.New("L040").WithHint("run 'lumen explain' to list codes").
					Wrap(fmt.Errorf("unknown error code %q", args[0]))
			}
			fmt.Fprintf(w, "%s: %s (%s)\n\n%s\n", code, t.Message, t.Category, t.Detail)
			return nil
		},
	}
}
