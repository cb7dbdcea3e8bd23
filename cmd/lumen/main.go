// Command lumen renders and previews component manifests.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vango-dev/lumen/internal/config"
	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli holds state shared by the commands of one invocation.
type cli struct {
	v       *viper.Viper
	cfgFile string
	stderr  io.Writer

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	root := newRootCmd(os.Stderr)
	if err := root.Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), stderr: stderr}

	root := &cobra.Command{
		Use:   "lumen",
		Short: "Render and preview reactive component manifests",
		Long: `Lumen renders component manifests into HTML documents.

A manifest declares components, directives, pipes and services with
templates, state and expression methods. Lumen can render the root
component once, publish the result to a file or S3 bucket, or serve a
live preview that re-renders as state changes and the manifest is edited.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.cfgFile, "config", "c", "", "config file (default: ./lumen.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	_ = c.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		renderCmd(c),
		serveCmd(c),
		checkCmd(c),
		explainCmd(),
		versionCmd(),
	)
	return root
}

// load binds the command's flags to configuration keys, reads
// configuration and builds the logger. manifest, when not empty, overrides
// the configured manifest path.
func (c *cli) load(cmd *cobra.Command, manifest string, flags map[string]string) error {
	for key, name := range flags {
		if err := c.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return errors.New("L040").Wrap(err)
		}
	}
	cfg, err := config.LoadWith(c.v, c.cfgFile, ".")
	if err != nil {
		return err
	}
	if manifest != "" {
		cfg.Manifest = manifest
	} else {
		cfg.Manifest = cfg.ManifestPath()
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, err := logging.New(c.stderr, level, cfg.Log.Format)
	if err != nil {
		return err
	}
	c.cfg, c.logger = cfg, logger
	return nil
}

func manifestArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
