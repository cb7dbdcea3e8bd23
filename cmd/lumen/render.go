package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/internal/manifest"
	"github.com/vango-dev/lumen/internal/publish"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/element"
	"github.com/vango-dev/lumen/pkg/reactive"
)

func renderCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "render [manifest]",
		Short: "Render the root component to HTML",
		Long: `Render mounts the manifest's root component in a fresh document,
runs all pending updates and writes the serialized document.

The document is written to stdout unless --out or --publish is given.
--publish accepts a file path, file:// URL or s3://bucket/key.

Examples:
  lumen render app.yaml
  lumen render app.yaml --root app-page --out dist/index.html
  lumen render --publish s3://my-site/index.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.load(cmd, manifestArg(args), map[string]string{
				"root":         "root",
				"publish.dest": "publish",
			})
			if err != nil {
				return err
			}
			html, err := renderDocument(c.cfg.Manifest, c.cfg.Root, c.cfg.Tracing.TracerName)
			if err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
					return errors.New("L030").WithDetail(out).Wrap(err)
				}
				success(cmd.ErrOrStderr(), "wrote %s", out)
			}
			if dest := c.cfg.Publish.Dest; dest != "" {
				loc, err := publish.Publish(cmd.Context(), dest, []byte(html), publish.Options{
					Region:      c.cfg.Publish.Region,
					Endpoint:    c.cfg.Publish.Endpoint,
					ContentType: c.cfg.Publish.ContentType,
				})
				if err != nil {
					return err
				}
				success(cmd.ErrOrStderr(), "published %s", loc)
			}
			if out == "" && c.cfg.Publish.Dest == "" {
				_, err = cmd.OutOrStdout().Write([]byte(html + "\n"))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the document to this file")
	cmd.Flags().String("root", "", "root component selector (default from manifest)")
	cmd.Flags().String("publish", "", "publish destination")

	return cmd
}

// renderDocument renders the manifest's root once and returns the
// serialized document.
func renderDocument(path, root, tracer string) (string, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return "", err
	}
	rt := reactive.New()
	bundle, err := m.Build(rt)
	if err != nil {
		return "", errors.FromError(err, "L002").WithFile(path)
	}

	doc := dom.NewDocument()
	var failures []error
	app := element.NewApplication(doc, bundle.Injector,
		element.WithRuntime(rt),
		element.WithTracerName(tracer),
		element.WithErrorHandler(func(err error) { failures = append(failures, err) }),
	)
	if err := app.Bootstrap(bundle.Definitions()...); err != nil {
		return "", errors.New("L020").WithFile(path).Wrap(err)
	}
	if root == "" {
		root = bundle.Root
	}
	if _, err := app.Mount(root, doc.Body()); err != nil {
		return "", errors.New("L021").WithFile(path).Wrap(err)
	}
	rt.Flush()
	if len(failures) > 0 {
		return "", errors.New("L021").WithFile(path).Wrap(failures[0])
	}
	return doc.HTML(), nil
}
