package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/pkg/manifest"
	"github.com/vango-dev/fsroutes/pkg/router"
)

func genCmd() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the route manifest",
		Long: `Discover route files and write the route manifest.

The format is taken from --format, then output.format in fsroutes.json,
then the output file extension (.ts writes a TypeScript module, anything
else JSON).

The output is deterministic: running it multiple times produces identical
output unless the routes change.

Examples:
  fsroutes gen
  fsroutes gen -o src/routes.gen.ts
  fsroutes gen --format json -o routes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd.Context(), output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default from fsroutes.json)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json or ts")

	return cmd
}

func runGen(ctx context.Context, output, format string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	defer p.closeHooks()

	if output != "" {
		p.cfg.Output.File = output
	}
	if format != "" {
		if format != config.FormatJSON && format != config.FormatTS {
			return errors.New("E103").
				WithDetail("Unknown format " + format).
				WithSuggestion("Use --format json or --format ts")
		}
		p.cfg.Output.Format = format
	}

	opts, err := p.routerOptions()
	if err != nil {
		return err
	}

	routes, err := p.generate(ctx, opts)
	if err != nil {
		return err
	}
	info("Found %d routes", router.Count(routes))

	data, err := render(routes, p.encodeOptions(), p.cfg.OutputFormat())
	if err != nil {
		return err
	}

	path := p.cfg.OutputPath()
	if err := writeFile(path, data); err != nil {
		return err
	}

	success("Generated %s", path)
	return nil
}

// render encodes routes in the given format.
func render(routes []*router.Route, opts manifest.EncodeOptions, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if format == config.FormatTS {
		data, err = manifest.TypeScript(routes, opts)
	} else {
		data, err = manifest.Encode(routes, opts)
	}
	if err != nil {
		return nil, errors.New("E402").Wrap(err)
	}
	return data, nil
}

// writeFile writes data to path, creating parent directories. Unchanged
// files are left alone so file watchers downstream stay quiet.
func writeFile(path string, data []byte) error {
	if existing, err := os.ReadFile(path); err == nil && string(existing) == string(data) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New("E401").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E401").Wrap(err)
	}
	return nil
}
