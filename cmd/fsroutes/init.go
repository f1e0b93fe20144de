package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create fsroutes.json",
		Long: `Write a default fsroutes.json to the given directory (default: the
working directory).

Examples:
  fsroutes init
  fsroutes init ./web
  fsroutes init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")

	return cmd
}

func runInit(dir string, force bool) error {
	path := filepath.Join(dir, config.ConfigFileName)

	if config.Exists(dir) && !force {
		return errors.Newf(errors.CategoryConfig, "%s already exists", path).
			WithSuggestion("Use --force to overwrite it")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E105").Wrap(err)
	}

	cfg := config.New()
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	success("Created %s", path)
	routes := cfg.RoutesPath()
	if _, err := os.Stat(routes); err != nil {
		warn("Routes folder %s does not exist yet", routes)
		info("Add page files there to create routes")
	}
	return nil
}
