package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/config"
)

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize showcase configuration and storage",
		Long: `Init creates the configuration directory with a default config.yaml,
records --data-dir in it when given, and attaches the configured backend
once so the data directory and its files exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.flagDataDir != "" && c.cfg.DataDir == "" {
				dataDir, err := c.resolveDataDir()
				if err != nil {
					return systemErr(err)
				}
				c.cfg.DataDir = dataDir
				if err := config.WriteFile(c.loader.Path(), c.cfg); err != nil {
					return systemErr(fmt.Errorf("write config: %w", err))
				}
			}

			return c.withApp(cmd.Context(), func(a *app) error {
				out := cmd.OutOrStdout()
				if c.flagJSON {
					return printJSON(out, map[string]string{
						"config":  c.loader.Path(),
						"data":    a.dataDir,
						"backend": c.cfg.Backend,
					})
				}
				fmt.Fprintln(out, "Showcase initialized successfully")
				fmt.Fprintln(out, "  config: ", c.loader.Path())
				fmt.Fprintln(out, "  data:   ", a.dataDir)
				fmt.Fprintln(out, "  backend:", c.cfg.Backend)
				return nil
			})
		},
	}
}
