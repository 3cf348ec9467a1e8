package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/showcase/internal/config"
	"github.com/mesh-intelligence/showcase/internal/logging"
	"github.com/mesh-intelligence/showcase/internal/paths"
)

// cli holds global flag values and the configuration loaded before every
// subcommand runs.
type cli struct {
	flagConfigDir string
	flagDataDir   string
	flagLogLevel  string
	flagJSON      bool

	configDir string
	loader    *config.Loader
	cfg       config.Config
	log       *logging.Dynamic
}

func (c *cli) logger() *zap.Logger {
	if c.log == nil {
		return zap.NewNop()
	}
	return c.log.Logger
}

// resolveDataDir returns the data directory following the precedence
// --data-dir > config.yaml data_dir > SHOWCASE_DATA_DIR > $(CWD)/.showcase.
func (c *cli) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(c.flagDataDir, c.cfg.DataDir)
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "showcase",
		Short: "Manage the slot-addressable content of a storefront",
		Long: `Showcase manages the media and copy behind a storefront's hero slides,
collections and product tiles. Content lives in sections; every item sits
in a slot addressed by (section, key).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&c.flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.showcase)")
	root.PersistentFlags().StringVar(&c.flagLogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&c.flagJSON, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(c),
		newServeCmd(c),
		newSectionCmd(c),
		newFieldCmd(c),
		newFieldValueCmd(c),
		newSlotCmd(c),
		newUploadCmd(c),
		newSwapCmd(c),
		newDistributeCmd(c),
	)
	return root
}

// load resolves the config directory, reads config.yaml and builds the
// logger.
func (c *cli) load() error {
	dir, err := paths.ResolveConfigDir(c.flagConfigDir)
	if err != nil {
		return systemErr(fmt.Errorf("resolve config dir: %w", err))
	}
	loader, cfg, err := config.Load(dir, ".env")
	if err != nil {
		return systemErr(err)
	}
	if c.flagLogLevel != "" {
		cfg.Log.Level = c.flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", loader.Path(), err)
	}

	log, err := logging.NewDynamic(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("%s: %w", loader.Path(), err)
	}

	c.configDir = dir
	c.loader = loader
	c.cfg = cfg
	c.log = log
	return nil
}
