package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice is a block based page builder",
	Long: `Lattice builds sales pages and quizzes out of typed blocks.
Pages are edited through the HTTP API, the MCP server or the page subcommands,
and rendered to HTML or to a terminal preview.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default lattice.yaml)")
	rootCmd.PersistentFlags().StringArray("set", nil, "Override a config key, e.g. --set store.backend=file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file, then LATTICE_* variables, then --set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyOverrides(config.EnvOverrides(os.Environ())); err != nil {
		return cfg, err
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	overrides := make(map[string]string, len(sets))
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return cfg, fmt.Errorf("invalid --set %q, expected key=value", kv)
		}
		overrides[key] = value
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return cfg, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(cmd.ErrOrStderr(), level, cfg.LogJSON), nil
}

// openApp builds the configured App. Callers must Close it.
func openApp(cmd *cobra.Command) (*cli.App, *slog.Logger, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, cfg, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, nil, cfg, err
	}
	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		return nil, nil, cfg, err
	}
	return app, logger, cfg, nil
}
