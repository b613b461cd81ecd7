// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/logger"
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		config.DefaultPath,
		"Directory holding main.toml",
	)
}

var (
	configPath string // Path to the configuration directory
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "pharmadesk",
		Short: "pharmadesk is the role based access control service of the pharmacy backend",
		Long: `pharmadesk manages permissions, roles and user role assignments of the pharmacy
backend and answers whether a user may perform an operation.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// loadConfig reads the configuration and initializes the global logger from it.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
