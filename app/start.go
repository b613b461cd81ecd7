package app

import (
	"github.com/spf13/cobra"

	"github.com/pharmadesk/pharmadesk/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")
	startCmd.Flags().BoolVar(&seedOnStart, "seed", false, "Seed the database before starting")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode     bool
	seedOnStart bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the pharmadesk web service",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(); err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			if seedOnStart {
				cfg.Bootstrap.SeedOnStart = true
			}

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}

			return d.Start()
		},
	}
)
