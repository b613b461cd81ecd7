package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pharmadesk/pharmadesk/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the system roles, the base permissions and the default admin user",
	Long: `Create the admin and pharmacist system roles, the create_admin and rbac.* permissions
and the configured default admin user. Running it again changes nothing.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		if err = daemon.Seed(db, cfg.Bootstrap); err != nil {
			return err
		}

		log.Info().Str("admin", cfg.Bootstrap.AdminUsername).Msg("database seeded")

		return nil
	},
}
