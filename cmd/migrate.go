package cmd

import (
	"github.com/spf13/cobra"

	"worktime/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed the admin account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := database.Migrate(database.GetDB()); err != nil {
			return err
		}
		if err := database.SeedAdmin(cmd.Context(), a.store, a.cfg.AdminEmail, a.cfg.AdminPassword, a.logger); err != nil {
			return err
		}
		a.logger.Info("schema up to date")
		return nil
	},
}
