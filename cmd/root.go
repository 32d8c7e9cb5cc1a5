package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "worktime",
	Short: "Work time registry with overtime billing",
	Long: `worktime records employees' work days, absences and tasks, and
computes overtime per 10th-to-10th billing period.

Configuration is read from the environment (DATABASE_URL, JWT_SECRET, ...).`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(overtimeCmd)
	rootCmd.AddCommand(paramsCmd)
}
