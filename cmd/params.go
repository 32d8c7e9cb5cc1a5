package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"worktime/models"
	"worktime/overtime"
)

var (
	paramsAfter int
	paramsDay   int
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show or set the overtime parameters",
	Long: `Without flags, prints the overtime parameters in force.
With --after and --day, stores a new configuration that takes effect immediately.`,
	Args: cobra.NoArgs,
	RunE: runParams,
}

func init() {
	paramsCmd.Flags().IntVar(&paramsAfter, "after", 0, "Hours after which a day's work counts as overtime")
	paramsCmd.Flags().IntVar(&paramsDay, "day", 0, "ISO weekday (1=Monday..7=Sunday) on which every hour is overtime")
}

func runParams(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if paramsAfter != 0 || paramsDay != 0 {
		p := models.OvertimeParameters{OvertimeAfter: paramsAfter, OvertimeDay: paramsDay}
		if err := overtime.ValidateParameters(p); err != nil {
			return err
		}
		if err := a.store.InsertOvertimeParameters(ctx, &p); err != nil {
			return err
		}
	}

	p, err := a.store.LatestOvertimeParameters(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "overtime after %d hours, every hour on weekday %d\n", p.OvertimeAfter, p.OvertimeDay)
	return nil
}
