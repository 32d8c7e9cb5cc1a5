package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"worktime/overtime"
	"worktime/reports"
)

var (
	overtimeDate     string
	overtimeEmployee uint
	overtimeFormat   string
	overtimeOut      string
)

var overtimeCmd = &cobra.Command{
	Use:   "overtime",
	Short: "Print or export overtime for a billing period",
	Args:  cobra.NoArgs,
	RunE:  runOvertime,
}

func init() {
	overtimeCmd.Flags().StringVar(&overtimeDate, "date", "", "Reference date (YYYY-MM-DD), defaults to today")
	overtimeCmd.Flags().UintVar(&overtimeEmployee, "employee", 0, "Only this employee id")
	overtimeCmd.Flags().StringVar(&overtimeFormat, "format", "table", "Output format: table, csv, xlsx")
	overtimeCmd.Flags().StringVarP(&overtimeOut, "out", "o", "", "Write to file instead of stdout")
}

func runOvertime(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ref, err := parseDate(overtimeDate, a.clock.Now())
	if err != nil {
		return err
	}

	svc := overtime.NewService(a.store, a.cache, a.logger)
	p, err := svc.LoadParameters(ctx)
	if err != nil {
		return err
	}

	var result []overtime.Report
	if overtimeEmployee != 0 {
		r, err := svc.ComputeForEmployee(ctx, overtimeEmployee, ref, p)
		if err != nil {
			return err
		}
		result = []overtime.Report{*r}
	} else {
		result, err = svc.Summary(ctx, ref, p)
		if err != nil {
			return err
		}
	}

	var out io.Writer = cmd.OutOrStdout()
	if overtimeOut != "" {
		f, err := os.Create(overtimeOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return writeOvertime(out, overtimeFormat, overtime.BillingWindow(ref), result)
}

func writeOvertime(w io.Writer, format string, window overtime.Window, result []overtime.Report) error {
	switch format {
	case "csv":
		return reports.WriteOvertimeCSV(w, result)
	case "xlsx":
		return reports.WriteOvertimeXLSX(w, result)
	case "table":
		fmt.Fprintf(w, "Billing period %s to %s\n\n", window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMPLOYEE\tDAYS\tOVERTIME")
		for _, r := range result {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%dh\n", r.EmployeeID, r.Employee, len(r.Days), r.Total)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table, csv or xlsx)", format)
	}
}
