package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/petropage/ledgerocr/internal/calc"
	"github.com/petropage/ledgerocr/internal/ledger"
	"github.com/petropage/ledgerocr/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Query aggregated sales reports",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily <date>",
	Short: "Show the daily report for a date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", args[0], err)
		}
		_, st, _, cleanup, err := buildOrchestrator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := st.DailyReportFor(cmd.Context(), date)
		if errors.Is(err, store.ErrNotFound) {
			// Recompute from entries when no stored report exists.
			entriesForDate, entErr := st.EntriesForDate(cmd.Context(), date)
			if entErr != nil {
				return entErr
			}
			if len(entriesForDate) == 0 {
				return fmt.Errorf("no data for %s", args[0])
			}
			report = calc.DailyReport(date, entriesForDate)
		} else if err != nil {
			return err
		}
		return printJSON(cmd, report)
	},
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly <year> <month>",
	Short: "Show the monthly rollup for a year and month",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", args[0], err)
		}
		monthNum, err := strconv.Atoi(args[1])
		if err != nil || monthNum < 1 || monthNum > 12 {
			return fmt.Errorf("invalid month %q (want 1-12)", args[1])
		}
		month := time.Month(monthNum)

		_, st, _, cleanup, err := buildOrchestrator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		var dailies []ledger.DailyReport
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
			report, err := st.DailyReportFor(cmd.Context(), d)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			dailies = append(dailies, *report)
		}
		if len(dailies) == 0 {
			return fmt.Errorf("no data for %d-%02d", year, monthNum)
		}
		return printJSON(cmd, calc.MonthlyReport(year, month, dailies))
	},
}

func init() {
	reportCmd.AddCommand(reportDailyCmd, reportMonthlyCmd)
	rootCmd.AddCommand(reportCmd)
}
