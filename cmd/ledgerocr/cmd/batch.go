package cmd

import (
	"github.com/spf13/cobra"

	"github.com/petropage/ledgerocr/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Process every ledger photograph in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := batch.ParseFormat(formatName)
		if err != nil {
			return err
		}

		orch, _, logger, cleanup, err := buildOrchestrator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		workers, _ := cmd.Flags().GetInt("workers")
		recursive, _ := cmd.Flags().GetBool("recursive")
		continueOnError, _ := cmd.Flags().GetBool("continue-on-error")

		proc := batch.NewProcessor(orch, batch.Options{
			Workers:         workers,
			Recursive:       recursive,
			ContinueOnError: continueOnError,
		}, logger)

		summary, runErr := proc.Run(cmd.Context(), args[0])
		if summary != nil {
			if err := batch.WriteSummary(cmd.OutOrStdout(), summary, format); err != nil {
				return err
			}
		}
		return runErr
	},
}

func init() {
	batchCmd.Flags().Int("workers", 0, "concurrent pages (0 = CPU count)")
	batchCmd.Flags().Bool("recursive", false, "descend into subdirectories")
	batchCmd.Flags().Bool("continue-on-error", true, "keep processing after a page fails")
	batchCmd.Flags().String("format", "text", "summary output format (text, json, yaml)")
	rootCmd.AddCommand(batchCmd)
}
