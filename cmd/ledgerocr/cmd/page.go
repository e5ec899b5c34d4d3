package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Process and inspect individual ledger pages",
}

var pageProcessCmd = &cobra.Command{
	Use:   "process <image>",
	Short: "Run the full pipeline on one ledger photograph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, _, _, cleanup, err := buildOrchestrator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := orch.ProcessImage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var pageStatusCmd = &cobra.Command{
	Use:   "status <page-id>",
	Short: "Show the stored processing state of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid page id %q: %w", args[0], err)
		}
		orch, _, _, cleanup, err := buildOrchestrator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		page, err := orch.PageStatus(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, page)
	},
}

var pageRetryCmd = &cobra.Command{
	Use:   "retry <page-id>",
	Short: "Retry a failed page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid page id %q: %w", args[0], err)
		}
		orch, _, _, cleanup, err := buildOrchestrator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := orch.Retry(cmd.Context(), id); err != nil {
			return err
		}
		res, err := orch.ProcessPage(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var pageReprocessCmd = &cobra.Command{
	Use:   "reprocess <page-id>",
	Short: "Force a full rerun of any page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid page id %q: %w", args[0], err)
		}
		orch, _, _, cleanup, err := buildOrchestrator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := orch.Reprocess(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	pageCmd.AddCommand(pageProcessCmd, pageStatusCmd, pageRetryCmd, pageReprocessCmd)
	rootCmd.AddCommand(pageCmd)
}
