package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/quote-sync/internal/store"
)

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "Inspect saved analyses",
}

// -- analyses list --

var analysesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		q, _ := cmd.Flags().GetString("q")
		order, _ := cmd.Flags().GetString("order")
		desc, _ := cmd.Flags().GetBool("desc")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		output, _ := cmd.Flags().GetString("output")

		items, total, err := st.List(ctx, store.ListFilter{
			Query:   q,
			OrderBy: order,
			Desc:    desc,
			Limit:   limit,
			Offset:  offset,
		})
		if err != nil {
			return eris.Wrap(err, "analyses list")
		}

		if output != "" {
			return writeOutput(os.Stdout, output, listResponse{Items: items, Total: total})
		}
		if len(items) == 0 {
			fmt.Fprintln(os.Stderr, "No analyses found.")
			return nil
		}
		formatAnalyses(os.Stdout, items, total)
		return nil
	},
}

// -- analyses show --

var analysesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		a, err := st.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "analyses show")
		}

		output, _ := cmd.Flags().GetString("output")
		return writeOutput(os.Stdout, output, a)
	},
}

func init() {
	analysesListCmd.Flags().String("q", "", "case-insensitive search over file name, event type and contact")
	analysesListCmd.Flags().String("order", "updated_at", "order by: updated_at, created_at, event_date, source_file_name, total_amount")
	analysesListCmd.Flags().Bool("desc", false, "descending order")
	analysesListCmd.Flags().Int("limit", store.DefaultLimit, "page size")
	analysesListCmd.Flags().Int("offset", 0, "rows to skip")
	analysesListCmd.Flags().String("output", "", "print as json or yaml instead of a table")

	analysesShowCmd.Flags().String("output", "json", "output format: json or yaml")

	analysesCmd.AddCommand(analysesListCmd, analysesShowCmd)
	rootCmd.AddCommand(analysesCmd)
}
