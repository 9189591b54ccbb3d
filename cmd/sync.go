package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/quote-sync/internal/engine"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Analyze and save every spreadsheet, one at a time",
	Long:  "Scans the quotes folder, then analyzes and upserts each document in turn with a fixed delay between documents. Interrupting stops the loop after the document in progress.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("sync"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		eng, err := initEngine(ctx, cfg, st)
		if err != nil {
			return err
		}

		opts := syncOptions(cmd)
		report, err := eng.Sync(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "sync")
		}

		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			return writeOutput(os.Stdout, output, report)
		}
		formatSyncReport(os.Stdout, report)
		return nil
	},
}

func syncOptions(cmd *cobra.Command) engine.SyncOptions {
	refresh, _ := cmd.Flags().GetBool("refresh")
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")
	if !cmd.Flags().Changed("limit") {
		limit = cfg.Sync.Limit
	}
	if !cmd.Flags().Changed("all") {
		all = !cfg.Sync.SkipUnchanged
	}
	return engine.SyncOptions{
		Refresh: refresh,
		All:     all,
		Limit:   limit,
		Delay:   cfg.Sync.Delay(),
	}
}

func init() {
	syncCmd.Flags().Bool("refresh", false, "bypass the scan cache")
	syncCmd.Flags().Bool("all", false, "re-analyze documents whose remote modification time is unchanged")
	syncCmd.Flags().Int("limit", 0, "maximum documents to analyze (0 = all)")
	syncCmd.Flags().String("output", "", "print the report as json or yaml")
	rootCmd.AddCommand(syncCmd)
}
