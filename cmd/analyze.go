package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/reconcile"
	"github.com/sells-group/quote-sync/internal/store"
	"github.com/sells-group/quote-sync/internal/trace"
)

// analyzeResponse is the analyze outcome plus the upsert outcome when saved.
type analyzeResponse struct {
	trace.Result[*model.ExtractedRecord] `yaml:",inline"`
	Saved                                *reconcile.Outcome `json:"saved,omitempty" yaml:"saved,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file-id>",
	Short: "Extract one spreadsheet and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")
		output, _ := cmd.Flags().GetString("output")

		mode := "analyze"
		if save {
			mode = "sync"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}
		ctx := cmd.Context()

		var st store.Store
		if save {
			s, err := initStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			st = s
		}

		eng, err := initEngine(ctx, cfg, st)
		if err != nil {
			return err
		}

		var resp analyzeResponse
		if save {
			resp.Result, resp.Saved = eng.AnalyzeAndSave(ctx, args[0])
		} else {
			resp.Result = eng.AnalyzeDocument(ctx, args[0])
		}
		return writeOutput(os.Stdout, output, resp)
	},
}

func init() {
	analyzeCmd.Flags().Bool("save", false, "upsert the extracted record into the store")
	analyzeCmd.Flags().String("output", "json", "output format: json or yaml")
	rootCmd.AddCommand(analyzeCmd)
}
