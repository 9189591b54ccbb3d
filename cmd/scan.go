package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List candidate spreadsheets under the quotes folder",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("scan"); err != nil {
			return err
		}
		ctx := cmd.Context()

		eng, err := initEngine(ctx, cfg, nil)
		if err != nil {
			return err
		}

		refresh, _ := cmd.Flags().GetBool("refresh")
		output, _ := cmd.Flags().GetString("output")

		res := eng.ScanDocuments(ctx, refresh)
		if output != "" {
			return writeOutput(os.Stdout, output, res)
		}
		if !res.OK {
			return fmt.Errorf("scan: %s", res.Error)
		}
		formatEntries(os.Stdout, res.Data)
		return nil
	},
}

func init() {
	scanCmd.Flags().Bool("refresh", false, "bypass the scan cache")
	scanCmd.Flags().String("output", "", "print the full result as json or yaml")
	rootCmd.AddCommand(scanCmd)
}
