package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/quote-sync/internal/engine"
	"github.com/sells-group/quote-sync/internal/model"
)

// writeOutput encodes v as indented JSON or YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		return eris.Errorf("unsupported output format: %s", format)
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatEntries(w io.Writer, entries []model.RemoteEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tMODIFIED\tSIZE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.ID, orDash(e.Path), formatTime(e.ModifiedAt), e.SizeBytes)
	}
	tw.Flush() //nolint:errcheck
	fmt.Fprintf(w, "\n%d document(s)\n", len(entries))
}

func formatAnalyses(w io.Writer, items []model.PersistedAnalysis, total int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tDATE\tTYPE\tCONTACT\tTOTAL\tSTATUS\tUPDATED")
	for _, a := range items {
		id := a.ID
		if len(id) > 8 {
			id = id[:8]
		}
		updated := a.UpdatedAt
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			id,
			a.SourceFileName,
			orDash(a.EventDate),
			orDash(a.EventType),
			orDash(a.ContactName()),
			a.TotalAmount,
			a.Status,
			formatTime(&updated),
		)
	}
	tw.Flush() //nolint:errcheck
	fmt.Fprintf(w, "\nShowing %d of %d analyses\n", len(items), total)
}

func formatSyncReport(w io.Writer, r *engine.SyncReport) {
	fmt.Fprintf(w, "Scanned:   %d\n", r.Scanned)
	fmt.Fprintf(w, "Analyzed:  %d\n", r.Analyzed)
	fmt.Fprintf(w, "Created:   %d\n", r.Created)
	fmt.Fprintf(w, "Updated:   %d\n", r.Updated)
	fmt.Fprintf(w, "Unchanged: %d\n", r.Unchanged)
	fmt.Fprintf(w, "Skipped:   %d\n", r.Skipped)
	fmt.Fprintf(w, "Failed:    %d\n", r.Failed)
	fmt.Fprintf(w, "Elapsed:   %s\n", r.Elapsed.Round(time.Millisecond))
	if r.Stopped {
		fmt.Fprintln(w, "Stopped early (interrupted)")
	}
	if len(r.Failures) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s (%s): %s\n", f.Name, f.FileID, f.Error)
		}
	}
}
