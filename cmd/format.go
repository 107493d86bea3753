package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/sells-group/marketpulse/internal/model"
)

// formatBookmarks writes a tabular list of bookmarks to out.
func formatBookmarks(out io.Writer, bookmarks []model.Bookmark) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tPROVIDER\tSENTIMENT\tSAVED\tNOTES")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t---------\t-----\t-----")
	for _, b := range bookmarks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(b.ID),
			truncate(b.Company, 30),
			b.Provider,
			b.Sentiment,
			b.UpdatedAt.Format("2006-01-02 15:04"),
			truncate(b.Notes, 40),
		)
	}
	_ = w.Flush()
}

// formatHistory writes a tabular list of history entries to out.
func formatHistory(out io.Writer, entries []model.HistoryEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tPROVIDER\tSENTIMENT\tSEARCHED")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t---------\t--------")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(e.ID),
			truncate(e.Company, 30),
			e.Provider,
			e.Sentiment,
			e.SearchedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
