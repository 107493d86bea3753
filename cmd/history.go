package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/marketpulse/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analyses, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := st.ListHistory(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "history")
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No history found.")
			return nil
		}

		formatHistory(os.Stdout, entries)
		return nil
	},
}

// -- history show --

var historyShowCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Print a past analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, err := resolveHistoryID(cmd, st, args[0])
		if err != nil {
			return err
		}
		entry, err := st.GetHistoryEntry(ctx, id)
		if err != nil {
			return eris.Wrap(err, "history show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

// -- history remove --

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <id-prefix>",
	Short: "Remove one history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, err := resolveHistoryID(cmd, st, args[0])
		if err != nil {
			return err
		}
		if err := st.RemoveHistoryEntry(ctx, id); err != nil {
			return eris.Wrap(err, "history remove")
		}
		return nil
	},
}

// -- history clear --

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.ClearHistory(ctx)
		if err != nil {
			return eris.Wrap(err, "history clear")
		}
		fmt.Fprintf(os.Stderr, "Removed %d history entries.\n", n)
		return nil
	},
}

func resolveHistoryID(cmd *cobra.Command, st store.Store, prefix string) (string, error) {
	entries, err := st.ListHistory(cmd.Context(), store.MaxHistory)
	if err != nil {
		return "", eris.Wrap(err, "list history")
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return resolveID(prefix, ids)
}

func init() {
	historyCmd.Flags().Int("limit", store.DefaultHistoryLimit, "max number of entries to display")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
