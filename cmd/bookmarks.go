package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/marketpulse/internal/store"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Manage bookmarked company analyses",
}

// -- bookmarks list --

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks, most recently saved first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		bookmarks, err := st.ListBookmarks(ctx)
		if err != nil {
			return eris.Wrap(err, "bookmarks list")
		}
		if len(bookmarks) == 0 {
			fmt.Fprintln(os.Stderr, "No bookmarks found.")
			return nil
		}

		formatBookmarks(os.Stdout, bookmarks)
		return nil
	},
}

// -- bookmarks show --

var bookmarksShowCmd = &cobra.Command{
	Use:   "show <company>",
	Short: "Print a bookmarked analysis as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company := strings.Join(args, " ")
		b, err := st.GetBookmark(ctx, company)
		if err != nil {
			return eris.Wrap(err, "bookmarks show")
		}
		if b == nil {
			return eris.Errorf("no bookmark for %s", company)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	},
}

// -- bookmarks add --

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <company>",
	Short: "Bookmark the cached analysis of a company",
	Long:  "Saves the cached analysis for the company and provider. Run analyze first if nothing is cached. Re-adding a company replaces its bookmark.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		provider, _ := cmd.Flags().GetString("provider")
		if provider == "" {
			provider = cfg.LLM.Provider
		}
		notes, _ := cmd.Flags().GetString("notes")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company := strings.Join(args, " ")
		cached, err := st.GetCachedReport(ctx, company, provider)
		if err != nil {
			return eris.Wrap(err, "bookmarks add")
		}
		if cached == nil {
			return eris.Errorf("no cached %s analysis for %s; run analyze first", provider, company)
		}

		b, err := st.AddBookmark(ctx, company, provider, cached.Report, notes)
		if err != nil {
			return eris.Wrap(err, "bookmarks add")
		}
		fmt.Fprintf(os.Stderr, "Bookmarked %s (%s).\n", b.Company, truncateID(b.ID))
		return nil
	},
}

// -- bookmarks notes --

var bookmarksNotesCmd = &cobra.Command{
	Use:   "notes <id-prefix> <notes>",
	Short: "Replace the notes on a bookmark",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, err := resolveBookmarkID(cmd, st, args[0])
		if err != nil {
			return err
		}
		if err := st.UpdateBookmarkNotes(ctx, id, strings.Join(args[1:], " ")); err != nil {
			return eris.Wrap(err, "bookmarks notes")
		}
		return nil
	},
}

// -- bookmarks remove --

var bookmarksRemoveCmd = &cobra.Command{
	Use:   "remove <id-prefix>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, err := resolveBookmarkID(cmd, st, args[0])
		if err != nil {
			return err
		}
		if err := st.RemoveBookmark(ctx, id); err != nil {
			return eris.Wrap(err, "bookmarks remove")
		}
		fmt.Fprintf(os.Stderr, "Removed bookmark %s.\n", truncateID(id))
		return nil
	},
}

func resolveBookmarkID(cmd *cobra.Command, st store.Store, prefix string) (string, error) {
	bookmarks, err := st.ListBookmarks(cmd.Context())
	if err != nil {
		return "", eris.Wrap(err, "list bookmarks")
	}
	ids := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		ids = append(ids, b.ID)
	}
	return resolveID(prefix, ids)
}

// resolveID expands a unique ID prefix, as shown by the list commands.
func resolveID(prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", eris.New("id is required")
	}
	var match string
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if match != "" {
			return "", eris.Errorf("id prefix %q is ambiguous", prefix)
		}
		match = id
	}
	if match == "" {
		return "", eris.Wrapf(store.ErrNotFound, "id %s", prefix)
	}
	return match, nil
}

func init() {
	bookmarksAddCmd.Flags().String("provider", "", "provider whose cached analysis to save (default from config)")
	bookmarksAddCmd.Flags().String("notes", "", "notes to attach")

	bookmarksCmd.AddCommand(bookmarksListCmd)
	bookmarksCmd.AddCommand(bookmarksShowCmd)
	bookmarksCmd.AddCommand(bookmarksAddCmd)
	bookmarksCmd.AddCommand(bookmarksNotesCmd)
	bookmarksCmd.AddCommand(bookmarksRemoveCmd)
	rootCmd.AddCommand(bookmarksCmd)
}
