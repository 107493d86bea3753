package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/marketpulse/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <company>",
	Short: "Analyze a company and print the report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		provider, _ := cmd.Flags().GetString("provider")
		if provider != "" {
			cfg.LLM.Provider = strings.ToLower(provider)
		}
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc, err := initAnalysis(st)
		if err != nil {
			return err
		}

		modelName, _ := cmd.Flags().GetString("model")
		refresh, _ := cmd.Flags().GetBool("refresh")
		asJSON, _ := cmd.Flags().GetBool("json")

		company := strings.Join(args, " ")
		res, err := svc.Analyze(ctx, analysis.Request{
			Company:  company,
			Provider: cfg.LLM.Provider,
			Model:    modelName,
			Refresh:  refresh,
		})
		if err != nil {
			return eris.Wrapf(err, "analyze %s", company)
		}

		zap.L().Info("analysis complete",
			zap.String("company", company),
			zap.String("provider", res.Provider),
			zap.Bool("cached", res.Cached),
			zap.Bool("web_search_used", res.WebSearchUsed),
		)
		if res.WebSearchError != "" {
			fmt.Fprintln(os.Stderr, "warning:", res.WebSearchError)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		formatReport(os.Stdout, company, res)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("provider", "", "LLM provider: anthropic, gemini, openai, perplexity (default from config)")
	analyzeCmd.Flags().String("model", "", "model override for the provider")
	analyzeCmd.Flags().Bool("refresh", false, "bypass the report cache")
	analyzeCmd.Flags().Bool("json", false, "print the full response as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

// formatReport writes a readable digest of an analysis to out.
func formatReport(out io.Writer, company string, res *analysis.Result) {
	r := res.Data
	_, _ = fmt.Fprintf(out, "%s  [%s]\n", company, r.Sentiment)
	source := res.Provider
	if res.Cached {
		source += " (cached)"
	}
	if res.WebSearchUsed {
		source += " + web search"
	}
	_, _ = fmt.Fprintf(out, "Provider: %s\n\n", source)

	if r.Summary != "" {
		_, _ = fmt.Fprintf(out, "%s\n\n", r.Summary)
	}

	if len(r.QuickFacts) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, k := range sortedKeys(r.QuickFacts) {
			_, _ = fmt.Fprintf(w, "%s:\t%s\n", k, r.QuickFacts[k])
		}
		_ = w.Flush()
		_, _ = fmt.Fprintln(out)
	}

	writeList(out, "Key priorities", r.KeyPriorities)
	writeList(out, "Growth initiatives", r.GrowthInitiatives)

	if len(r.TechNews) > 0 {
		_, _ = fmt.Fprintln(out, "Tech news:")
		for _, n := range r.TechNews {
			_, _ = fmt.Fprintf(out, "  - %s  %s\n", n.Title, n.URL)
		}
		_, _ = fmt.Fprintln(out)
	}

	if len(r.LeadershipChanges) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tROLE\tCHANGE\tDATE")
		for _, l := range r.LeadershipChanges {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncate(l.Name, 40), truncate(l.Role, 40), l.ChangeType, l.Date)
		}
		_ = w.Flush()
		_, _ = fmt.Fprintln(out)
	}

	if len(r.RegulatoryEvents) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "DATE\tREGULATOR\tTYPE\tAMOUNT\tSOURCES")
		for _, e := range r.RegulatoryEvents {
			sources := len(e.Sources)
			if e.URL != "" {
				sources++
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", e.Date, e.RegulatoryBody, e.EventType, e.Amount, sources)
		}
		_ = w.Flush()
		_, _ = fmt.Fprintln(out)
	}

	_, _ = fmt.Fprintf(out, "%d competitor mentions, %d M&A items, %d sources\n",
		len(r.CompetitorMentions), len(r.MAActivity), len(r.Sources))
}

func writeList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(out, "%s:\n", title)
	for i, item := range items {
		_, _ = fmt.Fprintf(out, "  %d. %s\n", i+1, item)
	}
	_, _ = fmt.Fprintln(out)
}
