package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/marketpulse/internal/analysis"
	"github.com/sells-group/marketpulse/internal/model"
)

func TestFormatBookmarks(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	bookmarks := []model.Bookmark{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Company:   "Acme Financial Holdings International Group",
			Provider:  "gemini",
			Sentiment: model.SentimentBullish,
			Notes:     "call CFO",
			UpdatedAt: now,
		},
	}

	var buf bytes.Buffer
	formatBookmarks(&buf, bookmarks)

	output := buf.String()
	assert.Contains(t, output, "COMPANY")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "Acme Financial Holdings Int...")
	assert.Contains(t, output, "BULLISH")
	assert.Contains(t, output, "call CFO")
	assert.Contains(t, output, "2025-06-15 10:30")
}

func TestFormatHistory(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	entries := []model.HistoryEntry{
		{ID: "def12345-0000", Company: "Globex", Provider: "perplexity", Sentiment: model.SentimentMixed, SearchedAt: now},
	}

	var buf bytes.Buffer
	formatHistory(&buf, entries)

	output := buf.String()
	assert.Contains(t, output, "SEARCHED")
	assert.Contains(t, output, "def12345")
	assert.Contains(t, output, "Globex")
	assert.Contains(t, output, "perplexity")
	assert.Contains(t, output, "MIXED")
}

func TestFormatReport(t *testing.T) {
	r := model.NewReport()
	r.Summary = "Acme builds trading software."
	r.Sentiment = model.SentimentBearish
	r.QuickFacts = map[string]string{"ceo": "Dana Whitfield", "industry": "Financial Services"}
	r.KeyPriorities = []string{"Expand electronic trading"}
	r.TechNews = []model.LinkItem{{Title: "Acme rolls out AI", URL: "https://reuters.com/acme"}}
	r.LeadershipChanges = []model.LeadershipChange{{Name: "Priya Raman", Role: "CTO", ChangeType: model.ChangeAppointed, Date: "2024-06"}}
	r.RegulatoryEvents = []model.RegulatoryEvent{{
		Date: "2021", RegulatoryBody: "SEC", EventType: model.EventFine, Amount: "$150M",
		Sources: []model.EventSource{{URL: "https://reuters.com/sec"}},
	}}
	r.Sources = []string{"https://reuters.com/acme"}

	var buf bytes.Buffer
	formatReport(&buf, "Acme", &analysis.Result{Data: r, Provider: "openai", Cached: true, WebSearchUsed: true})

	output := buf.String()
	assert.Contains(t, output, "Acme  [BEARISH]")
	assert.Contains(t, output, "Provider: openai (cached) + web search")
	assert.Contains(t, output, "ceo:")
	assert.Contains(t, output, "1. Expand electronic trading")
	assert.Contains(t, output, "Acme rolls out AI  https://reuters.com/acme")
	assert.Contains(t, output, "Priya Raman")
	assert.Contains(t, output, "$150M")
	assert.Contains(t, output, "0 competitor mentions, 0 M&A items, 1 sources")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "abc", truncateID("abc"))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(map[string]string{"c": "3", "a": "1", "b": "2"}))
	assert.Empty(t, sortedKeys(nil))
}
