package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport_EmptyDefaults(t *testing.T) {
	r := NewReport()

	assert.Equal(t, SentimentNeutral, r.Sentiment)
	assert.Empty(t, r.Summary)
	assert.NotNil(t, r.QuickFacts)
	assert.NotNil(t, r.InvestorDocs)
	assert.NotNil(t, r.KeyPriorities)
	assert.NotNil(t, r.GrowthInitiatives)
	assert.NotNil(t, r.TechNews)
	assert.NotNil(t, r.CaseStudies)
	assert.NotNil(t, r.CompetitorMentions)
	assert.NotNil(t, r.LeadershipChanges)
	assert.NotNil(t, r.MAActivity)
	assert.NotNil(t, r.RegulatoryLandscape)
	assert.NotNil(t, r.RegulatoryEvents)
	assert.NotNil(t, r.Sources)
}

func TestReport_JSONListsNeverNull(t *testing.T) {
	b, err := json.Marshal(NewReport())
	require.NoError(t, err)

	s := string(b)
	assert.NotContains(t, s, "null")
	assert.Contains(t, s, `"techNews":[]`)
	assert.Contains(t, s, `"quickFacts":{}`)
}

func TestReport_NormalizeAfterDecode(t *testing.T) {
	var r Report
	require.NoError(t, json.Unmarshal([]byte(`{"summary":"Acme builds rockets."}`), &r))

	r.Normalize()
	assert.Equal(t, "Acme builds rockets.", r.Summary)
	assert.Equal(t, SentimentNeutral, r.Sentiment)
	assert.Equal(t, []LinkItem{}, r.TechNews)
	assert.Equal(t, []string{}, r.Sources)
}

func TestRegulatoryEvent_SourcesOmittedWhenEmpty(t *testing.T) {
	b, err := json.Marshal(RegulatoryEvent{Date: "2021", RegulatoryBody: "SEC", EventType: EventFine})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "sources")
}
