package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/marketpulse/internal/model"
	"github.com/sells-group/marketpulse/internal/plausibility"
)

func TestParseCompetitorMentions(t *testing.T) {
	f := plausibility.Defaults()
	section := `Smarsh | Customer | Acme archives with Smarsh | https://smarsh.com/acme | 2024-03 | Chat capture
Veritas | press-release | [Veritas and Acme](https://veritas.com/pr) | see [Veritas and Acme](https://veritas.com/pr) | N/A | Archiving deal
NoURL | partner | Missing link | N/A | 2024 | nothing
Insecure | partner | Plain http | http://insecure.com/a | 2024 | nothing
Local | partner | Loopback | https://localhost/a | 2024 | nothing
 | partner | No name | https://a.com | 2024 | nothing
Odd | unheard-of | Strange type | https://odd.com/a`

	got := ParseCompetitorMentions(section, f)

	require.Len(t, got, 3)
	assert.Equal(t, model.CompetitorMention{
		CompetitorName: "Smarsh",
		MentionType:    model.MentionCustomer,
		Title:          "Acme archives with Smarsh",
		URL:            "https://smarsh.com/acme",
		Date:           "2024-03",
		Summary:        "Chat capture",
	}, got[0])
	assert.Equal(t, model.MentionPressRelease, got[1].MentionType)
	assert.Equal(t, "Veritas and Acme", got[1].Title)
	assert.Equal(t, "https://veritas.com/pr", got[1].URL)
	assert.Empty(t, got[1].Date)
	assert.Equal(t, model.MentionOther, got[2].MentionType)
	assert.Empty(t, got[2].Summary)
}

func TestParseLeadershipChanges(t *testing.T) {
	f := plausibility.Defaults()
	section := `Satya Nadella | Chief Executive Officer | appointed | 2014-02 | EVP Cloud | https://news.microsoft.com/ceo
Jane Doe | CFO | appointed | 2024 | | https://a.com
Joe Biden | Board Member | appointed | 2024 | |
Maria Lopez | Governor of Texas | appointed | 2024 | |
Chief Executive Officer | CEO | departed | 2024 | |
Li Wei | Chief Risk Officer | Expanded Role | 2023 | N/A | N/A
Tom Ng | | departed | 2023 | |
Ana Cruz Holdings | COO | appointed | 2023 | |`

	got := ParseLeadershipChanges(section, f)

	require.Len(t, got, 2)
	assert.Equal(t, model.LeadershipChange{
		Name:         "Satya Nadella",
		Role:         "Chief Executive Officer",
		ChangeType:   model.ChangeAppointed,
		Date:         "2014-02",
		PreviousRole: "EVP Cloud",
		URL:          "https://news.microsoft.com/ceo",
	}, got[0])
	assert.Equal(t, "Li Wei", got[1].Name)
	assert.Equal(t, model.ChangeExpandedRole, got[1].ChangeType)
	assert.Empty(t, got[1].PreviousRole)
	assert.Empty(t, got[1].URL)
}

func TestParseLeadershipChanges_UnknownChangeType(t *testing.T) {
	got := ParseLeadershipChanges("Dana Whitfield | CTO | reshuffled", plausibility.Defaults())
	require.Len(t, got, 1)
	assert.Equal(t, model.ChangeAppointed, got[0].ChangeType)
}

func TestParseMAActivity(t *testing.T) {
	f := plausibility.Defaults()
	section := `2023 | Acquisition | Clearline Analytics | $350M | Adds surveillance
2022 | Acquisition | Tech Company A | Undisclosed | Template
2021 | Acquisition | [Target Name] | | Bracket placeholder
2020 | Merger | Leading Fintech Startup | | Generic only
2019 | Divestiture | Northwind Traders | N/A | N/A
 | Acquisition | No Year Inc | |
2018 | Acquisition | | |`

	got := ParseMAActivity(section, f)

	require.Len(t, got, 2)
	assert.Equal(t, model.MAItem{
		Year:      "2023",
		Type:      "Acquisition",
		Target:    "Clearline Analytics",
		DealValue: "$350M",
		Rationale: "Adds surveillance",
	}, got[0])
	assert.Equal(t, "Northwind Traders", got[1].Target)
	assert.Empty(t, got[1].DealValue)
	assert.Empty(t, got[1].Rationale)
}

func TestParseRegulatoryLandscape(t *testing.T) {
	got := ParseRegulatoryLandscape("SEC | Securities regulator | https://sec.gov\nFINRA | SRO\n | orphan context | https://a.com")

	assert.Equal(t, []model.RegulatoryBody{
		{Body: "SEC", Context: "Securities regulator", URL: "https://sec.gov"},
		{Body: "FINRA", Context: "SRO"},
	}, got)
}

func TestParseRegulatoryEvents(t *testing.T) {
	section := `2021-09 | SEC | Fine | $1.5M | Recordkeeping failures | https://sec.gov/1
2022 | OCC | cease and desist | | Risk management order |
unknown | FCA | Investigation | N/A | Market abuse review | N/A
2020 | CFTC | fine | $1M | |
2020 | | fine | $1M | Missing body |
 | DOJ | settlement | $2M | Sanctions violations |`

	got := ParseRegulatoryEvents(section)

	require.Len(t, got, 4)
	assert.Equal(t, model.RegulatoryEvent{
		Date:           "2021-09",
		RegulatoryBody: "SEC",
		EventType:      model.EventFine,
		Amount:         "$1.5M",
		Description:    "Recordkeeping failures",
		URL:            "https://sec.gov/1",
	}, got[0])
	assert.Equal(t, model.EventOther, got[1].EventType)
	assert.Equal(t, model.EventInvestigation, got[2].EventType)
	assert.Empty(t, got[2].Date)
	assert.Empty(t, got[2].Amount)
	assert.Empty(t, got[2].URL)
	// No date is fine, no body or description is not.
	assert.Equal(t, "DOJ", got[3].RegulatoryBody)
	assert.Equal(t, model.EventSettlement, got[3].EventType)
	assert.Empty(t, got[3].Date)
}

func TestParseEnum(t *testing.T) {
	tests := []struct {
		in   string
		want model.MentionType
	}{
		{"Case Study", model.MentionCaseStudy},
		{"press-release", model.MentionPressRelease},
		{" INTEGRATION ", model.MentionIntegration},
		{"partner program", model.MentionPartner},
		{"", model.MentionOther},
		{"rumor", model.MentionOther},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseEnum(tt.in, mentionTypes, model.MentionOther))
		})
	}
}
