package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSection(t *testing.T) {
	tests := []struct {
		name string
		text string
		tag  string
		want string
	}{
		{"absent", "[SUMMARY]x[/SUMMARY]", TagSentiment, ""},
		{"empty text", "", TagSummary, ""},
		{"trimmed", "[SUMMARY]\n  Acme makes widgets.  \n[/SUMMARY]", TagSummary, "Acme makes widgets."},
		{"case insensitive", "[summary]lower[/Summary]", TagSummary, "lower"},
		{"multiline", "[TECH_NEWS]\na | b\nc | d\n[/TECH_NEWS]", TagTechNews, "a | b\nc | d"},
		{"first block wins", "[SENTIMENT]bullish[/SENTIMENT] [SENTIMENT]bearish[/SENTIMENT]", TagSentiment, "bullish"},
		{"unterminated", "[SUMMARY]no end", TagSummary, ""},
		{"empty block", "[SOURCES][/SOURCES]", TagSources, ""},
		{"surrounding prose", "Sure! [MA_ACTIVITY]2020 | Acquisition | Foo[/MA_ACTIVITY] Done.", TagMAActivity, "2020 | Acquisition | Foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSection(tt.text, tt.tag))
		})
	}
}

func TestExtractSection_QuotesTag(t *testing.T) {
	assert.Equal(t, "", ExtractSection("[AB]x[/AB]", "A.B"))
	assert.Equal(t, "x", ExtractSection("[A.B]x[/A.B]", "A.B"))
}
