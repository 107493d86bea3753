package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/marketpulse/internal/model"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.org/a?b=c", true},
		{"http://example.org", true},
		{"ftp://example.org", false},
		{"example.org", false},
		{"https://", false},
		{"https://example.org and more", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidURL(tt.in))
		})
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "https://a.com/x", "https://a.com/x"},
		{"padded", "  https://a.com/x  ", "https://a.com/x"},
		{"markdown", "[Read](https://a.com/md) here", "https://a.com/md"},
		{"markdown before bare", "see https://b.com and [x](https://a.com/md)", "https://a.com/md"},
		{"bare in prose", "Full story at https://a.com/story.", "https://a.com/story"},
		{"bare in parens", "(https://a.com/p)", "https://a.com/p"},
		{"none", "no link here", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURL(tt.in))
		})
	}
}

func TestParseLinks(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    []model.LinkItem
	}{
		{
			name:    "three fields",
			section: "Acme launches AI | https://a.com/ai | New model",
			want:    []model.LinkItem{{Title: "Acme launches AI", URL: "https://a.com/ai", Summary: "New model"}},
		},
		{
			name:    "two fields",
			section: "1. Title | https://a.com",
			want:    []model.LinkItem{{Title: "Title", URL: "https://a.com"}},
		},
		{
			name:    "markdown title",
			section: "[Acme story](https://a.com/s) | not a url | summary",
			want:    []model.LinkItem{{Title: "Acme story", URL: "https://a.com/s", Summary: "summary"}},
		},
		{
			name:    "single field with url",
			section: "* Acme raises round (https://a.com/r)",
			want:    []model.LinkItem{{Title: "Acme raises round", URL: "https://a.com/r"}},
		},
		{
			name:    "single field without url",
			section: "- Just a headline",
			want:    []model.LinkItem{{Title: "Just a headline"}},
		},
		{
			name:    "year at line start kept",
			section: "2024 outlook | https://a.com/o",
			want:    []model.LinkItem{{Title: "2024 outlook", URL: "https://a.com/o"}},
		},
		{
			name:    "blank lines skipped",
			section: "\n\n  \nA | https://a.com\n\n",
			want:    []model.LinkItem{{Title: "A", URL: "https://a.com"}},
		},
		{
			name:    "empty",
			section: "",
			want:    []model.LinkItem{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLinks(tt.section))
		})
	}
}
