package parse

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/marketpulse/internal/model"
)

var (
	listMarker      = regexp.MustCompile(`^(?:\d+[.)]\s*|[-*•]+\s+)`)
	markdownLink    = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	markdownLinkURL = regexp.MustCompile(`\[.*?\]\((https?://[^\s)]+)\)`)
	bareURL         = regexp.MustCompile(`https?://[^\s]+`)
	bracketChars    = strings.NewReplacer("[", "", "]", "", "(", "", ")", "")
)

// IsValidURL reports whether s is, in its entirety, an http(s) URL.
func IsValidURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ExtractURL finds a URL in text. It prefers text that is already a URL,
// then the target of a markdown link, then the first bare URL.
func ExtractURL(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if IsValidURL(text) {
		return text
	}
	if m := markdownLinkURL.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareURL.FindString(text); m != "" {
		return strings.TrimRight(m, ".,;)]>\"'")
	}
	return ""
}

// ParseLinks parses "title | url | summary" lines. Two-field lines omit
// the summary; single-field lines are free text from which a URL is
// pulled opportunistically.
func ParseLinks(section string) []model.LinkItem {
	items := []model.LinkItem{}
	for _, line := range lines(section) {
		clean := stripMarker(line)
		parts := splitPipes(clean)

		if len(parts) >= 2 {
			item := model.LinkItem{
				Title: cleanTitle(parts[0]),
				URL:   ExtractURL(parts[1]),
			}
			if item.URL == "" {
				item.URL = ExtractURL(parts[0])
			}
			if len(parts) >= 3 {
				item.Summary = parts[2]
			}
			items = append(items, item)
			continue
		}

		title := strings.TrimSpace(bracketChars.Replace(bareURL.ReplaceAllString(clean, "")))
		if title == "" {
			title = clean
		}
		items = append(items, model.LinkItem{Title: title, URL: ExtractURL(clean)})
	}
	return items
}

// cleanTitle replaces markdown links with their text.
func cleanTitle(s string) string {
	t := strings.TrimSpace(markdownLink.ReplaceAllString(s, "$1"))
	if t == "" {
		return strings.TrimSpace(s)
	}
	return t
}

// lines splits a section into trimmed, non-blank lines.
func lines(section string) []string {
	var out []string
	for _, l := range strings.Split(section, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func stripMarker(line string) string {
	return strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
}

func splitPipes(line string) []string {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
