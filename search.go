package sidetoc

import (
	"html"
	"regexp"
	"strings"
)

// HighlightClass is the CSS class wrapped around search matches.
const HighlightClass = "search-highlight"

// FilterTopics applies a search term to topics.
//
// A blank term clears any highlighting and returns all topics with
// isSearchResult false. Otherwise it returns the topics whose text contains
// the term (case-insensitive), each with HighlightedText set to the text
// with every match wrapped in a highlight span, and isSearchResult true.
// HighlightedText is HTML: the page text in it is escaped.
// The input slice is never modified.
func FilterTopics(topics []Topic, term string) (filtered []Topic, isSearchResult bool) {
	if strings.TrimSpace(term) == "" {
		out := make([]Topic, len(topics))
		for i, t := range topics {
			t.HighlightedText = ""
			out[i] = t
		}
		return out, false
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	lower := strings.ToLower(term)

	out := make([]Topic, 0, len(topics))
	for _, t := range topics {
		if !strings.Contains(strings.ToLower(t.Text), lower) {
			continue
		}
		t.HighlightedText = highlight(t.Text, re)
		out = append(out, t)
	}
	return out, true
}

// highlight escapes text and wraps every match of re in a highlight span.
func highlight(text string, re *regexp.Regexp) string {
	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString(`<span class="` + HighlightClass + `">`)
		b.WriteString(html.EscapeString(text[m[0]:m[1]]))
		b.WriteString("</span>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
