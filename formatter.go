package sidetoc

import (
	"html"
	"strings"
)

const highlightOpen = `<span class="` + HighlightClass + `">`

// FormatOutline renders topics as a plain-text outline, one topic per line.
// Headings are indented two spaces per level below the first, topics with
// children are marked "+" and leaves "-". Search matches are bracketed and
// runs of whitespace collapse to one space.
// labels maps stable keys to custom labels and may be nil.
func FormatOutline(topics []Topic, view View, labels map[string]string) string {
	if len(topics) == 0 {
		return ""
	}

	children := HasChildren(topics)
	var b strings.Builder
	for i, t := range topics {
		if t.Kind == KindHeading && t.Level > 1 {
			b.WriteString(strings.Repeat("  ", t.Level-1))
		}
		if children[i] {
			b.WriteString("+ ")
		} else {
			b.WriteString("- ")
		}
		b.WriteString(t.Label(view))
		b.WriteString(" ")
		text := t.DisplayText(labels[t.StableKey()])
		if t.HighlightedText != "" {
			text = strings.ReplaceAll(text, highlightOpen, "[")
			text = strings.ReplaceAll(text, "</span>", "]")
			text = html.UnescapeString(text)
		}
		text = strings.Join(strings.Fields(text), " ")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}
