package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sidetoc"
)

// EmptyMessage replaces message text that is empty after prefix stripping.
const EmptyMessage = "Empty message"

// Classifier turns conversation elements into message topics.
type Classifier struct {
	// PreviewLength is the maximum preview length in characters before the
	// ellipsis marker is appended.
	PreviewLength int
}

// Classify returns one topic per element classified as a user or assistant
// turn, in document order. Elements classified as noise, or not classified
// at all, are dropped. Elements whose stripped text duplicates an earlier
// element's are dropped as well.
func (c *Classifier) Classify(doc *goquery.Document, a *Adapter) []sidetoc.Topic {
	var topics []sidetoc.Topic
	seen := make(map[string]struct{})

	a.Turns(doc).Each(func(_ int, el *goquery.Selection) {
		cand := a.Candidate(el)
		verdict, _ := a.Classify(cand)
		kind, ok := verdict.Kind()
		if !ok {
			return
		}

		text := a.StripPrefix(cand.Text)
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}

		topics = append(topics, sidetoc.Topic{
			Text:    Preview(text, c.PreviewLength),
			Level:   1,
			Kind:    kind,
			Element: elementRef(el.Get(0)),
		})
	})

	return topics
}

// Preview truncates text to n characters, appending "..." when truncated.
// Empty text becomes EmptyMessage.
func Preview(text string, n int) string {
	if text == "" {
		return EmptyMessage
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
