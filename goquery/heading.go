package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sidetoc"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// Bounds on the length of a text line considered by the markdown fallback.
// Shorter lines are too short to be meaningful headings.
const (
	fallbackLineMinLength = 6
	fallbackLineMaxLength = 100
)

// HeadingExtractor finds structural headings in a page.
type HeadingExtractor struct {
	// MinLength and MaxLength bound accepted heading text length:
	// min inclusive, max exclusive.
	MinLength int
	MaxLength int

	// Lines recognizes markdown-style headings in rendered text for the
	// fallback strategy. A nil parser disables the fallback.
	Lines sidetoc.HeadingParser
}

// Extract returns heading topics in container order, then document order
// within each container. Heading elements are searched inside the adapter's
// heading containers, or the whole body when no container exists.
//
// When no heading element qualifies anywhere, the rendered body text is
// scanned line by line for markdown-style headings instead; those topics all
// point at the body since their position is unknown, and fallback is true.
func (x *HeadingExtractor) Extract(doc *goquery.Document, a *Adapter) (topics []sidetoc.Topic, fallback bool) {
	containers := doc.Selection.Slice(0, 0)
	if a.HeadingContainers != "" {
		containers = doc.Find(a.HeadingContainers)
	}
	if containers.Length() == 0 {
		containers = doc.Find("body")
	}

	containers.Each(func(_ int, c *goquery.Selection) {
		c.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
			text := strings.TrimSpace(h.Text())
			if !x.acceptLength(text) {
				return
			}
			topics = append(topics, sidetoc.Topic{
				Text:    text,
				Level:   headingLevel(goquery.NodeName(h)),
				Kind:    sidetoc.KindHeading,
				Element: elementRef(h.Get(0)),
			})
		})
	})
	if len(topics) > 0 || x.Lines == nil {
		return topics, false
	}

	return x.fallback(doc), true
}

func (x *HeadingExtractor) acceptLength(text string) bool {
	n := utf8.RuneCountInString(text)
	return n >= x.MinLength && n < x.MaxLength
}

// fallback scans rendered body text for markdown-style heading lines.
func (x *HeadingExtractor) fallback(doc *goquery.Document) []sidetoc.Topic {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	anchor := elementRef(body.Get(0))

	var topics []sidetoc.Topic
	for _, line := range strings.Split(body.Text(), "\n") {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if n < fallbackLineMinLength || n >= fallbackLineMaxLength {
			continue
		}
		level, text, ok := x.Lines.ParseHeading(line)
		if !ok {
			continue
		}
		topics = append(topics, sidetoc.Topic{
			Text:    text,
			Level:   level,
			Kind:    sidetoc.KindHeading,
			Element: anchor,
		})
	}
	return topics
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 1
}
