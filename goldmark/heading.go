// Package goldmark recognizes markdown-style headings using the goldmark parser.
package goldmark

import (
	"strings"

	"github.com/fwojciec/sidetoc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Ensure HeadingParser implements sidetoc.HeadingParser at compile time.
var _ sidetoc.HeadingParser = (*HeadingParser)(nil)

// HeadingParser recognizes ATX headings ("# Title" through "###### Title")
// in single lines of rendered page text.
type HeadingParser struct {
	md goldmark.Markdown
}

// NewHeadingParser creates a new HeadingParser.
func NewHeadingParser() *HeadingParser {
	return &HeadingParser{md: goldmark.New()}
}

// ParseHeading returns the level and text of the heading in line.
// Only ATX headings count. The text is the rest of the line after the
// opening markers, so a closing sequence of '#' is kept as typed.
func (p *HeadingParser) ParseHeading(line string) (int, string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}

	src := []byte(line)
	doc := p.md.Parser().Parse(text.NewReader(src))

	h, ok := doc.FirstChild().(*ast.Heading)
	if !ok || h.NextSibling() != nil {
		return 0, "", false
	}
	title := strings.TrimSpace(line[h.Level:])
	if title == "" {
		return 0, "", false
	}
	return h.Level, title, true
}
