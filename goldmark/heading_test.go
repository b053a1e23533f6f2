package goldmark_test

import (
	"testing"

	"github.com/fwojciec/sidetoc"
	"github.com/fwojciec/sidetoc/goldmark"
	"github.com/stretchr/testify/assert"
)

var _ sidetoc.HeadingParser = (*goldmark.HeadingParser)(nil)

func TestHeadingParser_ParseHeading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		line      string
		wantLevel int
		wantText  string
		wantOK    bool
	}{
		{"level one", "# Introduction", 1, "Introduction", true},
		{"level three", "### Deep dive", 3, "Deep dive", true},
		{"level six", "###### Tiny heading", 6, "Tiny heading", true},
		{"surrounding whitespace", "   ## Setup steps  ", 2, "Setup steps", true},
		{"closing sequence kept", "## Setup ##", 2, "Setup ##", true},
		{"hash inside text", "# C# tips #", 1, "C# tips #", true},
		{"seven markers is not a heading", "####### Too deep", 0, "", false},
		{"marker without space", "#hashtag text", 0, "", false},
		{"plain text", "Just a sentence", 0, "", false},
		{"marker only", "#", 0, "", false},
		{"empty", "", 0, "", false},
	}

	p := goldmark.NewHeadingParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			level, text, ok := p.ParseHeading(tt.line)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantText, text)
		})
	}
}
