package goquery_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/sidetoc"
	"github.com/fwojciec/sidetoc/goquery"
	"github.com/fwojciec/sidetoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadingExtractor(lines sidetoc.HeadingParser) *goquery.HeadingExtractor {
	return &goquery.HeadingExtractor{MinLength: 3, MaxLength: 100, Lines: lines}
}

// hashParser recognizes lines starting with '#' markers.
func hashParser(calls *[]string) *mock.HeadingParser {
	return &mock.HeadingParser{
		ParseHeadingFn: func(line string) (int, string, bool) {
			if calls != nil {
				*calls = append(*calls, line)
			}
			level := len(line) - len(strings.TrimLeft(line, "#"))
			if level == 0 {
				return 0, "", false
			}
			return level, strings.TrimSpace(line[level:]), true
		},
	}
}

func TestHeadingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("returns headings in container then document order", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body>
<div class="markdown"><h1>First title</h1><h3>Nested deep</h3></div>
<h2>Outside heading</h2>
<div class="markdown"><h2>Second part</h2></div>
</body></html>`)

		topics, fallback := newHeadingExtractor(nil).Extract(doc, goquery.NewGenericAdapter())

		assert.False(t, fallback)
		require.Len(t, topics, 3)
		assert.Equal(t, []string{"First title", "Nested deep", "Second part"}, texts(topics))
		assert.Equal(t, 1, topics[0].Level)
		assert.Equal(t, 3, topics[1].Level)
		assert.Equal(t, 2, topics[2].Level)
		for _, tp := range topics {
			assert.Equal(t, sidetoc.KindHeading, tp.Kind)
			assert.False(t, tp.Element.IsZero())
		}
	})

	t.Run("searches the body when no container exists", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body><section><h4>Alpha beta</h4></section><h6>Gamma</h6></body></html>`)

		topics, _ := newHeadingExtractor(nil).Extract(doc, goquery.NewGenericAdapter())

		assert.Equal(t, []string{"Alpha beta", "Gamma"}, texts(topics))
		assert.Equal(t, 4, topics[0].Level)
		assert.Equal(t, 6, topics[1].Level)
	})

	t.Run("enforces text length bounds", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body>
<h2>ab</h2>
<h2>abc</h2>
<h2>   </h2>
<h2>`+strings.Repeat("x", 99)+`</h2>
<h2>`+strings.Repeat("y", 100)+`</h2>
</body></html>`)

		topics, _ := newHeadingExtractor(nil).Extract(doc, goquery.NewGenericAdapter())

		assert.Equal(t, []string{"abc", strings.Repeat("x", 99)}, texts(topics))
	})

	t.Run("trims heading text", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body><h2>
   Spaced out
</h2></body></html>`)

		topics, _ := newHeadingExtractor(nil).Extract(doc, goquery.NewGenericAdapter())

		assert.Equal(t, []string{"Spaced out"}, texts(topics))
	})

	t.Run("falls back to markdown lines when no heading qualifies", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body><pre>
# Getting Started
Some text
## Install steps
#tiny
</pre><h2>ab</h2></body></html>`)

		var calls []string
		topics, fallback := newHeadingExtractor(hashParser(&calls)).Extract(doc, goquery.NewGenericAdapter())

		assert.True(t, fallback)
		require.Len(t, topics, 2)
		assert.Equal(t, "Getting Started", topics[0].Text)
		assert.Equal(t, 1, topics[0].Level)
		assert.Equal(t, "Install steps", topics[1].Text)
		assert.Equal(t, 2, topics[1].Level)
		body := sidetoc.ElementRef{Path: "html > body:nth-child(2)", Index: 1}
		assert.Equal(t, body, topics[0].Element)
		assert.Equal(t, body, topics[1].Element)
		assert.NotContains(t, calls, "#tiny")
	})

	t.Run("skips fallback when headings exist", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body><h2>Real heading</h2><pre>
# Not used
</pre></body></html>`)

		var calls []string
		topics, fallback := newHeadingExtractor(hashParser(&calls)).Extract(doc, goquery.NewGenericAdapter())

		assert.False(t, fallback)
		assert.Equal(t, []string{"Real heading"}, texts(topics))
		assert.Empty(t, calls)
	})

	t.Run("no fallback without a line parser", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body><pre>
# Getting Started
</pre></body></html>`)

		topics, fallback := newHeadingExtractor(nil).Extract(doc, goquery.NewGenericAdapter())

		assert.False(t, fallback)
		assert.Empty(t, topics)
	})
}

func texts(topics []sidetoc.Topic) []string {
	out := make([]string, len(topics))
	for i, tp := range topics {
		out[i] = tp.Text
	}
	return out
}
