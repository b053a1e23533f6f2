package sidetoc_test

import (
	"testing"

	"github.com/fwojciec/sidetoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTopics(t *testing.T) {
	t.Parallel()

	topics := []sidetoc.Topic{
		heading("Installing Go", 1),
		heading("Setup", 2),
		message("how do I install go modules?", sidetoc.KindUser),
	}

	t.Run("filters case-insensitively and highlights every match", func(t *testing.T) {
		t.Parallel()

		got, isSearch := sidetoc.FilterTopics(topics, "GO")

		require.True(t, isSearch)
		require.Len(t, got, 2)
		assert.Equal(t, `Installing <span class="search-highlight">Go</span>`, got[0].HighlightedText)
		assert.Equal(t, `how do I install <span class="search-highlight">go</span> modules?`, got[1].HighlightedText)
	})

	t.Run("treats regexp metacharacters literally", func(t *testing.T) {
		t.Parallel()

		got, _ := sidetoc.FilterTopics(topics, "modules?")

		require.Len(t, got, 1)
		assert.Equal(t, `how do I install go <span class="search-highlight">modules?</span>`, got[0].HighlightedText)
	})

	t.Run("escapes page text around and inside matches", func(t *testing.T) {
		t.Parallel()

		hostile := []sidetoc.Topic{message("Use <img src=x onerror=alert(1)> in docs", sidetoc.KindAssistant)}

		got, _ := sidetoc.FilterTopics(hostile, "docs")
		require.Len(t, got, 1)
		assert.Equal(t, `Use &lt;img src=x onerror=alert(1)&gt; in <span class="search-highlight">docs</span>`, got[0].HighlightedText)

		got, _ = sidetoc.FilterTopics(hostile, "<img")
		require.Len(t, got, 1)
		assert.Equal(t, `Use <span class="search-highlight">&lt;img</span> src=x onerror=alert(1)&gt; in docs`, got[0].HighlightedText)
	})

	t.Run("blank term clears highlights and is not a search result", func(t *testing.T) {
		t.Parallel()

		highlighted := []sidetoc.Topic{{Text: "Setup", Level: 1, HighlightedText: "<span>Setup</span>"}}

		got, isSearch := sidetoc.FilterTopics(highlighted, "   ")

		assert.False(t, isSearch)
		require.Len(t, got, 1)
		assert.Empty(t, got[0].HighlightedText)
		assert.Equal(t, "<span>Setup</span>", highlighted[0].HighlightedText, "input must not be modified")
	})

	t.Run("no matches yields empty search result", func(t *testing.T) {
		t.Parallel()

		got, isSearch := sidetoc.FilterTopics(topics, "rust")

		assert.True(t, isSearch)
		assert.Empty(t, got)
	})
}
