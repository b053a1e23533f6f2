package watch

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sidetoc"
)

// Fingerprint hashes the parts of a topic list a reader can see: text,
// level, kind and highlight. Lists that render identically share a
// fingerprint, so consumers can skip redundant redraws.
func Fingerprint(topics []sidetoc.Topic) uint64 {
	d := xxhash.New()
	for _, t := range topics {
		_, _ = d.WriteString(string(t.Kind))
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(strconv.Itoa(t.Level))
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(t.Text)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(t.HighlightedText)
		_, _ = d.WriteString("\x1e")
	}
	return d.Sum64()
}
