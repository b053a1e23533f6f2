package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/sidetoc"
	"github.com/fwojciec/sidetoc/batch"
	main "github.com/fwojciec/sidetoc/cmd/sidetoc"
	"github.com/fwojciec/sidetoc/mock"
	"github.com/stretchr/testify/require"
)

const chatgptPage = `<html><head><title>ChatGPT</title></head><body><main><div class="flex flex-col">
<article data-testid="conversation-turn"><div data-message-author-role="user"><div class="whitespace-pre-wrap">How do I set up a Go project?</div></div></article>
<article data-testid="conversation-turn"><div data-message-author-role="assistant"><div class="markdown prose"><h1>Intro</h1><p>Here is how.</p><h2>Setup</h2><p>Run go mod init.</p><h2>Usage</h2><p>Run go build.</p></div></div></article>
</div></main></body></html>`

// sampleTopics is a small scan result: a heading with a subheading, then
// one user message.
func sampleTopics() []sidetoc.Topic {
	return []sidetoc.Topic{
		{Kind: sidetoc.KindHeading, Level: 1, Text: "Intro", Element: sidetoc.ElementRef{Index: 0}},
		{Kind: sidetoc.KindHeading, Level: 2, Text: "Setup", Element: sidetoc.ElementRef{Index: 1}},
		{Kind: sidetoc.KindUser, Level: 1, Text: "How do I start?", Element: sidetoc.ElementRef{Index: 0}},
	}
}

// testDeps returns dependencies whose runner reads files from pages and
// scans every page into sampleTopics.
func testDeps(stdout, stderr io.Writer, pages map[string]string) *main.Dependencies {
	scanner := &mock.Scanner{
		ScanFn: func(html string, host string) (*sidetoc.ScanResult, error) {
			return &sidetoc.ScanResult{Host: host, Adapter: "generic", Topics: sampleTopics()}, nil
		},
	}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.DiscardHandler),
		Config: sidetoc.DefaultConfig(),
		Runner: &batch.Runner{
			Scanner: scanner,
			ReadFile: func(name string) ([]byte, error) {
				html, ok := pages[name]
				if !ok {
					return nil, os.ErrNotExist
				}
				return []byte(html), nil
			},
		},
	}
}

// noAnnotations is an annotation store with nothing in it.
func noAnnotations() *mock.AnnotationService {
	return &mock.AnnotationService{
		FindAnnotationsFn: func(_ context.Context, _ []string) (map[string]*sidetoc.Annotation, error) {
			return map[string]*sidetoc.Annotation{}, nil
		},
	}
}

// keyFor returns the key of the first line of scan --keys output that
// contains text.
func keyFor(t *testing.T, output, text string) string {
	t.Helper()

	for _, line := range strings.Split(output, "\n") {
		key, rest, ok := strings.Cut(line, "\t")
		if ok && strings.Contains(rest, text) {
			return key
		}
	}
	require.Failf(t, "key not found", "no line with %q in:\n%s", text, output)
	return ""
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader on
// different goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
