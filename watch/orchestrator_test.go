package watch_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sidetoc"
	"github.com/fwojciec/sidetoc/mock"
	"github.com/fwojciec/sidetoc/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publication is one call to the publish callback.
type publication struct {
	topics         []sidetoc.Topic
	isSearchResult bool
}

type recorder struct {
	mu   sync.Mutex
	pubs []publication
}

func (r *recorder) publish(topics []sidetoc.Topic, isSearchResult bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pubs = append(r.pubs, publication{topics: topics, isSearchResult: isSearchResult})
}

func (r *recorder) all() []publication {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]publication(nil), r.pubs...)
}

func (r *recorder) last(t *testing.T) publication {
	t.Helper()
	pubs := r.all()
	require.NotEmpty(t, pubs)
	return pubs[len(pubs)-1]
}

func staticPage(html string) *mock.Page {
	return &mock.Page{
		HostFn: func() string { return "chatgpt.com" },
		HTMLFn: func(context.Context) (string, error) { return html, nil },
	}
}

// textScanner returns one level-2 heading per text on every scan.
func textScanner(topics ...string) *mock.Scanner {
	return &mock.Scanner{
		ScanFn: func(html string, host string) (*sidetoc.ScanResult, error) {
			res := &sidetoc.ScanResult{Host: host, Adapter: "generic", Topics: []sidetoc.Topic{}}
			for _, text := range topics {
				res.Topics = append(res.Topics, sidetoc.Topic{Text: text, Level: 2, Kind: sidetoc.KindHeading})
			}
			return res, nil
		},
		RootSelectorsFn: func(string) []string { return []string{"main"} },
	}
}

func testConfig() sidetoc.Config {
	cfg := sidetoc.DefaultConfig()
	cfg.BootstrapDelay = time.Hour
	return cfg
}

func TestOrchestrator_Rescan(t *testing.T) {
	t.Parallel()

	t.Run("publishes scanned topics as non-search result", func(t *testing.T) {
		t.Parallel()

		var gotHTML, gotHost string
		rec := &recorder{}
		o := &watch.Orchestrator{
			Page: staticPage("<html></html>"),
			Scanner: &mock.Scanner{
				ScanFn: func(html string, host string) (*sidetoc.ScanResult, error) {
					gotHTML, gotHost = html, host
					return &sidetoc.ScanResult{Topics: []sidetoc.Topic{{Text: "Intro", Level: 1, Kind: sidetoc.KindHeading}}}, nil
				},
			},
			Publish: rec.publish,
			Config:  testConfig(),
		}

		require.NoError(t, o.Rescan(context.Background()))

		assert.Equal(t, "<html></html>", gotHTML)
		assert.Equal(t, "chatgpt.com", gotHost)
		pub := rec.last(t)
		assert.False(t, pub.isSearchResult)
		assert.Equal(t, []string{"Intro"}, texts(pub.topics))
		assert.Equal(t, pub.topics, o.Topics())
		require.NotNil(t, o.Result())
	})

	t.Run("keeps stale list when page read fails", func(t *testing.T) {
		t.Parallel()

		var fail atomic.Bool
		var logs bytes.Buffer
		rec := &recorder{}
		o := &watch.Orchestrator{
			Page: &mock.Page{
				HostFn: func() string { return "claude.ai" },
				HTMLFn: func(context.Context) (string, error) {
					if fail.Load() {
						return "", errors.New("target closed")
					}
					return "<html></html>", nil
				},
			},
			Scanner: textScanner("Kept"),
			Publish: rec.publish,
			Config:  testConfig(),
			Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
		}
		require.NoError(t, o.Rescan(context.Background()))

		fail.Store(true)
		err := o.Rescan(context.Background())

		require.Error(t, err)
		assert.Len(t, rec.all(), 1)
		assert.Equal(t, []string{"Kept"}, texts(o.Topics()))
		assert.Contains(t, logs.String(), "page read failed")
	})

	t.Run("keeps stale list when scan fails", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := &watch.Orchestrator{
			Page: staticPage(""),
			Scanner: &mock.Scanner{
				ScanFn: func(string, string) (*sidetoc.ScanResult, error) {
					return nil, sidetoc.Errorf(sidetoc.EINVALID, "bad html")
				},
			},
			Publish: rec.publish,
			Config:  testConfig(),
		}

		err := o.Rescan(context.Background())

		assert.Equal(t, sidetoc.EINVALID, sidetoc.ErrorCode(err))
		assert.Empty(t, rec.all())
		assert.Nil(t, o.Result())
	})

	t.Run("never publishes concurrently", func(t *testing.T) {
		t.Parallel()

		var inFlight, maxInFlight atomic.Int32
		o := &watch.Orchestrator{
			Page:    staticPage(""),
			Scanner: textScanner("A"),
			Publish: func([]sidetoc.Topic, bool) {
				n := inFlight.Add(1)
				for {
					m := maxInFlight.Load()
					if n <= m || maxInFlight.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
			},
			Config: testConfig(),
		}

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = o.Rescan(context.Background())
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), maxInFlight.Load())
	})
}

func TestOrchestrator_Start(t *testing.T) {
	t.Parallel()

	t.Run("bootstrap scan publishes the list", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		rec := &recorder{}
		cfg := testConfig()
		cfg.BootstrapDelay = 10 * time.Millisecond
		o := &watch.Orchestrator{
			Page:     staticPage(""),
			Scanner:  textScanner("Intro"),
			Observer: obs.mock(),
			Publish:  rec.publish,
			Config:   cfg,
		}

		require.NoError(t, o.Start(context.Background()))
		defer o.Stop()

		assert.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, []string{"main"}, obs.selectors)
	})

	t.Run("attribute-only batch does not rescan and added node rescans once", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		rec := &recorder{}
		o := &watch.Orchestrator{
			Page:     staticPage(""),
			Scanner:  textScanner("Intro"),
			Observer: obs.mock(),
			Publish:  rec.publish,
			Config:   testConfig(),
		}
		require.NoError(t, o.Start(context.Background()))
		defer o.Stop()

		obs.deliver(attrChange, attrChange)
		assert.Empty(t, rec.all())

		obs.deliver(attrChange, nodeAdded)
		assert.Len(t, rec.all(), 1)
	})

	t.Run("observer failure is logged and start succeeds", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		o := &watch.Orchestrator{
			Page:     staticPage(""),
			Scanner:  textScanner(),
			Observer: (&fakeObserver{err: sidetoc.Errorf(sidetoc.EUNAVAILABLE, "no body")}).mock(),
			Config:   testConfig(),
			Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
		}

		err := o.Start(context.Background())
		defer o.Stop()

		require.NoError(t, err)
		assert.Contains(t, logs.String(), "automatic rescans disabled")
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		t.Parallel()

		o := &watch.Orchestrator{Page: staticPage(""), Scanner: textScanner()}

		err := o.Start(context.Background())

		assert.Equal(t, sidetoc.EINVALID, sidetoc.ErrorCode(err))
	})

	t.Run("second start is a no-op", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		o := &watch.Orchestrator{
			Page:     staticPage(""),
			Scanner:  textScanner(),
			Observer: obs.mock(),
			Config:   testConfig(),
		}

		require.NoError(t, o.Start(context.Background()))
		require.NoError(t, o.Start(context.Background()))
		defer o.Stop()

		observed, _ := obs.counts()
		assert.Equal(t, 1, observed)
	})
}

func TestOrchestrator_Search(t *testing.T) {
	t.Parallel()

	newOrchestrator := func(rec *recorder) *watch.Orchestrator {
		return &watch.Orchestrator{
			Page:    staticPage(""),
			Scanner: textScanner("Setup guide", "Usage", "Advanced setup"),
			Publish: rec.publish,
			Config:  testConfig(),
		}
	}

	t.Run("publishes filtered list as search result", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := newOrchestrator(rec)
		require.NoError(t, o.Rescan(context.Background()))

		o.Search("setup")

		pub := rec.last(t)
		assert.True(t, pub.isSearchResult)
		assert.Equal(t, []string{"Setup guide", "Advanced setup"}, texts(pub.topics))
		assert.Equal(t, `<span class="search-highlight">Setup</span> guide`, pub.topics[0].HighlightedText)
	})

	t.Run("blank term restores full list", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := newOrchestrator(rec)
		require.NoError(t, o.Rescan(context.Background()))
		o.Search("setup")

		o.Search("  ")

		pub := rec.last(t)
		assert.False(t, pub.isSearchResult)
		assert.Len(t, pub.topics, 3)
		for _, tp := range pub.topics {
			assert.Empty(t, tp.HighlightedText)
		}
	})

	t.Run("rescan keeps active filter", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := newOrchestrator(rec)
		o.Search("usage")

		require.NoError(t, o.Rescan(context.Background()))

		pub := rec.last(t)
		assert.True(t, pub.isSearchResult)
		assert.Equal(t, []string{"Usage"}, texts(pub.topics))
	})

	t.Run("no match publishes empty search result", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := newOrchestrator(rec)
		require.NoError(t, o.Rescan(context.Background()))

		o.Search("nothing")

		pub := rec.last(t)
		assert.True(t, pub.isSearchResult)
		assert.Empty(t, pub.topics)
	})
}

func TestOrchestrator_Reveal(t *testing.T) {
	t.Parallel()

	ref := sidetoc.ElementRef{Path: "html > body:nth-child(2) > h2:nth-child(1)", Index: 0}

	t.Run("delegates to revealer", func(t *testing.T) {
		t.Parallel()

		var got sidetoc.ElementRef
		o := &watch.Orchestrator{Revealer: &mock.Revealer{
			RevealFn: func(_ context.Context, r sidetoc.ElementRef) error {
				got = r
				return nil
			},
		}}

		require.NoError(t, o.Reveal(context.Background(), sidetoc.Topic{Text: "Setup", Element: ref}))
		assert.Equal(t, ref, got)
	})

	t.Run("topic without element is a no-op", func(t *testing.T) {
		t.Parallel()

		o := &watch.Orchestrator{}

		assert.NoError(t, o.Reveal(context.Background(), sidetoc.Topic{Text: "Setup"}))
	})

	t.Run("missing revealer is unavailable", func(t *testing.T) {
		t.Parallel()

		o := &watch.Orchestrator{}

		err := o.Reveal(context.Background(), sidetoc.Topic{Element: ref})

		assert.Equal(t, sidetoc.EUNAVAILABLE, sidetoc.ErrorCode(err))
	})
}

func TestOrchestrator_Stop(t *testing.T) {
	t.Parallel()

	t.Run("releases subscription once", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		o := &watch.Orchestrator{
			Page:     staticPage(""),
			Scanner:  textScanner(),
			Observer: obs.mock(),
			Config:   testConfig(),
		}
		require.NoError(t, o.Start(context.Background()))

		require.NoError(t, o.Stop())
		require.NoError(t, o.Stop())

		_, closed := obs.counts()
		assert.Equal(t, 1, closed)
	})

	t.Run("before start is a no-op", func(t *testing.T) {
		t.Parallel()

		o := &watch.Orchestrator{}

		assert.NoError(t, o.Stop())
	})

	t.Run("cancels pending bootstrap", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		cfg := testConfig()
		cfg.BootstrapDelay = 20 * time.Millisecond
		o := &watch.Orchestrator{
			Page:     staticPage(""),
			Scanner:  textScanner("A"),
			Observer: (&fakeObserver{}).mock(),
			Publish:  rec.publish,
			Config:   cfg,
		}
		require.NoError(t, o.Start(context.Background()))

		require.NoError(t, o.Stop())
		time.Sleep(50 * time.Millisecond)

		assert.Empty(t, rec.all())
	})
}

func texts(topics []sidetoc.Topic) []string {
	out := make([]string, len(topics))
	for i, tp := range topics {
		out[i] = tp.Text
	}
	return out
}
