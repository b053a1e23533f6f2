package watch_test

import (
	"context"
	"errors"
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

// fakeObserver records the handler passed to Observe so tests can deliver
// mutation batches by hand.
type fakeObserver struct {
	mu        sync.Mutex
	handler   sidetoc.MutationHandler
	selectors []string
	observed  int
	closed    int
	err       error
}

func (f *fakeObserver) mock() *mock.MutationObserver {
	return &mock.MutationObserver{
		ObserveFn: func(_ context.Context, selectors []string, fn sidetoc.MutationHandler) (sidetoc.Subscription, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.observed++
			if f.err != nil {
				return nil, f.err
			}
			f.handler = fn
			f.selectors = selectors
			return &mock.Subscription{
				RootFn: func() string { return selectors[0] },
				CloseFn: func() error {
					f.mu.Lock()
					defer f.mu.Unlock()
					f.closed++
					return nil
				},
			}, nil
		},
	}
}

func (f *fakeObserver) deliver(batch ...sidetoc.Mutation) {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	fn(batch)
}

func (f *fakeObserver) counts() (observed, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.observed, f.closed
}

var (
	attrChange   = sidetoc.Mutation{Type: sidetoc.MutationAttributes}
	textChange   = sidetoc.Mutation{Type: sidetoc.MutationCharacterData}
	nodeAdded    = sidetoc.Mutation{Type: sidetoc.MutationChildList, Added: 1}
	nodesRemoved = sidetoc.Mutation{Type: sidetoc.MutationChildList, Removed: 2}
)

func TestRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		batch []sidetoc.Mutation
		want  bool
	}{
		{"empty batch", nil, false},
		{"attribute only", []sidetoc.Mutation{attrChange, attrChange}, false},
		{"character data only", []sidetoc.Mutation{textChange}, false},
		{"removal only", []sidetoc.Mutation{nodesRemoved}, false},
		{"one added node", []sidetoc.Mutation{nodeAdded}, true},
		{"added node among noise", []sidetoc.Mutation{attrChange, nodesRemoved, nodeAdded}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, watch.Relevant(tt.batch))
		})
	}
}

func TestMonitor(t *testing.T) {
	t.Parallel()

	t.Run("rescans once per relevant batch only", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		m := &watch.Monitor{Observer: obs.mock(), BootstrapDelay: time.Hour}
		var rescans atomic.Int32

		require.NoError(t, m.Start(context.Background(), []string{"main"}, func() { rescans.Add(1) }))
		defer m.Stop()

		obs.deliver(attrChange)
		assert.Equal(t, int32(0), rescans.Load())

		obs.deliver(nodeAdded)
		assert.Equal(t, int32(1), rescans.Load())
	})

	t.Run("runs bootstrap rescan after delay", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		m := &watch.Monitor{Observer: obs.mock(), BootstrapDelay: 10 * time.Millisecond}
		var rescans atomic.Int32

		require.NoError(t, m.Start(context.Background(), []string{"main"}, func() { rescans.Add(1) }))
		defer m.Stop()

		assert.Eventually(t, func() bool { return rescans.Load() == 1 }, time.Second, 5*time.Millisecond)
	})

	t.Run("starts only once", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		m := &watch.Monitor{Observer: obs.mock(), BootstrapDelay: time.Hour}

		require.NoError(t, m.Start(context.Background(), []string{"main"}, func() {}))
		require.NoError(t, m.Start(context.Background(), []string{"other"}, func() {}))
		defer m.Stop()

		observed, _ := obs.counts()
		assert.Equal(t, 1, observed)
		assert.Equal(t, "main", m.Root())
	})

	t.Run("passes selector chain to observer", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		m := &watch.Monitor{Observer: obs.mock(), BootstrapDelay: time.Hour}
		chain := []string{`[data-testid="conversation-main"]`, `[role="main"]`}

		require.NoError(t, m.Start(context.Background(), chain, func() {}))
		defer m.Stop()

		assert.Equal(t, chain, obs.selectors)
	})

	t.Run("stop releases subscription once and silences handler", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{}
		m := &watch.Monitor{Observer: obs.mock(), BootstrapDelay: 20 * time.Millisecond}
		var rescans atomic.Int32
		require.NoError(t, m.Start(context.Background(), []string{"main"}, func() { rescans.Add(1) }))

		require.NoError(t, m.Stop())
		require.NoError(t, m.Stop())

		_, closed := obs.counts()
		assert.Equal(t, 1, closed)
		assert.Equal(t, "", m.Root())

		obs.deliver(nodeAdded)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(0), rescans.Load())
	})

	t.Run("stop before start is a no-op", func(t *testing.T) {
		t.Parallel()

		m := &watch.Monitor{}

		assert.NoError(t, m.Stop())
	})

	t.Run("observer failure still bootstraps", func(t *testing.T) {
		t.Parallel()

		obs := &fakeObserver{err: errors.New("no page")}
		m := &watch.Monitor{Observer: obs.mock(), BootstrapDelay: 10 * time.Millisecond}
		var rescans atomic.Int32

		err := m.Start(context.Background(), []string{"main"}, func() { rescans.Add(1) })
		defer m.Stop()

		require.Error(t, err)
		assert.Eventually(t, func() bool { return rescans.Load() == 1 }, time.Second, 5*time.Millisecond)
	})

	t.Run("missing observer is unavailable", func(t *testing.T) {
		t.Parallel()

		m := &watch.Monitor{BootstrapDelay: time.Hour}

		err := m.Start(context.Background(), nil, func() {})
		defer m.Stop()

		assert.Equal(t, sidetoc.EUNAVAILABLE, sidetoc.ErrorCode(err))
	})
}
