package rod

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sidetoc"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements sidetoc.Fetcher at compile time.
var _ sidetoc.Fetcher = (*Fetcher)(nil)

// Default fetch settings.
const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultSettleTime   = 500 * time.Millisecond
)

// Fetcher retrieves rendered chat pages using Chrome browser automation.
// Chat transcripts stream in after the load event, so Fetch waits for the
// DOM to stop changing before taking the snapshot.
//
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	owned   bool
	timeout time.Duration
	settle  time.Duration
	closed  atomic.Bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout bounds each fetch, including the settle wait.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettleTime sets how long the DOM must stay unchanged before the
// snapshot is taken. Zero skips the wait.
func WithSettleTime(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// WithManager makes the Fetcher use an existing BrowserManager, which the
// caller keeps ownership of.
func WithManager(bm *BrowserManager) FetcherOption {
	return func(f *Fetcher) {
		f.manager = bm
	}
}

// NewFetcher creates a new Fetcher. Without WithManager it launches its own
// headless browser, released by Close.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		settle:  DefaultSettleTime,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.manager == nil {
		bm, err := NewBrowserManager()
		if err != nil {
			return nil, err
		}
		f.manager = bm
		f.owned = true
	}
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", sidetoc.Errorf(sidetoc.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := f.manager.Browser()
	if err != nil {
		return "", err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()
	defer f.manager.IncrementPageCount()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	if f.settle > 0 {
		if err := page.WaitDOMStable(f.settle, 0); err != nil {
			return "", err
		}
	}

	return page.HTML()
}

// Close releases browser resources if the Fetcher launched its own browser.
// Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !f.owned {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
