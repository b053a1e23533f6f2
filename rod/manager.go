package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/sidetoc"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the default number of fetched pages before browser recycling.
const DefaultMaxPages = 75

// BrowserManager owns the Chrome instance behind fetches and live pages.
//
// A launched browser is recycled after maxPages fetches, since Chrome
// memory grows under load and never returns to its baseline. A browser
// reached through WithControlURL belongs to the user and is never recycled
// or killed, only disconnected.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser    *rod.Browser
	launcher   *launcher.Launcher
	pageCount  int64
	maxPages   int64
	headless   bool
	controlURL string
	mu         sync.Mutex
	closed     atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of fetched pages before the browser is recycled.
// Defaults to 75 if not specified.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithHeadless controls whether a launched browser shows a window.
// Defaults to true.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// WithControlURL connects to an already running browser through its
// DevTools websocket URL instead of launching one. This lets a live session
// attach to a browser where the user is signed in to the chat site.
func WithControlURL(u string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.controlURL = u
	}
}

// NewBrowserManager creates a BrowserManager and starts or connects to its browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		headless: true,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.connect(); err != nil {
		return nil, err
	}

	return bm, nil
}

// Browser returns the current browser instance, recycling a launched browser
// once the page count has reached maxPages.
func (bm *BrowserManager) Browser() (*rod.Browser, error) {
	if bm.closed.Load() {
		return nil, sidetoc.Errorf(sidetoc.EINVALID, "browser is closed")
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.launcher != nil && atomic.LoadInt64(&bm.pageCount) >= bm.maxPages {
		bm.recycleBrowser()
	}

	return bm.browser, nil
}

// IncrementPageCount records a processed page toward the recycling threshold.
func (bm *BrowserManager) IncrementPageCount() {
	atomic.AddInt64(&bm.pageCount, 1)
}

// Open creates a tab, navigates it to url and waits for the page to load.
// The returned Page stays open until its Close method is called and does
// not count toward recycling.
func (bm *BrowserManager) Open(ctx context.Context, url string, opts ...PageOption) (*Page, error) {
	browser, err := bm.Browser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	loading := page.Context(ctx)
	if err := loading.Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := loading.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("waiting for %s: %w", url, err)
	}

	return newPage(page, opts...), nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.closeBrowser()
}

// connect attaches to the configured browser, or launches one.
func (bm *BrowserManager) connect() error {
	if bm.controlURL == "" {
		return bm.launchBrowser()
	}

	browser := rod.New().ControlURL(bm.controlURL)
	if err := browser.Connect(); err != nil {
		return sidetoc.Errorf(sidetoc.EUNAVAILABLE, "connecting to browser at %s: %v", bm.controlURL, err)
	}
	bm.browser = browser
	return nil
}

// launchBrowser starts a new browser instance with stability flags.
func (bm *BrowserManager) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(bm.headless)

	u, err := lnchr.Launch()
	if err != nil {
		return sidetoc.Errorf(sidetoc.EUNAVAILABLE, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// closeBrowser shuts down a launched browser, or disconnects from an
// attached one. Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	if bm.launcher == nil {
		// Attached browsers belong to the user; closing would quit Chrome.
		bm.browser = nil
		return nil
	}

	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	bm.launcher.Kill()
	bm.launcher = nil
	return err
}

// recycleBrowser starts a fresh browser and closes the old one.
// If launching the new browser fails, the old browser is kept.
// Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser := bm.browser
	oldLauncher := bm.launcher
	bm.browser = nil
	bm.launcher = nil

	if err := bm.launchBrowser(); err != nil {
		bm.browser = oldBrowser
		bm.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	atomic.StoreInt64(&bm.pageCount, 0)
}

// LauncherPID returns the process ID of the browser launcher, or 0 for an
// attached browser. This method exists for testing purposes to verify
// proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
