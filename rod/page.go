package rod

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sidetoc"
	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// Compile-time interface verification.
var (
	_ sidetoc.Page             = (*Page)(nil)
	_ sidetoc.MutationObserver = (*Page)(nil)
	_ sidetoc.Revealer         = (*Page)(nil)
	_ sidetoc.Subscription     = (*subscription)(nil)
)

// Page is a live browser tab. It reads the rendered DOM, relays subtree
// mutations from an in-page MutationObserver, and scrolls to and highlights
// elements.
type Page struct {
	page      *rod.Page
	highlight time.Duration
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithHighlightDuration sets how long a revealed element stays highlighted.
func WithHighlightDuration(d time.Duration) PageOption {
	return func(p *Page) {
		p.highlight = d
	}
}

func newPage(page *rod.Page, opts ...PageOption) *Page {
	p := &Page{page: page, highlight: sidetoc.DefaultHighlightDuration}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Host returns the host of the tab's current URL, or "" when the tab is gone.
func (p *Page) Host() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	u, err := url.Parse(info.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// HTML returns the current rendered HTML of the tab.
func (p *Page) HTML(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("reading page HTML: %w", err)
	}
	return html, nil
}

// Close closes the tab.
func (p *Page) Close() error {
	return p.page.Close()
}

// observeJS installs a MutationObserver on the first element matching one of
// selectors, falling back to the body, and forwards a summary of every
// record batch to the exposed function name. It returns the selector used,
// or null when the document has no body.
const observeJS = `(name, selectors) => {
	let root = null;
	let used = 'body';
	for (const sel of selectors) {
		try {
			root = document.querySelector(sel);
		} catch (e) {
			root = null;
		}
		if (root) {
			used = sel;
			break;
		}
	}
	root = root || document.body;
	if (!root) {
		return null;
	}
	const observer = new MutationObserver((records) => {
		window[name](records.map((r) => ({
			type: r.type,
			added: r.addedNodes.length,
			removed: r.removedNodes.length,
		})));
	});
	observer.observe(root, { childList: true, subtree: true, characterData: false });
	window[name + '_disconnect'] = () => observer.disconnect();
	return used;
}`

const disconnectJS = `(name) => {
	const disconnect = window[name + '_disconnect'];
	if (disconnect) {
		disconnect();
		delete window[name + '_disconnect'];
	}
}`

var bindingSeq atomic.Int64

// Observe watches the subtree of the first element matching selectors.
// Batches are delivered one at a time, in the order the page produced them.
func (p *Page) Observe(ctx context.Context, selectors []string, fn sidetoc.MutationHandler) (sidetoc.Subscription, error) {
	page := p.page.Context(ctx)
	name := fmt.Sprintf("__sidetocMutations%d", bindingSeq.Add(1))

	stop, err := p.page.Expose(name, func(v gson.JSON) (any, error) {
		fn(DecodeMutations(v))
		return nil, nil
	})
	if err != nil {
		return nil, sidetoc.Errorf(sidetoc.EUNAVAILABLE, "exposing mutation binding: %v", err)
	}

	if selectors == nil {
		selectors = []string{}
	}
	res, err := page.Eval(observeJS, name, selectors)
	if err != nil {
		_ = stop()
		return nil, sidetoc.Errorf(sidetoc.EUNAVAILABLE, "installing mutation observer: %v", err)
	}
	if res.Value.Nil() {
		_ = stop()
		return nil, sidetoc.Errorf(sidetoc.EUNAVAILABLE, "page has no body to observe")
	}

	return &subscription{page: p.page, name: name, root: res.Value.Str(), stop: stop}, nil
}

// DecodeMutations converts mutation summaries posted by the in-page
// observer into mutation records. Malformed entries decode to zero values.
func DecodeMutations(v gson.JSON) []sidetoc.Mutation {
	arr := v.Arr()
	batch := make([]sidetoc.Mutation, 0, len(arr))
	for _, r := range arr {
		batch = append(batch, sidetoc.Mutation{
			Type:    sidetoc.MutationType(r.Get("type").Str()),
			Added:   r.Get("added").Int(),
			Removed: r.Get("removed").Int(),
		})
	}
	return batch
}

type subscription struct {
	page *rod.Page
	name string
	root string
	stop func() error

	once sync.Once
	err  error
}

func (s *subscription) Root() string {
	return s.root
}

// Close disconnects the observer before removing the binding so no record
// is posted to a missing function.
func (s *subscription) Close() error {
	s.once.Do(func() {
		_, err := s.page.Eval(disconnectJS, s.name)
		if stopErr := s.stop(); err == nil {
			err = stopErr
		}
		s.err = err
	})
	return s.err
}

// revealJS scrolls the element to the center of the viewport and highlights
// it for ms milliseconds. It is a function expression so that this is bound
// to the element.
const revealJS = `function (cls, ms) {
	this.scrollIntoView({ behavior: 'smooth', block: 'center' });
	this.classList.add(cls);
	setTimeout(() => this.classList.remove(cls), ms);
}`

// Reveal scrolls the referenced element into view and highlights it.
// A ref to an element that is no longer in the page is a no-op.
func (p *Page) Reveal(ctx context.Context, ref sidetoc.ElementRef) error {
	if ref.IsZero() {
		return nil
	}

	page := p.page.Context(ctx)
	found, el, err := page.Has(ref.Path)
	if err != nil {
		return fmt.Errorf("finding element %q: %w", ref.Path, err)
	}
	if !found {
		return nil
	}

	if _, err := el.Eval(revealJS, sidetoc.RevealClass, p.highlight.Milliseconds()); err != nil {
		return fmt.Errorf("revealing element: %w", err)
	}
	return nil
}
