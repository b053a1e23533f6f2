package mock

import (
	"context"

	"github.com/fwojciec/sidetoc"
)

// Compile-time interface verification.
var (
	_ sidetoc.Page             = (*Page)(nil)
	_ sidetoc.MutationObserver = (*MutationObserver)(nil)
	_ sidetoc.Subscription     = (*Subscription)(nil)
	_ sidetoc.Revealer         = (*Revealer)(nil)
)

// Page is a mock implementation of sidetoc.Page.
type Page struct {
	HostFn func() string
	HTMLFn func(ctx context.Context) (string, error)
}

func (p *Page) Host() string {
	return p.HostFn()
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.HTMLFn(ctx)
}

// MutationObserver is a mock implementation of sidetoc.MutationObserver.
type MutationObserver struct {
	ObserveFn func(ctx context.Context, selectors []string, fn sidetoc.MutationHandler) (sidetoc.Subscription, error)
}

func (o *MutationObserver) Observe(ctx context.Context, selectors []string, fn sidetoc.MutationHandler) (sidetoc.Subscription, error) {
	return o.ObserveFn(ctx, selectors, fn)
}

// Subscription is a mock implementation of sidetoc.Subscription.
type Subscription struct {
	RootFn  func() string
	CloseFn func() error
}

func (s *Subscription) Root() string {
	return s.RootFn()
}

func (s *Subscription) Close() error {
	return s.CloseFn()
}

// Revealer is a mock implementation of sidetoc.Revealer.
type Revealer struct {
	RevealFn func(ctx context.Context, ref sidetoc.ElementRef) error
}

func (r *Revealer) Reveal(ctx context.Context, ref sidetoc.ElementRef) error {
	return r.RevealFn(ctx, ref)
}
