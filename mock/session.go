package mock

import (
	"context"

	"github.com/fwojciec/sidetoc"
)

var _ sidetoc.Session = (*Session)(nil)

// Session is a mock implementation of sidetoc.Session.
type Session struct {
	ResultFn func() *sidetoc.ScanResult
	SearchFn func(term string)
	RescanFn func(ctx context.Context) error
	RevealFn func(ctx context.Context, topic sidetoc.Topic) error
}

func (s *Session) Result() *sidetoc.ScanResult {
	return s.ResultFn()
}

func (s *Session) Search(term string) {
	s.SearchFn(term)
}

func (s *Session) Rescan(ctx context.Context) error {
	return s.RescanFn(ctx)
}

func (s *Session) Reveal(ctx context.Context, topic sidetoc.Topic) error {
	return s.RevealFn(ctx, topic)
}
