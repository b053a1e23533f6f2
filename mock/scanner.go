package mock

import "github.com/fwojciec/sidetoc"

// Compile-time interface verification.
var (
	_ sidetoc.Scanner       = (*Scanner)(nil)
	_ sidetoc.HeadingParser = (*HeadingParser)(nil)
)

// Scanner is a mock implementation of sidetoc.Scanner.
type Scanner struct {
	ScanFn          func(html string, host string) (*sidetoc.ScanResult, error)
	RootSelectorsFn func(host string) []string
}

func (s *Scanner) Scan(html string, host string) (*sidetoc.ScanResult, error) {
	return s.ScanFn(html, host)
}

func (s *Scanner) RootSelectors(host string) []string {
	return s.RootSelectorsFn(host)
}

// HeadingParser is a mock implementation of sidetoc.HeadingParser.
type HeadingParser struct {
	ParseHeadingFn func(line string) (int, string, bool)
}

func (p *HeadingParser) ParseHeading(line string) (int, string, bool) {
	return p.ParseHeadingFn(line)
}
