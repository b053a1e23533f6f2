package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sidetoc"
)

// Ensure Scanner implements sidetoc.Scanner at compile time.
var _ sidetoc.Scanner = (*Scanner)(nil)

// Scanner runs the full extraction pipeline over rendered HTML: adapter
// resolution, heading extraction, message classification and aggregation.
// Scanner holds no per-scan state and is safe for concurrent use.
type Scanner struct {
	registry   *Registry
	headings   *HeadingExtractor
	classifier *Classifier
	maxTopics  int
}

// NewScanner creates a new Scanner. lines recognizes markdown-style heading
// lines for the fallback strategy and may be nil to disable it.
func NewScanner(registry *Registry, lines sidetoc.HeadingParser, cfg sidetoc.Config) *Scanner {
	return &Scanner{
		registry: registry,
		headings: &HeadingExtractor{
			MinLength: cfg.HeadingMinLength,
			MaxLength: cfg.HeadingMaxLength,
			Lines:     lines,
		},
		classifier: &Classifier{PreviewLength: cfg.PreviewLength},
		maxTopics:  cfg.MaxTopics,
	}
}

// Scan extracts topics from html using the adapter resolved for host.
func (s *Scanner) Scan(html string, host string) (*sidetoc.ScanResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sidetoc.Errorf(sidetoc.EINVALID, "failed to parse HTML: %v", err)
	}

	adapter := s.registry.Resolve(host)
	headings, fallback := s.headings.Extract(doc, adapter)
	messages := s.classifier.Classify(doc, adapter)

	return &sidetoc.ScanResult{
		Host:            host,
		Adapter:         adapter.Name,
		Topics:          sidetoc.Aggregate(headings, messages, s.maxTopics),
		HeadingFallback: fallback,
	}, nil
}

// RootSelectors returns the mutation-root selector chain for host.
func (s *Scanner) RootSelectors(host string) []string {
	return append([]string(nil), s.registry.Resolve(host).RootSelectors...)
}

// Report counts the matches of every selector in the chains of the adapter
// resolved for host. It helps diagnose markup changes on a site.
func (s *Scanner) Report(html string, host string) (*sidetoc.SelectorReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sidetoc.Errorf(sidetoc.EINVALID, "failed to parse HTML: %v", err)
	}

	a := s.registry.Resolve(host)
	report := &sidetoc.SelectorReport{Adapter: a.Name}
	count := func(chain string, selectors ...string) {
		for _, sel := range selectors {
			if sel == "" {
				continue
			}
			report.Counts = append(report.Counts, sidetoc.SelectorCount{
				Chain:    chain,
				Selector: sel,
				Count:    doc.Find(sel).Length(),
			})
		}
	}
	count("root", a.RootSelectors...)
	count("turn", a.TurnSelectors...)
	count("content", a.ContentSelectors...)
	count("container", a.ContainerSelector)
	count("heading", a.HeadingContainers)

	return report, nil
}

// hostHints are the places a saved page records the URL it was served from.
var hostHints = []struct{ selector, attr string }{
	{`link[rel="canonical"]`, "href"},
	{`meta[property="og:url"]`, "content"},
	{`base[href]`, "href"},
}

// HostHint guesses the host a saved page was served from, using its
// canonical link, og:url meta or base href. Returns "" when none is present.
func HostHint(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, h := range hostHints {
		v, ok := doc.Find(h.selector).First().Attr(h.attr)
		if !ok {
			continue
		}
		if u, err := url.Parse(strings.TrimSpace(v)); err == nil && u.Host != "" {
			return strings.ToLower(u.Hostname())
		}
	}
	return ""
}
