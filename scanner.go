package sidetoc

// ScanResult holds the topics extracted from one rendered page.
type ScanResult struct {
	// Host is the page host the adapter was resolved for.
	Host string `json:"host"`

	// Adapter is the name of the site adapter used for the scan.
	Adapter string `json:"adapter"`

	// Topics holds headings first, then messages, deduplicated and capped.
	Topics []Topic `json:"topics"`

	// HeadingFallback is true when headings came from markdown-style text
	// lines rather than heading elements.
	HeadingFallback bool `json:"headingFallback,omitempty"`
}

// Scanner extracts topics from rendered page HTML.
type Scanner interface {
	// Scan runs one full extraction over html using the adapter that
	// matches host. Unknown hosts use the generic adapter. Pages without any
	// recognizable structure produce an empty result, not an error.
	Scan(html string, host string) (*ScanResult, error)

	// RootSelectors returns the ordered selector chain used to pick the
	// element whose subtree is watched for mutations on host.
	RootSelectors(host string) []string
}

// HeadingParser recognizes a markdown-style heading in a single line of
// rendered text, e.g. "## Setup".
type HeadingParser interface {
	// ParseHeading returns the heading level (1-6) and text.
	// ok is false when the line is not a heading.
	ParseHeading(line string) (level int, text string, ok bool)
}

// AdapterInfo describes a registered site adapter.
type AdapterInfo struct {
	Name  string   `json:"name"`
	Hosts []string `json:"hosts"`
}

// SelectorReport is the number of elements each selector in an adapter's
// chains matches on a page. It is a debugging aid for markup drift.
type SelectorReport struct {
	Adapter string          `json:"adapter"`
	Counts  []SelectorCount `json:"counts"`
}

// SelectorCount pairs a selector with its match count.
type SelectorCount struct {
	Chain    string `json:"chain"`
	Selector string `json:"selector"`
	Count    int    `json:"count"`
}
