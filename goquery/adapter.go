package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sidetoc"
)

// Verdict is the outcome of classifying one conversation element.
type Verdict int

// Classification verdicts. VerdictNone means "no opinion, ask the next rule".
const (
	VerdictNone Verdict = iota
	VerdictUser
	VerdictAssistant
	VerdictNoise
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictUser:
		return "user"
	case VerdictAssistant:
		return "assistant"
	case VerdictNoise:
		return "noise"
	}
	return "none"
}

// Kind maps a message verdict to a topic kind.
// ok is false for verdicts that do not produce a topic.
func (v Verdict) Kind() (kind sidetoc.Kind, ok bool) {
	switch v {
	case VerdictUser:
		return sidetoc.KindUser, true
	case VerdictAssistant:
		return sidetoc.KindAssistant, true
	}
	return "", false
}

// Tier names the stage of the classification cascade a rule belongs to.
type Tier string

// Classification tiers in evaluation order.
const (
	TierFiller     Tier = "filler"
	TierStructural Tier = "structural"
	TierClass      Tier = "class"
	TierContent    Tier = "content"
)

// Candidate is one element under classification.
type Candidate struct {
	// Element is the conversation element itself.
	Element *goquery.Selection

	// Container is the closest enclosing message container, or Element when
	// the adapter declares no container selector or none encloses it.
	Container *goquery.Selection

	// Text is the element's trimmed text content.
	Text string
}

// Rule is one classification strategy. Rules are evaluated in order and the
// first one returning a verdict other than VerdictNone decides.
type Rule struct {
	Tier     Tier
	Classify func(c Candidate) Verdict
}

// Adapter is a per-site bundle of selector strategies and classification
// rules. Adapters are stateless configuration and safe for concurrent use.
type Adapter struct {
	// Name identifies the adapter in logs and listings.
	Name string

	// Hosts are the hosts the adapter serves. A host also matches its
	// subdomains.
	Hosts []string

	// RootSelectors picks the element watched for mutations; first
	// existing element wins, document body is the implicit last resort.
	RootSelectors []string

	// TurnSelectors finds conversation elements; the first selector with at
	// least one match wins and later selectors are not consulted.
	TurnSelectors []string

	// ContentSelectors, when set, expand each matched turn into the content
	// elements inside it that pass the content filter. A turn without any
	// element matching these selectors stands for itself.
	ContentSelectors []string

	// ContentMinLength is the minimum text length (in characters, inclusive)
	// of an expanded content element.
	ContentMinLength int

	// ContentExclude disqualifies expanded content elements whose text
	// contains any of these substrings (case-sensitive).
	ContentExclude []string

	// ContainerSelector locates the message container of an element for
	// container-aware rules.
	ContainerSelector string

	// HeadingContainers selects regions searched for heading elements.
	HeadingContainers string

	// Rules is the classification cascade.
	Rules []Rule

	// Prefixes are author prefixes stripped from message text
	// (case-insensitive, longest match).
	Prefixes []string
}

// Matches reports whether the adapter serves host.
func (a *Adapter) Matches(host string) bool {
	host = normalizeHost(host)
	for _, h := range a.Hosts {
		h = normalizeHost(h)
		if h == "" {
			continue
		}
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Info returns the adapter's listing entry.
func (a *Adapter) Info() sidetoc.AdapterInfo {
	return sidetoc.AdapterInfo{Name: a.Name, Hosts: append([]string(nil), a.Hosts...)}
}

// Turns returns the conversation elements of doc. The turn selector chain is
// tried in order and the first selector with at least one match wins; the
// matched turns are then expanded into content elements when the adapter
// declares content selectors. The result is in document order.
func (a *Adapter) Turns(doc *goquery.Document) *goquery.Selection {
	turns := doc.Selection.Slice(0, 0)
	for _, sel := range a.TurnSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			turns = found
			break
		}
	}
	if len(a.ContentSelectors) == 0 || turns.Length() == 0 {
		return turns
	}

	content := strings.Join(a.ContentSelectors, ", ")
	out := doc.Selection.Slice(0, 0)
	turns.Each(func(_ int, turn *goquery.Selection) {
		inner := turn.Find(content)
		if inner.Length() == 0 {
			if a.acceptContent(turn) {
				out = out.AddSelection(turn)
			}
			return
		}
		out = out.AddSelection(inner.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return a.acceptContent(s)
		}))
	})
	return out
}

// acceptContent applies the content filter to an expanded element.
func (a *Adapter) acceptContent(s *goquery.Selection) bool {
	text := strings.TrimSpace(s.Text())
	if utf8.RuneCountInString(text) < a.ContentMinLength {
		return false
	}
	for _, ex := range a.ContentExclude {
		if strings.Contains(text, ex) {
			return false
		}
	}
	return true
}

// Candidate builds the classification input for an element.
func (a *Adapter) Candidate(el *goquery.Selection) Candidate {
	c := Candidate{
		Element:   el,
		Container: el,
		Text:      strings.TrimSpace(el.Text()),
	}
	if a.ContainerSelector != "" && !el.Is(a.ContainerSelector) {
		if closest := el.Closest(a.ContainerSelector); closest.Length() > 0 {
			c.Container = closest
		}
	}
	return c
}

// Classify runs the rule cascade and returns the first verdict along with
// the tier that produced it. Elements no rule recognizes get VerdictNone.
func (a *Adapter) Classify(c Candidate) (Verdict, Tier) {
	for _, r := range a.Rules {
		if v := r.Classify(c); v != VerdictNone {
			return v, r.Tier
		}
	}
	return VerdictNone, ""
}

// StripPrefix removes the longest declared author prefix from the start of
// text, ignoring case, and trims the remainder.
func (a *Adapter) StripPrefix(text string) string {
	best := 0
	for _, p := range a.Prefixes {
		if len(p) > best && len(text) >= len(p) && strings.EqualFold(text[:len(p)], p) {
			best = len(p)
		}
	}
	if best == 0 {
		return text
	}
	return strings.TrimSpace(text[best:])
}

// normalizeHost lowercases a host and drops any port.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}

// FillerRule classifies elements whose whole text is a UI action label or
// similar filler as noise, whatever their markup says.
func FillerRule(labels ...string) Rule {
	return Rule{Tier: TierFiller, Classify: func(c Candidate) Verdict {
		for _, l := range labels {
			if strings.EqualFold(c.Text, l) {
				return VerdictNoise
			}
		}
		return VerdictNone
	}}
}

// SelectorRule returns v when the element, one of its ancestors, or one of
// its descendants matches selector.
func SelectorRule(selector string, v Verdict) Rule {
	return Rule{Tier: TierStructural, Classify: func(c Candidate) Verdict {
		if c.Element.Closest(selector).Length() > 0 || c.Element.Find(selector).Length() > 0 {
			return v
		}
		return VerdictNone
	}}
}

// ContainerAttrRule returns v when the message container's attr equals value.
func ContainerAttrRule(attr, value string, v Verdict) Rule {
	return Rule{Tier: TierStructural, Classify: func(c Candidate) Verdict {
		if got, ok := c.Container.Attr(attr); ok && got == value {
			return v
		}
		return VerdictNone
	}}
}

// ClassTokenRule returns v when the element's class list contains token.
func ClassTokenRule(token string, v Verdict) Rule {
	return Rule{Tier: TierStructural, Classify: func(c Candidate) Verdict {
		if c.Element.HasClass(token) {
			return v
		}
		return VerdictNone
	}}
}

// ClassFragmentRule returns v when the class attribute of the message
// container or of the element itself contains any fragment (case-insensitive).
func ClassFragmentRule(v Verdict, fragments ...string) Rule {
	return Rule{Tier: TierClass, Classify: func(c Candidate) Verdict {
		classes := strings.ToLower(c.Container.AttrOr("class", "") + " " + c.Element.AttrOr("class", ""))
		for _, f := range fragments {
			if strings.Contains(classes, strings.ToLower(f)) {
				return v
			}
		}
		return VerdictNone
	}}
}

// TextContainsRule returns v when the element text contains any of subs.
// Unless caseSensitive is set, matching ignores case.
func TextContainsRule(v Verdict, caseSensitive bool, subs ...string) Rule {
	return Rule{Tier: TierContent, Classify: func(c Candidate) Verdict {
		text := c.Text
		if !caseSensitive {
			text = strings.ToLower(text)
		}
		for _, s := range subs {
			if !caseSensitive {
				s = strings.ToLower(s)
			}
			if strings.Contains(text, s) {
				return v
			}
		}
		return VerdictNone
	}}
}

// ContentHeuristics is a lexical last-resort classifier. All patterns are
// matched case-insensitively against the element text. It is biased toward
// precision: text it cannot place confidently is left unclassified.
type ContentHeuristics struct {
	// MinLength is the length text must exceed to be considered at all.
	MinLength int

	// NoiseMaxLength bounds the length of text treated as filler; short text
	// containing a Noise pattern is noise.
	NoiseMaxLength int
	Noise          []string

	// Assistant patterns mark self-reference and helpful-response openers.
	Assistant []string

	// SelfName marks text as assistant when it appears in text longer than
	// SelfNameMinLength.
	SelfName          string
	SelfNameMinLength int

	// User patterns mark leading "you said" style text. Text shorter than
	// UserMaxLength that contains none of NotUser also counts as user.
	User          []string
	UserMaxLength int
	NotUser       []string
}

// Rule returns the heuristics as a content-tier rule.
func (h ContentHeuristics) Rule() Rule {
	return Rule{Tier: TierContent, Classify: h.classify}
}

func (h ContentHeuristics) classify(c Candidate) Verdict {
	n := utf8.RuneCountInString(c.Text)
	if c.Text == "" || n <= h.MinLength {
		return VerdictNone
	}
	lower := strings.ToLower(c.Text)

	if n < h.NoiseMaxLength && containsAny(lower, h.Noise) {
		return VerdictNoise
	}
	if containsAny(lower, h.Assistant) {
		return VerdictAssistant
	}
	if h.SelfName != "" && n > h.SelfNameMinLength && strings.Contains(lower, strings.ToLower(h.SelfName)) {
		return VerdictAssistant
	}
	if containsAny(lower, h.User) {
		return VerdictUser
	}
	if h.UserMaxLength > 0 && n < h.UserMaxLength && !containsAny(lower, h.NotUser) {
		return VerdictUser
	}
	return VerdictNone
}

func containsAny(lower string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
