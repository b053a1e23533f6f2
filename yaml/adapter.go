// Package yaml loads user-defined site adapters and configuration overrides
// from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/sidetoc"
	"github.com/fwojciec/sidetoc/goquery"
	"gopkg.in/yaml.v3"
)

// File is the contents of an adapters file.
//
//	config:
//	  max_topics: 40
//	adapters:
//	  - name: gemini
//	    hosts: [gemini.google.com]
//	    turn_selectors: ["user-query, model-response"]
//	    rules:
//	      - selector: user-query
//	        verdict: user
type File struct {
	// Config overrides the base configuration field by field.
	Config sidetoc.Config `yaml:"config"`

	Adapters []AdapterSpec `yaml:"adapters"`
}

// AdapterSpec declares one site adapter.
type AdapterSpec struct {
	Name              string   `yaml:"name"`
	Hosts             []string `yaml:"hosts"`
	RootSelectors     []string `yaml:"root_selectors"`
	TurnSelectors     []string `yaml:"turn_selectors"`
	ContentSelectors  []string `yaml:"content_selectors"`
	ContentMinLength  int      `yaml:"content_min_length"`
	ContentExclude    []string `yaml:"content_exclude"`
	Container         string   `yaml:"container"`
	HeadingContainers string   `yaml:"heading_containers"`

	// Filler lists whole-text UI labels treated as noise. When omitted the
	// built-in labels are used; an explicit empty list disables the check.
	Filler *[]string `yaml:"filler"`

	Rules    []RuleSpec     `yaml:"rules"`
	Content  *HeuristicSpec `yaml:"content"`
	Prefixes []string       `yaml:"prefixes"`
}

// RuleSpec declares one structural, class or content rule. Exactly one
// matcher field must be set.
type RuleSpec struct {
	Verdict string `yaml:"verdict"`

	Selector       string    `yaml:"selector,omitempty"`
	ContainerAttr  *AttrSpec `yaml:"container_attr,omitempty"`
	ClassToken     string    `yaml:"class_token,omitempty"`
	ClassFragments []string  `yaml:"class_fragments,omitempty"`
	TextContains   []string  `yaml:"text_contains,omitempty"`
	CaseSensitive  bool      `yaml:"case_sensitive,omitempty"`
}

// AttrSpec is an attribute name and the value it must equal.
type AttrSpec struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// HeuristicSpec declares the lexical last-resort classifier.
type HeuristicSpec struct {
	MinLength         int      `yaml:"min_length"`
	NoiseMaxLength    int      `yaml:"noise_max_length"`
	Noise             []string `yaml:"noise"`
	Assistant         []string `yaml:"assistant"`
	SelfName          string   `yaml:"self_name"`
	SelfNameMinLength int      `yaml:"self_name_min_length"`
	User              []string `yaml:"user"`
	UserMaxLength     int      `yaml:"user_max_length"`
	NotUser           []string `yaml:"not_user"`
}

// Decode parses an adapters file. Config fields absent from the file keep
// their values from base. Unknown fields are rejected.
func Decode(r io.Reader, base sidetoc.Config) (*File, error) {
	f := File{Config: base}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, sidetoc.Errorf(sidetoc.EINVALID, "invalid adapters file: %v", err)
	}
	if err := f.Config.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses the adapters file at path.
func Load(path string, base sidetoc.Config) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read adapters %s: %w", path, err)
	}
	f, err := Decode(bytes.NewReader(data), base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Build converts every declared adapter, in file order.
func (f *File) Build() ([]*goquery.Adapter, error) {
	adapters := make([]*goquery.Adapter, 0, len(f.Adapters))
	for i, spec := range f.Adapters {
		a, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("adapter %d: %w", i, err)
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// Register builds the declared adapters and registers them. A declared
// adapter named like a built-in one replaces it.
func (f *File) Register(r *goquery.Registry) error {
	adapters, err := f.Build()
	if err != nil {
		return err
	}
	for _, a := range adapters {
		r.Register(a)
	}
	return nil
}

// Build converts the spec into an adapter. Rules run in the order filler,
// declared rules, then content heuristics.
func (s AdapterSpec) Build() (*goquery.Adapter, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, sidetoc.Errorf(sidetoc.EINVALID, "adapter name required")
	}
	if len(s.Hosts) == 0 {
		return nil, sidetoc.Errorf(sidetoc.EINVALID, "adapter %q: at least one host required", s.Name)
	}
	if len(s.TurnSelectors) == 0 {
		return nil, sidetoc.Errorf(sidetoc.EINVALID, "adapter %q: at least one turn selector required", s.Name)
	}

	selectors := append(append([]string(nil), s.TurnSelectors...), s.ContentSelectors...)
	selectors = append(selectors, s.Container, s.HeadingContainers)
	for _, sel := range selectors {
		if err := checkSelector(sel); err != nil {
			return nil, sidetoc.Errorf(sidetoc.EINVALID, "adapter %q: %v", s.Name, err)
		}
	}

	a := &goquery.Adapter{
		Name:              s.Name,
		Hosts:             s.Hosts,
		RootSelectors:     s.RootSelectors,
		TurnSelectors:     s.TurnSelectors,
		ContentSelectors:  s.ContentSelectors,
		ContentMinLength:  s.ContentMinLength,
		ContentExclude:    s.ContentExclude,
		ContainerSelector: s.Container,
		HeadingContainers: s.HeadingContainers,
		Prefixes:          s.Prefixes,
	}

	filler := goquery.DefaultFiller()
	if s.Filler != nil {
		filler = *s.Filler
	}
	if len(filler) > 0 {
		a.Rules = append(a.Rules, goquery.FillerRule(filler...))
	}

	for i, rs := range s.Rules {
		rule, err := rs.build()
		if err != nil {
			return nil, sidetoc.Errorf(sidetoc.EINVALID, "adapter %q: rule %d: %v", s.Name, i, err)
		}
		a.Rules = append(a.Rules, rule)
	}

	if h := s.Content; h != nil {
		a.Rules = append(a.Rules, goquery.ContentHeuristics{
			MinLength:         h.MinLength,
			NoiseMaxLength:    h.NoiseMaxLength,
			Noise:             h.Noise,
			Assistant:         h.Assistant,
			SelfName:          h.SelfName,
			SelfNameMinLength: h.SelfNameMinLength,
			User:              h.User,
			UserMaxLength:     h.UserMaxLength,
			NotUser:           h.NotUser,
		}.Rule())
	}
	return a, nil
}

func (rs RuleSpec) build() (goquery.Rule, error) {
	v, err := parseVerdict(rs.Verdict)
	if err != nil {
		return goquery.Rule{}, err
	}

	var rules []goquery.Rule
	if rs.Selector != "" {
		if err := checkSelector(rs.Selector); err != nil {
			return goquery.Rule{}, err
		}
		rules = append(rules, goquery.SelectorRule(rs.Selector, v))
	}
	if rs.ContainerAttr != nil {
		if rs.ContainerAttr.Name == "" {
			return goquery.Rule{}, errors.New("container_attr needs a name")
		}
		rules = append(rules, goquery.ContainerAttrRule(rs.ContainerAttr.Name, rs.ContainerAttr.Value, v))
	}
	if rs.ClassToken != "" {
		rules = append(rules, goquery.ClassTokenRule(rs.ClassToken, v))
	}
	if len(rs.ClassFragments) > 0 {
		rules = append(rules, goquery.ClassFragmentRule(v, rs.ClassFragments...))
	}
	if len(rs.TextContains) > 0 {
		rules = append(rules, goquery.TextContainsRule(v, rs.CaseSensitive, rs.TextContains...))
	}

	if len(rules) != 1 {
		return goquery.Rule{}, fmt.Errorf("exactly one matcher required, got %d", len(rules))
	}
	return rules[0], nil
}

func parseVerdict(s string) (goquery.Verdict, error) {
	for _, v := range []goquery.Verdict{goquery.VerdictUser, goquery.VerdictAssistant, goquery.VerdictNoise} {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	return goquery.VerdictNone, fmt.Errorf("unknown verdict %q (want user, assistant or noise)", s)
}

// checkSelector rejects selectors the HTML parser side cannot compile.
// Empty selectors are allowed for optional fields.
func checkSelector(sel string) error {
	if sel == "" {
		return nil
	}
	if _, err := cascadia.ParseGroup(sel); err != nil {
		return fmt.Errorf("invalid selector %q: %w", sel, err)
	}
	return nil
}
