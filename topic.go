package sidetoc

import (
	"fmt"
	"strconv"
)

// Kind distinguishes where a topic came from.
type Kind string

// Topic kinds.
const (
	KindHeading   Kind = "heading"
	KindUser      Kind = "user"
	KindAssistant Kind = "assistant"
)

// IsMessage reports whether the kind is a chat message turn.
func (k Kind) IsMessage() bool {
	return k == KindUser || k == KindAssistant
}

// ElementRef is a non-owning reference to the page element a topic was
// derived from. Its only uses are scroll-to-reveal and highlight; a ref to
// an element that no longer exists must be treated as a no-op.
type ElementRef struct {
	// Path is a CSS selector addressing the element from the document root,
	// e.g. "html > body:nth-child(2) > div:nth-child(1)".
	Path string `json:"path"`

	// Index is the element's position among its parent's element children.
	Index int `json:"index"`
}

// IsZero reports whether the ref points nowhere.
func (r ElementRef) IsZero() bool {
	return r.Path == ""
}

// Topic is one entry in the navigable topic list: a heading or a chat turn.
type Topic struct {
	Text    string     `json:"text"`
	Level   int        `json:"level"`
	Kind    Kind       `json:"kind"`
	Element ElementRef `json:"element"`

	// HighlightedText is set only while a search filter is active.
	HighlightedText string `json:"highlightedText,omitempty"`
}

// StableKey returns the annotation correlation key for the topic.
// The key survives rescans as long as the topic's kind, text and position
// among its siblings are unchanged. It is not part of topic identity.
func (t Topic) StableKey() string {
	return string(t.Kind) + ":" + t.Text + ":" + strconv.Itoa(t.Element.Index)
}

// Label returns the short marker shown next to the topic in a view:
// "You:" or "AI:" for messages in the chat view, "H<level>" otherwise.
func (t Topic) Label(view View) string {
	if view == ViewChat {
		switch t.Kind {
		case KindUser:
			return "You:"
		case KindAssistant:
			return "AI:"
		}
	}
	return fmt.Sprintf("H%d", t.Level)
}

// DisplayText returns the text to render: highlighted text during search,
// then a custom label if one is set, then the extracted text.
func (t Topic) DisplayText(customLabel string) string {
	if t.HighlightedText != "" {
		return t.HighlightedText
	}
	if customLabel != "" {
		return customLabel
	}
	return t.Text
}

// View selects which topic kinds a list displays.
type View string

// Topic list views.
const (
	ViewAll      View = "all"
	ViewSections View = "sections"
	ViewChat     View = "chat"
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewAll, ViewSections, ViewChat:
		return View(s), nil
	case "":
		return ViewAll, nil
	}
	return "", Errorf(EINVALID, "unknown view %q (want all, sections or chat)", s)
}

// Shows reports whether t is displayed in the view: messages in the chat
// view, headings in the sections view, everything otherwise.
func (v View) Shows(t Topic) bool {
	if v == ViewAll || v == "" {
		return true
	}
	return (v == ViewChat) == t.Kind.IsMessage()
}

// FilterView returns the subsequence of topics shown in view, preserving order.
func FilterView(topics []Topic, view View) []Topic {
	if view == ViewAll || view == "" {
		return topics
	}
	out := make([]Topic, 0, len(topics))
	for _, t := range topics {
		if view.Shows(t) {
			out = append(out, t)
		}
	}
	return out
}

// Aggregate merges heading and message topics into one scan result.
// Headings come first, then messages, each in discovery order. Later topics
// whose text equals an earlier topic's text are dropped regardless of kind,
// and the result is truncated to maxTopics (keeping the earliest entries).
// A maxTopics of zero or less disables the cap.
func Aggregate(headings, messages []Topic, maxTopics int) []Topic {
	out := make([]Topic, 0, len(headings)+len(messages))
	seen := make(map[string]struct{}, len(headings)+len(messages))

	add := func(list []Topic) {
		for _, t := range list {
			if maxTopics > 0 && len(out) >= maxTopics {
				return
			}
			if _, dup := seen[t.Text]; dup {
				continue
			}
			seen[t.Text] = struct{}{}
			out = append(out, t)
		}
	}
	add(headings)
	add(messages)

	return out
}

// HasChildren computes parent flags for an ordered, leveled list.
// Topic i has children iff the run of topics following it contains one with
// a greater level before any topic at a level less than or equal to its own.
// Because the scan stops at the first non-deeper topic, this reduces to
// checking the immediate successor.
func HasChildren(topics []Topic) []bool {
	flags := make([]bool, len(topics))
	for i := 0; i+1 < len(topics); i++ {
		flags[i] = topics[i+1].Level > topics[i].Level
	}
	return flags
}

// Children returns the indexes of the direct children of topic i: later
// topics at exactly one level deeper, up to the first topic at a level less
// than or equal to topic i's level.
func Children(topics []Topic, i int) []int {
	if i < 0 || i >= len(topics) {
		return nil
	}
	var idx []int
	level := topics[i].Level
	for j := i + 1; j < len(topics); j++ {
		if topics[j].Level <= level {
			break
		}
		if topics[j].Level == level+1 {
			idx = append(idx, j)
		}
	}
	return idx
}
