package http

import (
	"encoding/json"
	"html"
	"net/http"
	"strconv"

	"github.com/fwojciec/sidetoc"
	"github.com/go-chi/chi/v5"
)

// topicJSON is one entry of the topic list. Index addresses the topic in
// the unfiltered scan result; writes send Key back to prove the index still
// holds the same topic. Display and HighlightedText are escaped HTML; Text
// and CustomLabel are plain.
type topicJSON struct {
	Index           int    `json:"index"`
	Key             string `json:"key"`
	Kind            string `json:"kind"`
	Level           int    `json:"level"`
	Label           string `json:"label"`
	Text            string `json:"text"`
	Display         string `json:"display"`
	HighlightedText string `json:"highlightedText,omitempty"`
	HasChildren     bool   `json:"hasChildren"`
	CustomLabel     string `json:"customLabel,omitempty"`
	Checked         bool   `json:"checked"`
}

type topicListJSON struct {
	Host           string      `json:"host"`
	Adapter        string      `json:"adapter"`
	View           string      `json:"view"`
	IsSearchResult bool        `json:"isSearchResult"`
	Topics         []topicJSON `json:"topics"`
}

// handleListTopics returns the latest scan in the requested view, filtered
// by the q search term. Neither parameter changes the session.
func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	view, err := sidetoc.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := topicListJSON{View: string(view), Topics: []topicJSON{}}
	result := s.session.Result()
	if result == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}
	out.Host, out.Adapter = result.Host, result.Adapter

	// Remember each shown topic's index in the full result.
	var shown []sidetoc.Topic
	var index []int
	for i, t := range result.Topics {
		if view.Shows(t) {
			shown = append(shown, t)
			index = append(index, i)
		}
	}

	filtered, isSearch := sidetoc.FilterTopics(shown, r.URL.Query().Get("q"))
	out.IsSearchResult = isSearch
	if isSearch {
		index = subsequenceIndex(shown, filtered, index)
	}

	keys := make([]string, len(filtered))
	for i, t := range filtered {
		keys[i] = t.StableKey()
	}
	annotations := map[string]*sidetoc.Annotation{}
	if s.annotations != nil {
		if annotations, err = s.annotations.FindAnnotations(r.Context(), keys); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	children := sidetoc.HasChildren(filtered)
	for i, t := range filtered {
		entry := topicJSON{
			Index:           index[i],
			Key:             keys[i],
			Kind:            string(t.Kind),
			Level:           t.Level,
			Label:           t.Label(view),
			Text:            t.Text,
			HighlightedText: t.HighlightedText,
			HasChildren:     children[i],
		}
		if a, ok := annotations[keys[i]]; ok {
			entry.CustomLabel = a.Label
			entry.Checked = a.Checked
		}
		entry.Display = t.DisplayText(entry.CustomLabel)
		if t.HighlightedText == "" {
			entry.Display = html.EscapeString(entry.Display)
		}
		out.Topics = append(out.Topics, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

// subsequenceIndex maps every topic of filtered, an order-preserving
// subsequence of shown, to the index its counterpart carries. Topic text is
// unique within a scan.
func subsequenceIndex(shown, filtered []sidetoc.Topic, index []int) []int {
	out := make([]int, 0, len(filtered))
	j := 0
	for _, t := range filtered {
		for j < len(shown) && shown[j].Text != t.Text {
			j++
		}
		if j == len(shown) {
			break
		}
		out = append(out, index[j])
		j++
	}
	return out
}

type searchRequest struct {
	Term string `json:"term"`
}

// handleSearch moves the session's search term. The new list goes to the
// session's publish callback.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	s.session.Search(req.Term)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Rescan(r.Context()); err != nil {
		s.writeError(w, r, sidetoc.Errorf(sidetoc.EUNAVAILABLE, "rescan failed: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	topic, err := s.topicAt(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.session.Reveal(r.Context(), topic); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type labelRequest struct {
	Label string `json:"label"`
}

// handleSetLabel stores a custom label for the topic; a blank label clears it.
func (s *Server) handleSetLabel(w http.ResponseWriter, r *http.Request) {
	if s.annotations == nil {
		jsonError(w, "annotations are not configured", http.StatusServiceUnavailable)
		return
	}
	topic, err := s.topicAt(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req labelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := s.annotations.SetLabel(r.Context(), topic.StableKey(), req.Label); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleChecked(w http.ResponseWriter, r *http.Request) {
	if s.annotations == nil {
		jsonError(w, "annotations are not configured", http.StatusServiceUnavailable)
		return
	}
	topic, err := s.topicAt(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	checked, err := s.annotations.ToggleChecked(r.Context(), topic.StableKey())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"checked": checked})
}

// topicAt resolves the {index} URL parameter against the latest scan. The
// key query parameter carries the stable key the client listed at that
// index; a rescan that moved another topic there is a conflict.
func (s *Server) topicAt(r *http.Request) (sidetoc.Topic, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return sidetoc.Topic{}, sidetoc.Errorf(sidetoc.EINVALID, "topic index must be a number")
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		return sidetoc.Topic{}, sidetoc.Errorf(sidetoc.EINVALID, "key query parameter required")
	}
	result := s.session.Result()
	if result == nil || i < 0 || i >= len(result.Topics) {
		return sidetoc.Topic{}, sidetoc.Errorf(sidetoc.ENOTFOUND, "topic %d not found", i)
	}
	topic := result.Topics[i]
	if topic.StableKey() != key {
		return sidetoc.Topic{}, sidetoc.Errorf(sidetoc.ECONFLICT, "topic %d changed since it was listed", i)
	}
	return topic, nil
}
