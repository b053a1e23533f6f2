package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/sidetoc"
	"github.com/fwojciec/sidetoc/batch"
)

// scanJSON is the JSON form of one scanned source.
type scanJSON struct {
	Source          string         `json:"source"`
	Host            string         `json:"host,omitempty"`
	Adapter         string         `json:"adapter,omitempty"`
	HeadingFallback bool           `json:"headingFallback,omitempty"`
	IsSearchResult  bool           `json:"isSearchResult"`
	Topics          []topicOutJSON `json:"topics"`
	Error           string         `json:"error,omitempty"`
}

type topicOutJSON struct {
	Key             string `json:"key"`
	Kind            string `json:"kind"`
	Level           int    `json:"level"`
	Label           string `json:"label"`
	Text            string `json:"text"`
	HighlightedText string `json:"highlightedText,omitempty"`
	HasChildren     bool   `json:"hasChildren"`
	CustomLabel     string `json:"customLabel,omitempty"`
	Checked         bool   `json:"checked,omitempty"`
}

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	view, err := sidetoc.ParseView(c.View)
	if err != nil {
		return err
	}

	var progress batch.ProgressFunc
	if len(c.Sources) > 1 && !c.JSON {
		progress = func(e batch.ProgressEvent) {
			if e.Type == batch.ProgressFailed {
				fmt.Fprintf(deps.Stderr, "[%d/%d] failed: %s\n", e.Completed, e.Total, e.Source)
			}
		}
	}
	results := deps.Runner.Run(deps.Ctx, c.Sources, progress)

	failed := 0
	out := make([]scanJSON, 0, len(results))
	for _, res := range results {
		entry := scanJSON{Source: res.Source, Topics: []topicOutJSON{}}
		if res.Err != nil {
			failed++
			entry.Error = sidetoc.ErrorMessage(res.Err)
			if sidetoc.ErrorCode(res.Err) == sidetoc.EINTERNAL {
				entry.Error = res.Err.Error()
			}
			if !c.JSON {
				fmt.Fprintf(deps.Stderr, "error: %s\n", entry.Error)
			}
			out = append(out, entry)
			continue
		}

		topics, isSearch := sidetoc.FilterTopics(sidetoc.FilterView(res.Scan.Topics, view), c.Search)
		annotations, err := findAnnotations(deps, topics)
		if err != nil {
			return err
		}

		entry.Host, entry.Adapter = res.Scan.Host, res.Scan.Adapter
		entry.HeadingFallback = res.Scan.HeadingFallback
		entry.IsSearchResult = isSearch
		children := sidetoc.HasChildren(topics)
		for i, t := range topics {
			topic := topicOutJSON{
				Key:             t.StableKey(),
				Kind:            string(t.Kind),
				Level:           t.Level,
				Label:           t.Label(view),
				Text:            t.Text,
				HighlightedText: t.HighlightedText,
				HasChildren:     children[i],
			}
			if a, ok := annotations[topic.Key]; ok {
				topic.CustomLabel, topic.Checked = a.Label, a.Checked
			}
			entry.Topics = append(entry.Topics, topic)
		}
		out = append(out, entry)

		if !c.JSON {
			printOutline(deps.Stdout, res, topics, view, annotations, c.Keys)
		}
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(results))
	}
	return nil
}

// printOutline writes the text form of one scanned source.
func printOutline(w io.Writer, res batch.Result, topics []sidetoc.Topic, view sidetoc.View, annotations map[string]*sidetoc.Annotation, keys bool) {
	fmt.Fprintf(w, "== %s (%s, %d topics)\n", res.Source, res.Scan.Adapter, len(topics))
	if len(topics) == 0 {
		fmt.Fprintln(w, "No topics found.")
		return
	}
	outline := sidetoc.FormatOutline(topics, view, customLabels(annotations))
	if !keys {
		fmt.Fprint(w, outline)
		return
	}
	for i, line := range strings.SplitAfter(strings.TrimSuffix(outline, "\n"), "\n") {
		fmt.Fprintf(w, "%s\t%s", topics[i].StableKey(), line)
	}
	fmt.Fprintln(w)
}

// findAnnotations loads the annotations of topics when a store is configured.
func findAnnotations(deps *Dependencies, topics []sidetoc.Topic) (map[string]*sidetoc.Annotation, error) {
	if deps.Annotations == nil || len(topics) == 0 {
		return nil, nil
	}
	keys := make([]string, len(topics))
	for i, t := range topics {
		keys[i] = t.StableKey()
	}
	annotations, err := deps.Annotations.FindAnnotations(deps.Ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("loading annotations: %w", err)
	}
	return annotations, nil
}

func customLabels(annotations map[string]*sidetoc.Annotation) map[string]string {
	labels := make(map[string]string, len(annotations))
	for key, a := range annotations {
		if a.Label != "" {
			labels[key] = a.Label
		}
	}
	return labels
}
