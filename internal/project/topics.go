package project

import (
	"sort"
	"strings"
)

// TopicPatch is a partial update to a single topic. Nil pointer fields are
// left untouched on the existing topic; nil slices likewise.
type TopicPatch struct {
	ID              string      `json:"id"`
	Order           *int        `json:"order,omitempty"`
	Title           *string     `json:"title,omitempty"`
	Description     *string     `json:"description,omitempty"`
	KeyPoints       []string    `json:"keyPoints,omitempty"`
	Enabled         *bool       `json:"enabled,omitempty"`
	SourceSpan      *SourceSpan `json:"sourceSpan,omitempty"`
	Narration       *string     `json:"narration,omitempty"`
	Scenes          []Scene     `json:"scenes,omitempty"`
	ToneOverride    *Tone       `json:"toneOverride,omitempty"`
	DurationSeconds *int        `json:"durationSeconds,omitempty"`
}

func (p TopicPatch) apply(t Topic) Topic {
	if p.Order != nil {
		t.Order = *p.Order
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.KeyPoints != nil {
		t.KeyPoints = p.KeyPoints
	}
	if p.Enabled != nil {
		t.Enabled = *p.Enabled
	}
	if p.SourceSpan != nil {
		t.SourceSpan = p.SourceSpan
	}
	if p.Narration != nil {
		t.Narration = *p.Narration
	}
	if p.Scenes != nil {
		t.Scenes = p.Scenes
	}
	if p.ToneOverride != nil {
		t.ToneOverride = *p.ToneOverride
	}
	if p.DurationSeconds != nil {
		t.DurationSeconds = *p.DurationSeconds
	}
	return t
}

// materialize builds a brand-new topic from a patch that matched nothing.
func (p TopicPatch) materialize(nextOrder int) Topic {
	t := Topic{
		ID:           p.ID,
		Order:        nextOrder,
		Enabled:      true,
		ScriptStatus: TaskPending,
		VideoStatus:  TaskPending,
	}
	return p.apply(t)
}

// UpsertTopics merges patches into the topic list by ID. Existing topics
// are shallow-merged (patch wins on set fields, unset fields preserved);
// unmatched patches are inserted as new topics. The result is re-sorted by
// order with a stable sort, so ties keep their original relative position.
// Callers must Renumber afterward; this operation alone does not guarantee
// dense ordering.
func UpsertTopics(current []Topic, patches []TopicPatch) []Topic {
	out := make([]Topic, len(current))
	copy(out, current)

	maxOrder := 0
	for _, t := range out {
		if t.Order > maxOrder {
			maxOrder = t.Order
		}
	}

	for _, patch := range patches {
		if patch.ID == "" {
			continue
		}
		idx := -1
		for i := range out {
			if out[i].ID == patch.ID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			out[idx] = patch.apply(out[idx])
			continue
		}
		maxOrder++
		out = append(out, patch.materialize(maxOrder))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// MergeTopics folds the topic fromID into intoID and renumbers the result.
// If either ID is absent, or both name the same topic, the input is
// returned unchanged: stale client state yields a no-op, not an error.
//
// Merge rules: the into title wins when non-empty; descriptions are joined
// with a single space; key points are concatenated into-then-from without
// deduplication; enabled is the logical AND; the
// merged topic takes the smaller of the two orders.
func MergeTopics(topics []Topic, fromID, intoID string) []Topic {
	if fromID == intoID {
		return topics
	}
	var from, into *Topic
	for i := range topics {
		switch topics[i].ID {
		case fromID:
			from = &topics[i]
		case intoID:
			into = &topics[i]
		}
	}
	if from == nil || into == nil {
		return topics
	}

	merged := *into
	if merged.Title == "" {
		merged.Title = from.Title
	}
	var parts []string
	for _, d := range []string{into.Description, from.Description} {
		if d != "" {
			parts = append(parts, d)
		}
	}
	merged.Description = strings.Join(parts, " ")
	merged.KeyPoints = append(append([]string{}, into.KeyPoints...), from.KeyPoints...)
	merged.Enabled = into.Enabled && from.Enabled
	if from.Order < merged.Order {
		merged.Order = from.Order
	}

	out := make([]Topic, 0, len(topics)-1)
	for _, t := range topics {
		if t.ID == fromID || t.ID == intoID {
			continue
		}
		out = append(out, t)
	}
	out = append(out, merged)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return Renumber(out)
}

// Renumber assigns order = 1..N by current sequence position.
func Renumber(topics []Topic) []Topic {
	out := make([]Topic, len(topics))
	copy(out, topics)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// SetEnabled toggles a single topic by ID. Unknown IDs are a no-op.
func SetEnabled(topics []Topic, id string, enabled bool) []Topic {
	out := make([]Topic, len(topics))
	copy(out, topics)
	for i := range out {
		if out[i].ID == id {
			out[i].Enabled = enabled
		}
	}
	return out
}

// SelectTopics returns the enabled topics, further restricted to the given
// ID filter when it is non-empty. Disabled topics are excluded regardless
// of the filter.
func SelectTopics(topics []Topic, filter []string) []Topic {
	allow := make(map[string]bool, len(filter))
	for _, id := range filter {
		allow[id] = true
	}
	var out []Topic
	for _, t := range topics {
		if !t.Enabled {
			continue
		}
		if len(allow) > 0 && !allow[t.ID] {
			continue
		}
		out = append(out, t)
	}
	return out
}
