package project

// ScriptResult is one topic's generated (or placeholder) script, keyed for
// the merge back into the topic collection.
type ScriptResult struct {
	TopicID   string  `json:"topicId"`
	Narration string  `json:"narration"`
	Scenes    []Scene `json:"scenes"`
}

// ApplyScriptResults merges script results into the topic list by ID.
// Topics without a result are returned unchanged. A matched topic gets the
// result's narration and scenes and a ready script status — placeholders
// included, so one failed generation never blocks downstream flow.
func ApplyScriptResults(topics []Topic, results []ScriptResult) []Topic {
	byID := make(map[string]ScriptResult, len(results))
	for _, r := range results {
		byID[r.TopicID] = r
	}
	out := make([]Topic, len(topics))
	copy(out, topics)
	for i := range out {
		r, ok := byID[out[i].ID]
		if !ok {
			continue
		}
		out[i].Narration = r.Narration
		out[i].Scenes = r.Scenes
		out[i].ScriptStatus = TaskReady
	}
	return out
}

// VideoOutcome records the terminal result of one topic's render job.
type VideoOutcome struct {
	TopicID string     `json:"topicId"`
	Status  TaskStatus `json:"status"`
	Media   Media      `json:"media"`
	Error   string     `json:"error,omitempty"`
}

// ApplyVideoOutcomes merges per-topic render outcomes into the topic list
// by ID, last write wins per topic. Topics without an outcome are returned
// unchanged.
func ApplyVideoOutcomes(topics []Topic, outcomes map[string]VideoOutcome) []Topic {
	out := make([]Topic, len(topics))
	copy(out, topics)
	for i := range out {
		o, ok := outcomes[out[i].ID]
		if !ok {
			continue
		}
		out[i].VideoStatus = o.Status
		media := o.Media
		out[i].Media = &media
	}
	return out
}

// AggregateVideoStatus computes the project status from the full topic
// list after a video batch resolves: completed only when every enabled
// topic has a ready video, videos_generating otherwise. Disabled topics
// are excluded from the check entirely.
//
// Note the deliberate asymmetry with scripts: any script batch completion
// advances the project to scripts_ready, while videos require full
// coverage for completed.
func AggregateVideoStatus(topics []Topic) Status {
	for _, t := range topics {
		if !t.Enabled {
			continue
		}
		if t.VideoStatus != TaskReady {
			return StatusVideosGenerating
		}
	}
	return StatusCompleted
}
