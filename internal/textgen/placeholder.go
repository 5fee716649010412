package textgen

import (
	"fmt"

	"github.com/scenescribe/scenescribe/internal/project"
)

// PlaceholderNarration returns a clearly-marked substitute narration, used
// when script generation fails for one topic so the batch can continue.
func PlaceholderNarration(title string) string {
	return fmt.Sprintf("Placeholder narration for %s.", title)
}

// PlaceholderScenes returns a minimal two-scene breakdown for a topic.
func PlaceholderScenes(topicID, title string) []project.Scene {
	return []project.Scene{
		{
			ID:                       fmt.Sprintf("%s-s1", topicID),
			Order:                    1,
			SceneSummary:             fmt.Sprintf("%s intro", title),
			VisualDescription:        fmt.Sprintf("Host in studio introduces %s with a prop table and bold overlays.", title),
			Actions:                  []string{"Camera dolly-in to host", "Host gestures to prop table"},
			Props:                    []string{"prop table", "whiteboard", "overlay cards"},
			OverlayTextSuggestions:   []string{"Problem", "Why now"},
			CameraStyle:              "Medium close-up",
			EstimatedDurationSeconds: 8,
		},
		{
			ID:                       fmt.Sprintf("%s-s2", topicID),
			Order:                    2,
			SceneSummary:             fmt.Sprintf("%s demo", title),
			VisualDescription:        fmt.Sprintf("Animated diagram and overlay labels walking through %s.", title),
			Actions:                  []string{"On-screen arrows animate", "Highlight key numbers"},
			Props:                    []string{"diagram", "floating labels"},
			OverlayTextSuggestions:   []string{"Step 1", "Step 2"},
			CameraStyle:              "Screen capture + overlay",
			EstimatedDurationSeconds: 10,
		},
	}
}

// PlaceholderStructure returns a fallback topic structure used when
// segmentation fails entirely: the project still advances with a default
// three-topic outline the user can edit.
func PlaceholderStructure() *StructureResult {
	topics := []project.Topic{
		{
			ID:          "t1",
			Order:       1,
			Title:       "Hook & Problem",
			Description: "Why the source content matters and the pain it addresses.",
			KeyPoints:   []string{"Context", "Pain point", "Why now"},
		},
		{
			ID:          "t2",
			Order:       2,
			Title:       "Core Concepts",
			Description: "Break down the main ideas with actions, props, and diagrams.",
			KeyPoints:   []string{"Concept 1", "Concept 2", "Concept 3"},
		},
		{
			ID:          "t3",
			Order:       3,
			Title:       "Takeaways",
			Description: "Summarize with calls-to-action and next steps.",
			KeyPoints:   []string{"Key takeaway", "Next action", "Reminder"},
		},
	}
	for i := range topics {
		topics[i].Enabled = true
		topics[i].ScriptStatus = project.TaskPending
		topics[i].VideoStatus = project.TaskPending
	}
	return &StructureResult{
		Summary: "Could not auto-generate summary. Please review topics manually.",
		Topics:  topics,
	}
}
