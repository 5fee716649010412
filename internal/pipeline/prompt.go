package pipeline

import (
	"fmt"
	"strings"

	"github.com/scenescribe/scenescribe/internal/project"
)

// sceneHintBudget bounds the scene portion of a render prompt to respect
// provider prompt limits.
const sceneHintBudget = 1200

// BuildPrompt renders a deterministic natural-language prompt for one
// topic's video from its script and the effective generation settings.
func BuildPrompt(topic project.Topic, cfg project.GenerationConfig) string {
	parts := []string{
		fmt.Sprintf("Create a vivid, action-based explainer video topic: %s.", topic.Title),
		fmt.Sprintf("Tone: %s. Style: %s. Aspect ratio: %s. Target duration ~%ds.",
			topic.EffectiveTone(cfg), cfg.Style, cfg.AspectRatio, topic.EffectiveDurationSeconds(cfg)),
	}
	if topic.Description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", topic.Description))
	}
	if len(topic.KeyPoints) > 0 {
		parts = append(parts, fmt.Sprintf("Key points: %s", strings.Join(topic.KeyPoints, "; ")))
	}
	if hints := sceneHints(topic.Scenes); hints != "" {
		parts = append(parts, fmt.Sprintf("Scenes: %s", hints))
	}
	parts = append(parts, "Use clear props and readable overlays. Avoid text-to-speech; visuals only.")
	return strings.Join(parts, " ")
}

func sceneHints(scenes []project.Scene) string {
	if len(scenes) == 0 {
		return ""
	}
	hints := make([]string, 0, len(scenes))
	for _, s := range scenes {
		hints = append(hints, fmt.Sprintf("Scene %d: %s. Visuals: %s. Actions: %s. Props: %s. Overlays: %s.",
			s.Order, s.SceneSummary, s.VisualDescription,
			strings.Join(s.Actions, ", "),
			strings.Join(s.Props, ", "),
			strings.Join(s.OverlayTextSuggestions, ", ")))
	}
	joined := strings.Join(hints, " ")
	if len(joined) > sceneHintBudget {
		joined = joined[:sceneHintBudget]
	}
	return joined
}
