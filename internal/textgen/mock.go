package textgen

import (
	"context"
	"fmt"

	"github.com/scenescribe/scenescribe/internal/project"
)

// MockGenerator returns deterministic structures and scripts. Used in
// tests and when no text provider is configured.
type MockGenerator struct{}

// NewMockGenerator constructs a mock text generator.
func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

// Segment implements Generator with a fixed three-topic outline.
func (m *MockGenerator) Segment(ctx context.Context, text string, cfg project.GenerationConfig) (*StructureResult, error) {
	res := PlaceholderStructure()
	res.Summary = "High-level summary of the provided content, generated in mock mode for reliability."
	return res, nil
}

// Script implements Generator with deterministic narration and scenes.
func (m *MockGenerator) Script(ctx context.Context, topic project.Topic, textSlice string, cfg project.GenerationConfig) (*project.ScriptResult, error) {
	narration := topic.Narration
	if narration == "" {
		narration = fmt.Sprintf("Script for %s: Explain the key points with vivid props and actions.", topic.Title)
	}
	scenes := topic.Scenes
	if len(scenes) == 0 {
		scenes = PlaceholderScenes(topic.ID, topic.Title)
	}
	return &project.ScriptResult{TopicID: topic.ID, Narration: narration, Scenes: scenes}, nil
}
