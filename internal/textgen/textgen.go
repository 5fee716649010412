// Package textgen abstracts the text-generation provider used for topic
// segmentation and script synthesis.
package textgen

import (
	"context"

	"github.com/scenescribe/scenescribe/internal/project"
)

// StructureResult is the outcome of segmenting source text into topics.
type StructureResult struct {
	Summary string
	Topics  []project.Topic
}

// Generator produces topic structures and per-topic scripts. Both calls may
// fail per invocation; callers substitute placeholders rather than failing
// a whole batch.
type Generator interface {
	// Segment splits cleaned source text into an ordered topic list plus a
	// content summary.
	Segment(ctx context.Context, text string, cfg project.GenerationConfig) (*StructureResult, error)

	// Script writes narration and 2-6 ordered scenes for one topic, scoped
	// to the given slice of the source text.
	Script(ctx context.Context, topic project.Topic, textSlice string, cfg project.GenerationConfig) (*project.ScriptResult, error)
}
