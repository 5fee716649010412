package pipeline

import (
	"context"
	"fmt"

	serrors "github.com/scenescribe/scenescribe/internal/errors"
	"github.com/scenescribe/scenescribe/internal/project"
	"github.com/scenescribe/scenescribe/internal/textgen"
)

// defaultSourceWindow bounds the source text handed to the script writer
// for topics without an explicit span.
const defaultSourceWindow = 2000

// GenerateScripts runs script generation for the selected enabled topics,
// sequentially, and advances the project to scripts_ready. A failed
// generation for one topic yields a placeholder script for that topic and
// never aborts the batch.
func (s *Service) GenerateScripts(ctx context.Context, projectID string, topicIDs []string) (*project.Project, error) {
	p, err := s.store.LoadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	targets := project.SelectTopics(p.Topics, topicIDs)
	if len(targets) == 0 {
		return nil, fmt.Errorf("generate scripts: %w", serrors.ErrNoTopicsSelected)
	}

	source := p.CleanedText
	if source == "" {
		source = p.RawText
	}

	results := make([]project.ScriptResult, 0, len(targets))
	for _, topic := range targets {
		res, err := s.text.Script(ctx, topic, sourceSlice(source, topic.SourceSpan), p.Config)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("project_id", p.ID).
				Str("topic_id", topic.ID).
				Msg("script generation failed, substituting placeholder")
			s.metrics.ProviderErrors.WithLabelValues("textgen", "script").Inc()
			res = &project.ScriptResult{
				TopicID:   topic.ID,
				Narration: textgen.PlaceholderNarration(topic.Title),
				Scenes:    textgen.PlaceholderScenes(topic.ID, topic.Title),
			}
		}
		results = append(results, *res)
	}

	p.Topics = project.ApplyScriptResults(p.Topics, results)
	p.Status = project.StatusScriptsReady
	if err := s.store.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}
	s.metrics.GenerationRuns.WithLabelValues("scripts", "ok").Inc()
	s.logger.Info().
		Str("project_id", p.ID).
		Int("topics", len(results)).
		Msg("script batch complete")
	return p, nil
}

// sourceSlice returns the span of source text a topic's script should be
// grounded in, clamped to the text bounds. Topics without a span get a
// window from the start of the text.
func sourceSlice(text string, span *project.SourceSpan) string {
	if span == nil {
		if len(text) > defaultSourceWindow {
			return text[:defaultSourceWindow]
		}
		return text
	}
	start := clamp(span.StartChar, 0, len(text))
	end := clamp(span.EndChar, start, len(text))
	return text[start:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
