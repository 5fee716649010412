// Package pipeline coordinates the project lifecycle: ingesting source
// content, segmenting it into topics, generating scripts, and rendering
// one video per topic. All mutation goes through a load, compute,
// full-replace cycle against the store.
package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	serrors "github.com/scenescribe/scenescribe/internal/errors"
	"github.com/scenescribe/scenescribe/internal/ingest"
	"github.com/scenescribe/scenescribe/internal/metrics"
	"github.com/scenescribe/scenescribe/internal/project"
	"github.com/scenescribe/scenescribe/internal/store"
	"github.com/scenescribe/scenescribe/internal/textgen"
	"github.com/scenescribe/scenescribe/internal/videogen"
)

// ArticleFetcher pulls readable text out of a URL.
type ArticleFetcher interface {
	ExtractArticle(ctx context.Context, url string) (string, error)
}

// Options configures a Service. Zero-valued limits fall back to sensible
// defaults so tests can construct a Service with only the fields they need.
type Options struct {
	Store   store.Store
	Fetcher ArticleFetcher
	Text    textgen.Generator
	Video   videogen.Generator
	Metrics *metrics.Metrics
	Logger  zerolog.Logger

	Defaults        project.GenerationConfig
	PollInterval    time.Duration
	PollMaxAttempts int
	IngestMaxChars  int
	MinContentChars int
}

// Service implements the caller-facing project operations.
type Service struct {
	store   store.Store
	fetcher ArticleFetcher
	text    textgen.Generator
	video   videogen.Generator
	metrics *metrics.Metrics
	logger  zerolog.Logger

	defaults        project.GenerationConfig
	pollInterval    time.Duration
	pollMaxAttempts int
	ingestMaxChars  int
	minContentChars int
}

// NewService wires a Service from its dependencies.
func NewService(opts Options) *Service {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if reflect.DeepEqual(opts.Defaults, project.GenerationConfig{}) {
		opts.Defaults = project.DefaultConfig()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2500 * time.Millisecond
	}
	if opts.PollMaxAttempts <= 0 {
		opts.PollMaxAttempts = 12
	}
	if opts.IngestMaxChars <= 0 {
		opts.IngestMaxChars = 20000
	}
	if opts.MinContentChars <= 0 {
		opts.MinContentChars = 20
	}
	return &Service{
		store:           opts.Store,
		fetcher:         opts.Fetcher,
		text:            opts.Text,
		video:           opts.Video,
		metrics:         opts.Metrics,
		logger:          opts.Logger.With().Str("component", "pipeline").Logger(),
		defaults:        opts.Defaults,
		pollInterval:    opts.PollInterval,
		pollMaxAttempts: opts.PollMaxAttempts,
		ingestMaxChars:  opts.IngestMaxChars,
		minContentChars: opts.MinContentChars,
	}
}

// ConfigPatch is a partial generation config; nil fields keep the current
// (or default) value.
type ConfigPatch struct {
	Platform              *project.Platform                `json:"platform,omitempty"`
	AspectRatio           *project.AspectRatio             `json:"aspectRatio,omitempty"`
	Tone                  *project.Tone                    `json:"tone,omitempty"`
	Style                 *project.Style                   `json:"style,omitempty"`
	TargetDurationSeconds *int                             `json:"targetDurationSeconds,omitempty"`
	TopicOverrides        map[string]project.TopicOverride `json:"topicOverrides,omitempty"`
}

func applyConfigPatch(base project.GenerationConfig, patch *ConfigPatch) project.GenerationConfig {
	if patch == nil {
		return base
	}
	if patch.Platform != nil {
		base.Platform = *patch.Platform
	}
	if patch.AspectRatio != nil {
		base.AspectRatio = *patch.AspectRatio
	}
	if patch.Tone != nil {
		base.Tone = *patch.Tone
	}
	if patch.Style != nil {
		base.Style = *patch.Style
	}
	if patch.TargetDurationSeconds != nil {
		base.TargetDurationSeconds = *patch.TargetDurationSeconds
	}
	if patch.TopicOverrides != nil {
		base.TopicOverrides = patch.TopicOverrides
	}
	return base
}

// CreateProjectInput is the payload for CreateProject. Exactly one of URL
// and RawText is used, selected by InputType.
type CreateProjectInput struct {
	InputType project.InputType
	URL       string
	RawText   string
	Config    *ConfigPatch
}

// CreateProject ingests the source content, segments it into topics, and
// persists a new project in the structured state. A segmentation failure
// does not fail the call: the project is created with a placeholder
// structure for manual review.
func (s *Service) CreateProject(ctx context.Context, input CreateProjectInput) (*project.Project, error) {
	var (
		content string
		err     error
	)
	switch input.InputType {
	case project.InputURL:
		if input.URL == "" {
			return nil, fmt.Errorf("url is required for url input: %w", serrors.ErrInvalidInput)
		}
		content, err = s.fetcher.ExtractArticle(ctx, input.URL)
		if err != nil {
			return nil, fmt.Errorf("extract article: %w", err)
		}
	case project.InputText:
		if input.RawText == "" {
			return nil, fmt.Errorf("text is required for text input: %w", serrors.ErrInvalidInput)
		}
		content = ingest.NormalizeText(input.RawText, s.ingestMaxChars)
	default:
		return nil, fmt.Errorf("unknown input type %q: %w", input.InputType, serrors.ErrInvalidInput)
	}
	if len(content) < s.minContentChars {
		return nil, fmt.Errorf("content too short to segment (%d chars, need %d): %w",
			len(content), s.minContentChars, serrors.ErrInvalidInput)
	}

	cfg := applyConfigPatch(s.defaults, input.Config)

	structure, err := s.text.Segment(ctx, content, cfg)
	if err != nil || structure == nil || len(structure.Topics) == 0 {
		s.logger.Warn().Err(err).Msg("segmentation failed, using placeholder structure")
		s.metrics.GenerationRuns.WithLabelValues("segment", "fallback").Inc()
		if err != nil {
			s.metrics.ProviderErrors.WithLabelValues("textgen", "segment").Inc()
		}
		structure = textgen.PlaceholderStructure()
	} else {
		s.metrics.GenerationRuns.WithLabelValues("segment", "ok").Inc()
	}

	now := time.Now().UTC()
	p := &project.Project{
		ID:          uuid.NewString(),
		InputType:   input.InputType,
		URL:         input.URL,
		RawText:     input.RawText,
		CleanedText: content,
		Summary:     structure.Summary,
		Topics:      project.Renumber(structure.Topics),
		Config:      cfg,
		Status:      project.StatusStructured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	s.metrics.ProjectsCreated.Inc()
	s.logger.Info().
		Str("project_id", p.ID).
		Str("input_type", string(p.InputType)).
		Int("topics", len(p.Topics)).
		Msg("project created")
	return p, nil
}

// GetProject returns one project by ID.
func (s *Service) GetProject(ctx context.Context, id string) (*project.Project, error) {
	return s.store.LoadProject(ctx, id)
}

// UpdateProjectInput is a partial project update; nil fields are preserved.
type UpdateProjectInput struct {
	Summary *string
	Error   *string
	Config  *ConfigPatch
}

// UpdateProject applies a partial update to project-level fields.
func (s *Service) UpdateProject(ctx context.Context, id string, input UpdateProjectInput) (*project.Project, error) {
	p, err := s.store.LoadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Summary != nil {
		p.Summary = *input.Summary
	}
	if input.Error != nil {
		p.Error = *input.Error
	}
	p.Config = applyConfigPatch(p.Config, input.Config)
	if err := s.store.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MergeRequest folds topic FromID into topic IntoID.
type MergeRequest struct {
	FromID string `json:"fromId"`
	IntoID string `json:"intoId"`
}

// EditTopicsInput carries one topic-editing round trip: an optional merge
// followed by upserts. Patches may reference topics produced by the merge.
type EditTopicsInput struct {
	Merge  *MergeRequest
	Topics []project.TopicPatch
}

// EditTopics applies a merge and/or upserts to the project's topic list.
// The project status is left untouched, so editing never regresses the
// lifecycle.
func (s *Service) EditTopics(ctx context.Context, id string, input EditTopicsInput) (*project.Project, error) {
	p, err := s.store.LoadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Merge == nil && len(input.Topics) == 0 {
		return p, nil
	}
	if input.Merge != nil {
		p.Topics = project.MergeTopics(p.Topics, input.Merge.FromID, input.Merge.IntoID)
	}
	if len(input.Topics) > 0 {
		p.Topics = project.UpsertTopics(p.Topics, input.Topics)
	}
	p.Topics = project.Renumber(p.Topics)
	if err := s.store.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
