package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/scenescribe/scenescribe/internal/errors"
	"github.com/scenescribe/scenescribe/internal/project"
	"github.com/scenescribe/scenescribe/internal/store"
	"github.com/scenescribe/scenescribe/internal/textgen"
	"github.com/scenescribe/scenescribe/internal/videogen"
)

type stubFetcher struct {
	content string
	err     error
}

func (s *stubFetcher) ExtractArticle(ctx context.Context, url string) (string, error) {
	return s.content, s.err
}

type stubText struct {
	segment func(text string) (*textgen.StructureResult, error)
	script  func(topic project.Topic) (*project.ScriptResult, error)
}

func (s *stubText) Segment(ctx context.Context, text string, cfg project.GenerationConfig) (*textgen.StructureResult, error) {
	if s.segment == nil {
		return textgen.NewMockGenerator().Segment(ctx, text, cfg)
	}
	return s.segment(text)
}

func (s *stubText) Script(ctx context.Context, topic project.Topic, textSlice string, cfg project.GenerationConfig) (*project.ScriptResult, error) {
	if s.script == nil {
		return textgen.NewMockGenerator().Script(ctx, topic, textSlice, cfg)
	}
	return s.script(topic)
}

type stubVideo struct {
	submit func(req videogen.SubmitRequest) (string, error)
	poll   func(jobID string) (*videogen.PollResult, error)
}

func (s *stubVideo) Submit(ctx context.Context, req videogen.SubmitRequest) (string, error) {
	if s.submit == nil {
		return "job-1", nil
	}
	return s.submit(req)
}

func (s *stubVideo) Poll(ctx context.Context, jobID string) (*videogen.PollResult, error) {
	if s.poll == nil {
		return &videogen.PollResult{
			State: videogen.StateSucceeded,
			Media: project.Media{VideoURL: "https://cdn.example.com/" + jobID + ".mp4"},
		}, nil
	}
	return s.poll(jobID)
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Text == nil {
		opts.Text = &stubText{}
	}
	if opts.Video == nil {
		opts.Video = &stubVideo{}
	}
	if opts.Fetcher == nil {
		opts.Fetcher = &stubFetcher{}
	}
	opts.Logger = zerolog.Nop()
	opts.PollInterval = time.Millisecond
	opts.PollMaxAttempts = 3
	return NewService(opts)
}

func seedProject(t *testing.T, s *Service, topics []project.Topic) *project.Project {
	t.Helper()
	p := &project.Project{
		ID:          "p1",
		InputType:   project.InputText,
		RawText:     "raw source text for the seeded project, long enough to slice.",
		CleanedText: "cleaned source text for the seeded project, long enough to slice.",
		Topics:      topics,
		Config:      project.DefaultConfig(),
		Status:      project.StatusStructured,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.store.SaveProject(context.Background(), p))
	return p
}

func pendingTopics(n int) []project.Topic {
	topics := make([]project.Topic, 0, n)
	for i := 1; i <= n; i++ {
		topics = append(topics, project.Topic{
			ID:           fmt.Sprintf("t%d", i),
			Order:        i,
			Title:        fmt.Sprintf("Topic %d", i),
			Enabled:      true,
			ScriptStatus: project.TaskPending,
			VideoStatus:  project.TaskPending,
		})
	}
	return topics
}

func TestCreateProjectFromText(t *testing.T) {
	svc := newTestService(t, Options{})

	p, err := svc.CreateProject(context.Background(), CreateProjectInput{
		InputType: project.InputText,
		RawText:   "A long enough piece of source content about distributed systems and caching strategies.",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, project.StatusStructured, p.Status)
	assert.NotEmpty(t, p.Summary)
	require.Len(t, p.Topics, 3)
	for i, topic := range p.Topics {
		assert.Equal(t, i+1, topic.Order)
		assert.True(t, topic.Enabled)
		assert.Equal(t, project.TaskPending, topic.ScriptStatus)
	}
	assert.Equal(t, project.DefaultConfig().Platform, p.Config.Platform)

	stored, err := svc.GetProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
}

func TestCreateProjectConfigOverrides(t *testing.T) {
	svc := newTestService(t, Options{})

	ratio := project.RatioPortrait
	duration := 30
	p, err := svc.CreateProject(context.Background(), CreateProjectInput{
		InputType: project.InputText,
		RawText:   strings.Repeat("content ", 20),
		Config:    &ConfigPatch{AspectRatio: &ratio, TargetDurationSeconds: &duration},
	})
	require.NoError(t, err)

	assert.Equal(t, project.RatioPortrait, p.Config.AspectRatio)
	assert.Equal(t, 30, p.Config.TargetDurationSeconds)
	// unset fields keep defaults
	assert.Equal(t, project.DefaultConfig().Tone, p.Config.Tone)
}

func TestCreateProjectContentTooShort(t *testing.T) {
	svc := newTestService(t, Options{})

	_, err := svc.CreateProject(context.Background(), CreateProjectInput{
		InputType: project.InputText,
		RawText:   "too short",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, serrors.ErrInvalidInput)
}

func TestCreateProjectFromURL(t *testing.T) {
	svc := newTestService(t, Options{
		Fetcher: &stubFetcher{content: "Extracted article body with plenty of readable text to segment."},
	})

	p, err := svc.CreateProject(context.Background(), CreateProjectInput{
		InputType: project.InputURL,
		URL:       "https://example.com/article",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/article", p.URL)
	assert.Contains(t, p.CleanedText, "Extracted article body")
}

func TestCreateProjectFetchFailure(t *testing.T) {
	svc := newTestService(t, Options{
		Fetcher: &stubFetcher{err: fmt.Errorf("fetch: %w", serrors.ErrUnavailable)},
	})

	_, err := svc.CreateProject(context.Background(), CreateProjectInput{
		InputType: project.InputURL,
		URL:       "https://example.com/article",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, serrors.ErrUnavailable)
}

func TestCreateProjectSegmentFallback(t *testing.T) {
	svc := newTestService(t, Options{
		Text: &stubText{segment: func(string) (*textgen.StructureResult, error) {
			return nil, errors.New("model unavailable")
		}},
	})

	p, err := svc.CreateProject(context.Background(), CreateProjectInput{
		InputType: project.InputText,
		RawText:   strings.Repeat("fallback content ", 10),
	})
	require.NoError(t, err)

	require.Len(t, p.Topics, 3)
	assert.Equal(t, "Hook & Problem", p.Topics[0].Title)
	assert.Contains(t, p.Summary, "review topics manually")
	assert.Equal(t, project.StatusStructured, p.Status)
}

func TestGenerateScriptsPlaceholderOnFailure(t *testing.T) {
	svc := newTestService(t, Options{
		Text: &stubText{script: func(topic project.Topic) (*project.ScriptResult, error) {
			if topic.ID == "t2" {
				return nil, errors.New("rate limited")
			}
			return &project.ScriptResult{
				TopicID:   topic.ID,
				Narration: "Narration for " + topic.Title,
				Scenes:    textgen.PlaceholderScenes(topic.ID, topic.Title),
			}, nil
		}},
	})
	seedProject(t, svc, pendingTopics(3))

	p, err := svc.GenerateScripts(context.Background(), "p1", nil)
	require.NoError(t, err)

	assert.Equal(t, project.StatusScriptsReady, p.Status)
	for _, topic := range p.Topics {
		assert.Equal(t, project.TaskReady, topic.ScriptStatus, topic.ID)
		assert.NotEmpty(t, topic.Scenes, topic.ID)
	}
	assert.Equal(t, "Narration for Topic 1", p.Topics[0].Narration)
	assert.Equal(t, textgen.PlaceholderNarration("Topic 2"), p.Topics[1].Narration)
	assert.Equal(t, "Narration for Topic 3", p.Topics[2].Narration)
}

func TestGenerateScriptsFilterAndDisabled(t *testing.T) {
	svc := newTestService(t, Options{})
	topics := pendingTopics(3)
	topics[2].Enabled = false
	seedProject(t, svc, topics)

	p, err := svc.GenerateScripts(context.Background(), "p1", []string{"t1", "t3"})
	require.NoError(t, err)

	// t1 selected, t2 filtered out, t3 disabled
	assert.Equal(t, project.TaskReady, p.Topics[0].ScriptStatus)
	assert.Equal(t, project.TaskPending, p.Topics[1].ScriptStatus)
	assert.Equal(t, project.TaskPending, p.Topics[2].ScriptStatus)
}

func TestGenerateScriptsNoTopicsSelected(t *testing.T) {
	svc := newTestService(t, Options{})
	topics := pendingTopics(1)
	topics[0].Enabled = false
	seedProject(t, svc, topics)

	_, err := svc.GenerateScripts(context.Background(), "p1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, serrors.ErrNoTopicsSelected)
}

func TestGenerateScriptsProjectNotFound(t *testing.T) {
	svc := newTestService(t, Options{})

	_, err := svc.GenerateScripts(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestGenerateVideosAllReady(t *testing.T) {
	svc := newTestService(t, Options{})
	seedProject(t, svc, pendingTopics(3))

	p, err := svc.GenerateVideos(context.Background(), "p1", nil)
	require.NoError(t, err)

	assert.Equal(t, project.StatusCompleted, p.Status)
	for _, topic := range p.Topics {
		assert.Equal(t, project.TaskReady, topic.VideoStatus, topic.ID)
		require.NotNil(t, topic.Media, topic.ID)
		assert.NotEmpty(t, topic.Media.VideoURL, topic.ID)
	}
}

func TestGenerateVideosSubmitFailureIsolated(t *testing.T) {
	svc := newTestService(t, Options{
		Video: &stubVideo{submit: func(req videogen.SubmitRequest) (string, error) {
			if strings.Contains(req.Prompt, "Topic 2") {
				return "", errors.New("provider rejected the prompt")
			}
			return "job-ok", nil
		}},
	})
	seedProject(t, svc, pendingTopics(3))

	p, err := svc.GenerateVideos(context.Background(), "p1", nil)
	require.NoError(t, err)

	assert.Equal(t, project.StatusVideosGenerating, p.Status)
	assert.Equal(t, project.TaskReady, p.Topics[0].VideoStatus)
	assert.Equal(t, project.TaskFailed, p.Topics[1].VideoStatus)
	assert.Equal(t, project.TaskReady, p.Topics[2].VideoStatus)
}

func TestGenerateVideosPollTimeout(t *testing.T) {
	svc := newTestService(t, Options{
		Video: &stubVideo{poll: func(string) (*videogen.PollResult, error) {
			return &videogen.PollResult{State: videogen.StateRunning}, nil
		}},
	})
	seedProject(t, svc, pendingTopics(1))

	p, err := svc.GenerateVideos(context.Background(), "p1", nil)
	require.NoError(t, err)

	assert.Equal(t, project.StatusVideosGenerating, p.Status)
	assert.Equal(t, project.TaskFailed, p.Topics[0].VideoStatus)
}

func TestGenerateVideosReadyWithoutURL(t *testing.T) {
	svc := newTestService(t, Options{
		Video: &stubVideo{poll: func(string) (*videogen.PollResult, error) {
			return &videogen.PollResult{State: videogen.StateSucceeded}, nil
		}},
	})
	seedProject(t, svc, pendingTopics(1))

	p, err := svc.GenerateVideos(context.Background(), "p1", nil)
	require.NoError(t, err)

	assert.Equal(t, project.TaskFailed, p.Topics[0].VideoStatus)
}

func TestGenerateVideosDisabledTopicIgnored(t *testing.T) {
	svc := newTestService(t, Options{})
	topics := pendingTopics(2)
	topics[1].Enabled = false
	topics[1].VideoStatus = project.TaskFailed
	seedProject(t, svc, topics)

	p, err := svc.GenerateVideos(context.Background(), "p1", nil)
	require.NoError(t, err)

	// the disabled topic's earlier failure no longer blocks completion
	assert.Equal(t, project.StatusCompleted, p.Status)
	assert.Equal(t, project.TaskFailed, p.Topics[1].VideoStatus)
	assert.Nil(t, p.Topics[1].Media)
}

func TestGenerateVideosNoTopicsSelected(t *testing.T) {
	svc := newTestService(t, Options{})
	seedProject(t, svc, pendingTopics(2))

	_, err := svc.GenerateVideos(context.Background(), "p1", []string{"does-not-exist"})
	assert.ErrorIs(t, err, serrors.ErrNoTopicsSelected)
}

func TestEditTopicsMergeAndUpsert(t *testing.T) {
	svc := newTestService(t, Options{})
	seedProject(t, svc, pendingTopics(3))

	title := "Renamed"
	p, err := svc.EditTopics(context.Background(), "p1", EditTopicsInput{
		Merge:  &MergeRequest{FromID: "t2", IntoID: "t1"},
		Topics: []project.TopicPatch{{ID: "t3", Title: &title}},
	})
	require.NoError(t, err)

	require.Len(t, p.Topics, 2)
	for i, topic := range p.Topics {
		assert.Equal(t, i+1, topic.Order)
	}
	renamed := p.Topic("t3")
	require.NotNil(t, renamed)
	assert.Equal(t, "Renamed", renamed.Title)
	assert.Equal(t, project.StatusStructured, p.Status)
}

func TestEditTopicsNoOp(t *testing.T) {
	svc := newTestService(t, Options{})
	seedProject(t, svc, pendingTopics(2))

	p, err := svc.EditTopics(context.Background(), "p1", EditTopicsInput{})
	require.NoError(t, err)
	assert.Len(t, p.Topics, 2)
}

func TestUpdateProject(t *testing.T) {
	svc := newTestService(t, Options{})
	seedProject(t, svc, pendingTopics(1))

	summary := "Edited summary"
	tone := project.Tone("playful")
	p, err := svc.UpdateProject(context.Background(), "p1", UpdateProjectInput{
		Summary: &summary,
		Config:  &ConfigPatch{Tone: &tone},
	})
	require.NoError(t, err)

	assert.Equal(t, "Edited summary", p.Summary)
	assert.Equal(t, tone, p.Config.Tone)
	assert.Equal(t, project.DefaultConfig().AspectRatio, p.Config.AspectRatio)
}
