package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	serrors "github.com/scenescribe/scenescribe/internal/errors"
	"github.com/scenescribe/scenescribe/internal/project"
	"github.com/scenescribe/scenescribe/internal/retry"
)

const (
	defaultRunwayBase    = "https://api.dev.runwayml.com"
	defaultRunwayVersion = "2024-11-06"
	defaultRunwayModel   = "veo3.1"
)

// MapAspectRatio translates a configured aspect ratio into the provider's
// resolution vocabulary. Unrecognized ratios fall back to landscape.
func MapAspectRatio(ratio project.AspectRatio) string {
	if ratio == project.RatioPortrait {
		return "720:1280"
	}
	return "1920:1080"
}

// MapDurationSeconds buckets a target duration into the provider's
// supported discrete durations.
func MapDurationSeconds(seconds int) int {
	switch {
	case seconds <= 5:
		return 4
	case seconds <= 7:
		return 6
	default:
		return 8
	}
}

// RunwayGenerator implements Generator against the Runway text-to-video API.
type RunwayGenerator struct {
	apiKey  string
	baseURL string
	version string
	model   string
	client  *http.Client
	retry   retry.Config
	logger  zerolog.Logger
}

// RunwayOption configures the generator.
type RunwayOption func(*RunwayGenerator)

func RunwayWithBaseURL(u string) RunwayOption {
	return func(g *RunwayGenerator) { g.baseURL = strings.TrimRight(u, "/") }
}

func RunwayWithVersion(v string) RunwayOption {
	return func(g *RunwayGenerator) { g.version = v }
}

func RunwayWithModel(m string) RunwayOption {
	return func(g *RunwayGenerator) { g.model = m }
}

func RunwayWithHTTPClient(c *http.Client) RunwayOption {
	return func(g *RunwayGenerator) { g.client = c }
}

func RunwayWithRetry(cfg retry.Config) RunwayOption {
	return func(g *RunwayGenerator) { g.retry = cfg }
}

// NewRunwayGenerator constructs a Runway-backed video generator.
func NewRunwayGenerator(apiKey string, logger zerolog.Logger, opts ...RunwayOption) *RunwayGenerator {
	g := &RunwayGenerator{
		apiKey:  apiKey,
		baseURL: defaultRunwayBase,
		version: defaultRunwayVersion,
		model:   defaultRunwayModel,
		client:  &http.Client{Timeout: 60 * time.Second},
		retry:   retry.DefaultConfig(),
		logger:  logger.With().Str("component", "videogen").Logger(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// ---- Runway wire types ----

type runwaySubmitRequest struct {
	Model      string `json:"model"`
	PromptText string `json:"promptText"`
	Ratio      string `json:"ratio"`
	Duration   int    `json:"duration"`
	Audio      bool   `json:"audio"`
}

// runwayTask covers the field-name variants different task payloads use
// for the result asset. The fallback chain lives in media(), nowhere else.
type runwayTask struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Video  *struct {
		URL string `json:"url"`
	} `json:"video"`
	Assets *struct {
		Video     string `json:"video"`
		Thumbnail string `json:"thumbnail"`
	} `json:"assets"`
	Output []struct {
		URL string `json:"url"`
	} `json:"output"`
	AssetURL     string `json:"asset_url"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Failure      string `json:"failure"`
}

func (t *runwayTask) media() project.Media {
	var m project.Media
	switch {
	case t.Video != nil && t.Video.URL != "":
		m.VideoURL = t.Video.URL
	case t.Assets != nil && t.Assets.Video != "":
		m.VideoURL = t.Assets.Video
	case len(t.Output) > 0 && t.Output[0].URL != "":
		m.VideoURL = t.Output[0].URL
	case t.AssetURL != "":
		m.VideoURL = t.AssetURL
	case t.VideoURL != "":
		m.VideoURL = t.VideoURL
	}
	if t.Assets != nil && t.Assets.Thumbnail != "" {
		m.ThumbnailURL = t.Assets.Thumbnail
	} else if t.ThumbnailURL != "" {
		m.ThumbnailURL = t.ThumbnailURL
	}
	return m
}

// Submit implements Generator.
func (g *RunwayGenerator) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	body, err := json.Marshal(runwaySubmitRequest{
		Model:      g.model,
		PromptText: req.Prompt,
		Ratio:      MapAspectRatio(req.AspectRatio),
		Duration:   MapDurationSeconds(req.DurationSeconds),
		Audio:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal submit: %w", err)
	}

	var jobID string
	err = retry.Do(ctx, g.retry, func(ctx context.Context) error {
		raw, status, err := g.doJSON(ctx, http.MethodPost, "/v1/text_to_video", body)
		if err != nil {
			return err
		}
		if status < 200 || status >= 300 {
			return serrors.NewProviderError("runway", status, string(raw))
		}
		var task runwayTask
		if err := json.Unmarshal(raw, &task); err != nil {
			return fmt.Errorf("unmarshal submit response: %w", err)
		}
		if task.ID == "" {
			return serrors.NewProviderError("runway", status, "response missing job id")
		}
		jobID = task.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("runway submit: %w", err)
	}

	g.logger.Debug().Str("job_id", jobID).Msg("render job submitted")
	return jobID, nil
}

// Poll implements Generator. Transport failures return an error and count
// as a non-terminal attempt for the caller's poll budget.
func (g *RunwayGenerator) Poll(ctx context.Context, jobID string) (*PollResult, error) {
	raw, status, err := g.doJSON(ctx, http.MethodGet, "/v1/tasks/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, serrors.NewProviderError("runway", status, string(raw))
	}

	var task runwayTask
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}

	media := task.media()
	switch {
	case task.Status == "failed":
		return &PollResult{State: StateFailed, Detail: task.Failure}, nil
	case task.Status == "succeeded", task.Status == "completed", media.VideoURL != "":
		return &PollResult{State: StateSucceeded, Media: media}, nil
	default:
		return &PollResult{State: StateRunning}, nil
	}
}

func (g *RunwayGenerator) doJSON(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("X-Runway-Version", g.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("runway http: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return raw, resp.StatusCode, nil
}
