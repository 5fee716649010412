package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	serrors "github.com/scenescribe/scenescribe/internal/errors"
	"github.com/scenescribe/scenescribe/internal/project"
	"github.com/scenescribe/scenescribe/internal/retry"
)

const (
	defaultOpenAIBase  = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-4o-mini"

	// segmentWindow bounds how much source text is sent for segmentation.
	segmentWindow = 8000
)

// OpenAIGenerator implements Generator against an OpenAI-compatible
// chat-completions endpoint.
type OpenAIGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	retry   retry.Config
	logger  zerolog.Logger
}

// OpenAIOption configures the generator.
type OpenAIOption func(*OpenAIGenerator)

func WithBaseURL(u string) OpenAIOption {
	return func(g *OpenAIGenerator) { g.baseURL = u }
}

func WithModel(model string) OpenAIOption {
	return func(g *OpenAIGenerator) { g.model = model }
}

func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(g *OpenAIGenerator) { g.client = c }
}

func WithRetry(cfg retry.Config) OpenAIOption {
	return func(g *OpenAIGenerator) { g.retry = cfg }
}

// NewOpenAIGenerator constructs a new OpenAI-backed text generator.
func NewOpenAIGenerator(apiKey string, logger zerolog.Logger, opts ...OpenAIOption) *OpenAIGenerator {
	g := &OpenAIGenerator{
		apiKey:  apiKey,
		baseURL: defaultOpenAIBase,
		model:   defaultOpenAIModel,
		client:  &http.Client{Timeout: 120 * time.Second},
		retry:   retry.DefaultConfig(),
		logger:  logger.With().Str("component", "textgen").Logger(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// ---- OpenAI wire types ----

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Intermediate payload shapes. Provider output is loosely typed; the
// alternate field names cover the response variants seen in practice.

type segmentPayload struct {
	Summary string `json:"summary"`
	Topics  []struct {
		ID          string              `json:"id"`
		Title       string              `json:"title"`
		Description string              `json:"description"`
		KeyPoints   []string            `json:"keyPoints"`
		Enabled     *bool               `json:"enabled"`
		SourceSpan  *project.SourceSpan `json:"sourceSpan"`
	} `json:"topics"`
}

type scriptPayload struct {
	Narration string `json:"narration"`
	Script    string `json:"script"`
	Scenes    []struct {
		ID                       string   `json:"id"`
		SceneSummary             string   `json:"sceneSummary"`
		Title                    string   `json:"title"`
		VisualDescription        string   `json:"visualDescription"`
		Description              string   `json:"description"`
		Actions                  []string `json:"actions"`
		Props                    []string `json:"props"`
		OverlayTextSuggestions   []string `json:"overlayTextSuggestions"`
		CameraStyle              string   `json:"cameraStyle"`
		EstimatedDurationSeconds float64  `json:"estimatedDurationSeconds"`
	} `json:"scenes"`
}

func (g *OpenAIGenerator) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	req := chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Temperature: temperature,
	}
	req.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var content string
	err = retry.Do(ctx, g.retry, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			g.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

		resp, err := g.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("openai http: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return serrors.NewProviderError("openai", resp.StatusCode, string(raw))
		}

		var cr chatResponse
		if err := json.Unmarshal(raw, &cr); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		if cr.Error != nil {
			return serrors.NewProviderError("openai", resp.StatusCode, cr.Error.Message)
		}
		if len(cr.Choices) == 0 {
			return serrors.NewProviderError("openai", resp.StatusCode, "empty choices")
		}
		content = cr.Choices[0].Message.Content
		return nil
	})
	return content, err
}

// Segment implements Generator.
func (g *OpenAIGenerator) Segment(ctx context.Context, text string, cfg project.GenerationConfig) (*StructureResult, error) {
	window := text
	if len(window) > segmentWindow {
		window = window[:segmentWindow]
	}

	user, err := json.Marshal(map[string]any{
		"content": window,
		"config":  cfg,
		"instructions": "Return summary plus 4-8 topics with id, title, description, " +
			"keyPoints (3-5), and sourceSpan start/end char offsets.",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal segment input: %w", err)
	}

	const system = "You segment content into crisp, ordered topics suitable for short video explainers. " +
		"Respond ONLY with JSON in the requested shape."

	content, err := g.complete(ctx, system, string(user), 0.4)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}

	var payload segmentPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("segment: parse payload: %w", err)
	}

	topics := make([]project.Topic, 0, len(payload.Topics))
	for i, t := range payload.Topics {
		id := t.ID
		if id == "" {
			id = fmt.Sprintf("t%d", i+1)
		}
		enabled := true
		if t.Enabled != nil {
			enabled = *t.Enabled
		}
		topics = append(topics, project.Topic{
			ID:           id,
			Order:        i + 1,
			Title:        t.Title,
			Description:  t.Description,
			KeyPoints:    t.KeyPoints,
			Enabled:      enabled,
			SourceSpan:   t.SourceSpan,
			ScriptStatus: project.TaskPending,
			VideoStatus:  project.TaskPending,
		})
	}

	g.logger.Debug().Int("topics", len(topics)).Msg("segmentation complete")
	return &StructureResult{Summary: payload.Summary, Topics: topics}, nil
}

// Script implements Generator.
func (g *OpenAIGenerator) Script(ctx context.Context, topic project.Topic, textSlice string, cfg project.GenerationConfig) (*project.ScriptResult, error) {
	user, err := json.Marshal(map[string]any{
		"topic":  topic,
		"source": textSlice,
		"config": cfg,
		"request": "Return narration plus 2-6 scenes with sceneSummary, visualDescription, " +
			"actions, props, overlayTextSuggestions, cameraStyle, estimatedDurationSeconds.",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal script input: %w", err)
	}

	const system = "You write narration and scene breakdowns for short, vivid explainer videos. " +
		"Use props, actions, and overlays. Respond with JSON only."

	content, err := g.complete(ctx, system, string(user), 0.5)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", topic.ID, err)
	}

	var payload scriptPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("script %s: parse payload: %w", topic.ID, err)
	}

	narration := payload.Narration
	if narration == "" {
		narration = payload.Script
	}

	scenes := make([]project.Scene, 0, len(payload.Scenes))
	for i, s := range payload.Scenes {
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("%s-s%d", topic.ID, i+1)
		}
		summary := s.SceneSummary
		if summary == "" {
			summary = s.Title
		}
		visual := s.VisualDescription
		if visual == "" {
			visual = s.Description
		}
		scenes = append(scenes, project.Scene{
			ID:                       id,
			Order:                    i + 1,
			SceneSummary:             summary,
			VisualDescription:        visual,
			Actions:                  orEmpty(s.Actions),
			Props:                    orEmpty(s.Props),
			OverlayTextSuggestions:   orEmpty(s.OverlayTextSuggestions),
			CameraStyle:              s.CameraStyle,
			EstimatedDurationSeconds: s.EstimatedDurationSeconds,
		})
	}

	return &project.ScriptResult{TopicID: topic.ID, Narration: narration, Scenes: scenes}, nil
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
