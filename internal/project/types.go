// Package project defines the scenescribe data model and the pure
// operations over a project's ordered topic collection.
package project

import "time"

// Status is the project-level lifecycle status. It is always derived from
// topic-level progress, never set independently (except at creation).
type Status string

const (
	StatusCreated          Status = "created"
	StatusStructured       Status = "structured"
	StatusScriptsReady     Status = "scripts_ready"
	StatusVideosGenerating Status = "videos_generating"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

// TaskStatus tracks per-topic script and video progress.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskGenerating TaskStatus = "generating"
	TaskAssembling TaskStatus = "assembling"
	TaskReady      TaskStatus = "ready"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transitions occur for this status.
func (s TaskStatus) Terminal() bool {
	return s == TaskReady || s == TaskFailed
}

// InputType identifies the provenance of the source content.
type InputType string

const (
	InputURL  InputType = "url"
	InputText InputType = "text"
)

type (
	Platform    string
	AspectRatio string
	Tone        string
	Style       string
)

const (
	PlatformYouTube Platform = "youtube"
	PlatformTikTok  Platform = "tiktok"
	PlatformGeneric Platform = "generic"

	RatioLandscape AspectRatio = "16:9"
	RatioPortrait  AspectRatio = "9:16"
	RatioSquare    AspectRatio = "1:1"
)

// TopicOverride carries per-topic generation overrides keyed by topic ID
// in the project config.
type TopicOverride struct {
	Tone            Tone `json:"tone,omitempty"`
	DurationSeconds int  `json:"durationSeconds,omitempty"`
}

// GenerationConfig holds project-wide generation settings.
type GenerationConfig struct {
	Platform              Platform                 `json:"platform"`
	AspectRatio           AspectRatio              `json:"aspectRatio"`
	Tone                  Tone                     `json:"tone"`
	Style                 Style                    `json:"style"`
	TargetDurationSeconds int                      `json:"targetDurationSeconds"`
	TopicOverrides        map[string]TopicOverride `json:"topicOverrides,omitempty"`
}

// DefaultConfig returns the baseline generation config.
func DefaultConfig() GenerationConfig {
	return GenerationConfig{
		Platform:              PlatformYouTube,
		AspectRatio:           RatioLandscape,
		Tone:                  "educational",
		Style:                 "semi-abstract",
		TargetDurationSeconds: 60,
	}
}

// SourceSpan is a half-open character interval into the project's cleaned
// source text.
type SourceSpan struct {
	StartChar int `json:"startChar"`
	EndChar   int `json:"endChar"`
}

// Scene is one shot/beat within a topic's script.
type Scene struct {
	ID                       string   `json:"id"`
	Order                    int      `json:"order"`
	SceneSummary             string   `json:"sceneSummary"`
	VisualDescription        string   `json:"visualDescription"`
	Actions                  []string `json:"actions"`
	Props                    []string `json:"props"`
	OverlayTextSuggestions   []string `json:"overlayTextSuggestions"`
	CameraStyle              string   `json:"cameraStyle,omitempty"`
	EstimatedDurationSeconds float64  `json:"estimatedDurationSeconds,omitempty"`
}

// Media holds the rendered assets for a topic. All URLs are independently
// optional, but a ready video status requires VideoURL.
type Media struct {
	VideoURL     string `json:"videoUrl,omitempty"`
	AudioURL     string `json:"audioUrl,omitempty"`
	SubtitlesURL string `json:"subtitlesUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Topic is a segment of source content scoped to become one short video.
// Order values are 1-based and kept dense and unique within a project.
type Topic struct {
	ID              string      `json:"id"`
	Order           int         `json:"order"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	KeyPoints       []string    `json:"keyPoints"`
	Enabled         bool        `json:"enabled"`
	SourceSpan      *SourceSpan `json:"sourceSpan,omitempty"`
	Narration       string      `json:"narration,omitempty"`
	Scenes          []Scene     `json:"scenes,omitempty"`
	ToneOverride    Tone        `json:"toneOverride,omitempty"`
	DurationSeconds int         `json:"durationSeconds,omitempty"`
	ScriptStatus    TaskStatus  `json:"scriptStatus,omitempty"`
	VideoStatus     TaskStatus  `json:"videoStatus,omitempty"`
	Media           *Media      `json:"media,omitempty"`
}

// EffectiveTone resolves the tone for this topic: topic-level override,
// then config-level per-topic override, then the project tone.
func (t Topic) EffectiveTone(cfg GenerationConfig) Tone {
	if t.ToneOverride != "" {
		return t.ToneOverride
	}
	if ov, ok := cfg.TopicOverrides[t.ID]; ok && ov.Tone != "" {
		return ov.Tone
	}
	return cfg.Tone
}

// EffectiveDurationSeconds resolves the target duration for this topic.
func (t Topic) EffectiveDurationSeconds(cfg GenerationConfig) int {
	if t.DurationSeconds > 0 {
		return t.DurationSeconds
	}
	if ov, ok := cfg.TopicOverrides[t.ID]; ok && ov.DurationSeconds > 0 {
		return ov.DurationSeconds
	}
	return cfg.TargetDurationSeconds
}

// Project is the root aggregate. It exclusively owns its topics; topics
// exclusively own their scenes.
type Project struct {
	ID          string           `json:"id"`
	InputType   InputType        `json:"inputType"`
	URL         string           `json:"url,omitempty"`
	RawText     string           `json:"rawText,omitempty"`
	CleanedText string           `json:"cleanedText,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Topics      []Topic          `json:"topics"`
	Config      GenerationConfig `json:"config"`
	Status      Status           `json:"status"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Topic returns the topic with the given ID, or nil.
func (p *Project) Topic(id string) *Topic {
	for i := range p.Topics {
		if p.Topics[i].ID == id {
			return &p.Topics[i]
		}
	}
	return nil
}
