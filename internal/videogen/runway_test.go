package videogen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenescribe/scenescribe/internal/project"
	"github.com/scenescribe/scenescribe/internal/retry"
)

func TestMapAspectRatio(t *testing.T) {
	assert.Equal(t, "720:1280", MapAspectRatio(project.RatioPortrait))
	assert.Equal(t, "1920:1080", MapAspectRatio(project.RatioLandscape))
	// unrecognized values fall back to landscape
	assert.Equal(t, "1920:1080", MapAspectRatio(project.RatioSquare))
	assert.Equal(t, "1920:1080", MapAspectRatio("4:3"))
}

func TestMapDurationSeconds(t *testing.T) {
	tests := []struct {
		seconds int
		want    int
	}{
		{3, 4},
		{5, 4}, // boundary inclusive
		{6, 6},
		{7, 6}, // boundary inclusive
		{8, 8},
		{60, 8},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MapDurationSeconds(tc.seconds), "seconds=%d", tc.seconds)
	}
}

func newTestRunway(t *testing.T, handler http.HandlerFunc) *RunwayGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRunwayGenerator("test-key", zerolog.Nop(),
		RunwayWithBaseURL(srv.URL),
		RunwayWithRetry(retry.Config{MaxAttempts: 1}),
	)
}

func TestRunway_Submit(t *testing.T) {
	g := newTestRunway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text_to_video", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-11-06", r.Header.Get("X-Runway-Version"))

		var req runwaySubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "veo3.1", req.Model)
		assert.Equal(t, "720:1280", req.Ratio)
		assert.Equal(t, 6, req.Duration)
		assert.False(t, req.Audio)

		w.Write([]byte(`{"id":"task-123"}`))
	})

	jobID, err := g.Submit(context.Background(), SubmitRequest{
		Prompt:          "a video",
		AspectRatio:     project.RatioPortrait,
		DurationSeconds: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "task-123", jobID)
}

func TestRunway_Submit_MissingID(t *testing.T) {
	g := newTestRunway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := g.Submit(context.Background(), SubmitRequest{Prompt: "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing job id")
}

func TestRunway_Submit_HTTPError(t *testing.T) {
	g := newTestRunway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad prompt"}`))
	})
	_, err := g.Submit(context.Background(), SubmitRequest{Prompt: "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestRunway_Poll_States(t *testing.T) {
	responses := map[string]string{
		"running":  `{"id":"j","status":"RUNNING"}`,
		"failed":   `{"id":"j","status":"failed","failure":"safety filter"}`,
		"success":  `{"id":"j","status":"succeeded","video":{"url":"https://cdn/v.mp4"}}`,
		"implicit": `{"id":"j","asset_url":"https://cdn/a.mp4"}`,
	}
	var current string
	g := newTestRunway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks/j", r.URL.Path)
		w.Write([]byte(responses[current]))
	})

	current = "running"
	res, err := g.Poll(context.Background(), "j")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, res.State)

	current = "failed"
	res, err = g.Poll(context.Background(), "j")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, "safety filter", res.Detail)

	current = "success"
	res, err = g.Poll(context.Background(), "j")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, "https://cdn/v.mp4", res.Media.VideoURL)

	// presence of an asset reference is terminal success even without a
	// recognizable status flag
	current = "implicit"
	res, err = g.Poll(context.Background(), "j")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, "https://cdn/a.mp4", res.Media.VideoURL)
}

func TestRunway_Poll_TransportError(t *testing.T) {
	g := newTestRunway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := g.Poll(context.Background(), "j")
	assert.Error(t, err)
}

func TestRunwayTask_MediaFallbackChain(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantVideo string
		wantThumb string
	}{
		{"video.url", `{"video":{"url":"v1"},"asset_url":"ignored"}`, "v1", ""},
		{"assets.video", `{"assets":{"video":"v2","thumbnail":"th"}}`, "v2", "th"},
		{"output[0].url", `{"output":[{"url":"v3"}]}`, "v3", ""},
		{"asset_url", `{"asset_url":"v4","thumbnail_url":"t4"}`, "v4", "t4"},
		{"video_url", `{"video_url":"v5"}`, "v5", ""},
		{"none", `{"status":"succeeded"}`, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var task runwayTask
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &task))
			m := task.media()
			assert.Equal(t, tc.wantVideo, m.VideoURL)
			assert.Equal(t, tc.wantThumb, m.ThumbnailURL)
		})
	}
}

func TestMockGenerator_SubmitPoll(t *testing.T) {
	m := NewMockGenerator("")

	id, err := m.Submit(context.Background(), SubmitRequest{Prompt: "p"})
	require.NoError(t, err)

	res, err := m.Poll(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, res.State)
	assert.NotEmpty(t, res.Media.VideoURL)
	assert.NotEmpty(t, res.Media.ThumbnailURL)

	res, err = m.Poll(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, res.State)
}
