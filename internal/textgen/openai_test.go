package textgen

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

func chatReply(t *testing.T, payload any) string {
	t.Helper()
	content, err := json.Marshal(payload)
	require.NoError(t, err)
	reply, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": string(content)}},
		},
	})
	require.NoError(t, err)
	return string(reply)
}

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *OpenAIGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIGenerator("test-key", zerolog.Nop(),
		WithBaseURL(srv.URL),
		WithRetry(retry.Config{MaxAttempts: 1}),
	)
}

func TestOpenAI_Segment(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		w.Write([]byte(chatReply(t, map[string]any{
			"summary": "A summary.",
			"topics": []map[string]any{
				{"title": "First", "description": "d1", "keyPoints": []string{"a"}, "sourceSpan": map[string]int{"startChar": 0, "endChar": 100}},
				{"id": "custom", "title": "Second", "enabled": false},
			},
		})))
	})

	res, err := g.Segment(context.Background(), "source text", project.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "A summary.", res.Summary)
	require.Len(t, res.Topics, 2)

	assert.Equal(t, "t1", res.Topics[0].ID) // generated id
	assert.Equal(t, 1, res.Topics[0].Order)
	assert.True(t, res.Topics[0].Enabled)
	require.NotNil(t, res.Topics[0].SourceSpan)
	assert.Equal(t, 100, res.Topics[0].SourceSpan.EndChar)
	assert.Equal(t, project.TaskPending, res.Topics[0].ScriptStatus)

	assert.Equal(t, "custom", res.Topics[1].ID)
	assert.Equal(t, 2, res.Topics[1].Order)
	assert.False(t, res.Topics[1].Enabled)
}

func TestOpenAI_Script_FieldFallbacks(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		// provider variant: "script" instead of "narration", "title" and
		// "description" instead of the scene field names
		w.Write([]byte(chatReply(t, map[string]any{
			"script": "narration via fallback",
			"scenes": []map[string]any{
				{"title": "opening", "description": "wide shot", "actions": []string{"pan"}},
			},
		})))
	})

	topic := project.Topic{ID: "t7", Title: "Topic"}
	res, err := g.Script(context.Background(), topic, "slice", project.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "t7", res.TopicID)
	assert.Equal(t, "narration via fallback", res.Narration)
	require.Len(t, res.Scenes, 1)
	assert.Equal(t, "t7-s1", res.Scenes[0].ID)
	assert.Equal(t, 1, res.Scenes[0].Order)
	assert.Equal(t, "opening", res.Scenes[0].SceneSummary)
	assert.Equal(t, "wide shot", res.Scenes[0].VisualDescription)
	assert.Equal(t, []string{"pan"}, res.Scenes[0].Actions)
	assert.Equal(t, []string{}, res.Scenes[0].Props)
}

func TestOpenAI_APIError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})

	_, err := g.Segment(context.Background(), "text", project.DefaultConfig())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenAI_Segment_WindowBound(t *testing.T) {
	var sentLen int
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var user map[string]any
		require.NoError(t, json.Unmarshal([]byte(req.Messages[1].Content), &user))
		sentLen = len(user["content"].(string))
		w.Write([]byte(chatReply(t, map[string]any{"summary": "s", "topics": []any{}})))
	})

	long := make([]byte, segmentWindow*2)
	for i := range long {
		long[i] = 'x'
	}
	_, err := g.Segment(context.Background(), string(long), project.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, segmentWindow, sentLen)
}

func TestMockGenerator(t *testing.T) {
	m := NewMockGenerator()

	res, err := m.Segment(context.Background(), "anything", project.DefaultConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Summary)
	require.Len(t, res.Topics, 3)
	assert.Equal(t, 1, res.Topics[0].Order)
	assert.True(t, res.Topics[0].Enabled)

	script, err := m.Script(context.Background(), res.Topics[0], "slice", project.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, res.Topics[0].ID, script.TopicID)
	assert.NotEmpty(t, script.Narration)
	assert.Len(t, script.Scenes, 2)
}
