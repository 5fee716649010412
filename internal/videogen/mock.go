package videogen

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/scenescribe/scenescribe/internal/project"
)

// MockGenerator simulates instant renders. Jobs succeed on the first poll
// with deterministic media URLs.
type MockGenerator struct {
	baseURL string
	seq     atomic.Int64
	mu      sync.Mutex
	jobs    map[string]bool
}

// NewMockGenerator constructs a mock video generator. baseURL prefixes the
// fake asset URLs.
func NewMockGenerator(baseURL string) *MockGenerator {
	if baseURL == "" {
		baseURL = "https://mock.scenescribe.local"
	}
	return &MockGenerator{baseURL: baseURL, jobs: make(map[string]bool)}
}

// Submit implements Generator.
func (m *MockGenerator) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	id := fmt.Sprintf("mock-job-%d", m.seq.Add(1))
	m.mu.Lock()
	m.jobs[id] = true
	m.mu.Unlock()
	return id, nil
}

// Poll implements Generator.
func (m *MockGenerator) Poll(ctx context.Context, jobID string) (*PollResult, error) {
	m.mu.Lock()
	known := m.jobs[jobID]
	m.mu.Unlock()
	if !known {
		return &PollResult{State: StateFailed, Detail: "unknown job"}, nil
	}
	return &PollResult{
		State: StateSucceeded,
		Media: project.Media{
			VideoURL:     fmt.Sprintf("%s/%s.mp4", m.baseURL, jobID),
			ThumbnailURL: fmt.Sprintf("%s/%s.png", m.baseURL, jobID),
			SubtitlesURL: fmt.Sprintf("%s/%s.vtt", m.baseURL, jobID),
		},
	}, nil
}
