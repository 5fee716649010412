// Package videogen abstracts the video-generation provider that renders
// one clip per topic via asynchronous jobs.
package videogen

import (
	"context"

	"github.com/scenescribe/scenescribe/internal/project"
)

// State classifies a polled job.
type State string

const (
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// SubmitRequest describes one render job.
type SubmitRequest struct {
	Prompt          string
	AspectRatio     project.AspectRatio
	DurationSeconds int
}

// PollResult is the canonical view of a provider's job status response.
// Media is populated only when State is StateSucceeded; translating the
// provider's payload variants into this single shape is the adapter's job.
type PollResult struct {
	State  State
	Media  project.Media
	Detail string
}

// Generator submits render jobs and reports their progress. Submit returns
// an opaque job ID to poll with.
type Generator interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	Poll(ctx context.Context, jobID string) (*PollResult, error)
}
