// Package store persists project documents. Backends are injected behind
// the Store interface; mutation follows a read-full-state, compute-full-
// replacement, persist-full-state cycle with last-writer-wins at project
// granularity.
package store

import (
	"context"

	"github.com/scenescribe/scenescribe/internal/project"
)

// Store is the persistence contract for project documents. Absent projects
// surface as errors.ErrNotFound.
type Store interface {
	// LoadProject returns the project with the given ID.
	LoadProject(ctx context.Context, id string) (*project.Project, error)

	// SaveProject inserts a new project document.
	SaveProject(ctx context.Context, p *project.Project) error

	// ReplaceProject overwrites the full document for an existing project
	// and refreshes its updated timestamp.
	ReplaceProject(ctx context.Context, p *project.Project) error

	// Close releases backend resources.
	Close() error
}
