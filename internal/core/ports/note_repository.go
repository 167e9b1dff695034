package ports

import (
	"context"
	"time"

	"github.com/notedrop/notes-api/internal/core/domain"
)

// NoteRepository defines persistence operations for notes.
type NoteRepository interface {
	// Create inserts a new note and fills in its assigned ID. A collision on
	// the unique share code is reported as domain.ErrCodeTaken so the caller
	// can regenerate and retry.
	Create(ctx context.Context, n *domain.Note) error

	// FindByCode retrieves a note by exact share-code match.
	FindByCode(ctx context.Context, code string) (*domain.Note, error)

	// FindByID retrieves a note by its internal id.
	FindByID(ctx context.Context, id string) (*domain.Note, error)

	// List returns all notes, newest first. When createdBy is non-empty the
	// result is scoped to that owner.
	List(ctx context.Context, createdBy string) ([]*domain.Note, error)

	// UpdateContent replaces the note's content in place. Code and timestamps
	// are untouched.
	UpdateContent(ctx context.Context, id string, content string) error

	// Delete removes the note permanently. No tombstone is left behind.
	Delete(ctx context.Context, id string) error

	// Deactivate flips active to false for the note with the given code.
	// Applying it to an already-inactive note is a no-op.
	Deactivate(ctx context.Context, code string) error

	// DeactivateExpired flips active to false for every active note whose
	// lifetime elapsed before now, returning how many were touched.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// NoteCache is an optional read-through cache on the retrieve path. A cached
// entry's TTL is always bounded by the note's remaining lifetime, so a hit can
// never serve an expired note.
type NoteCache interface {
	Get(ctx context.Context, code string) (content string, ok bool, err error)
	Set(ctx context.Context, code string, content string, ttl time.Duration) error
	Invalidate(ctx context.Context, code string) error
}

// CodeGenerator mints candidate share codes. Implementations must be safe for
// concurrent use by a single service instance.
type CodeGenerator interface {
	Generate() string
}
