package ports

import (
	"context"
	"time"
)

// ShareNoteInput carries the public share request. UserID is optional; a
// malformed value is ignored rather than rejected, matching the anonymous
// nature of the flow.
type ShareNoteInput struct {
	Content string
	UserID  string
}

// ShareResult is returned after minting a code for a shared note.
type ShareResult struct {
	ID   string
	Code string
}

// RetrieveResult is the projection served to whoever presents a valid code.
// Nothing beyond content and code crosses this boundary.
type RetrieveResult struct {
	Content string
	Code    string
}

// NoteView is the full note projection used by the note-management flow.
type NoteView struct {
	ID        string
	Content   string
	Code      string
	Active    bool
	CreatedAt time.Time
	ExpiresAt time.Time
	CreatedBy string
}

// NoteService defines the share-code lifecycle and note-management use cases.
type NoteService interface {
	// Share persists content under a freshly minted unique code.
	Share(ctx context.Context, input ShareNoteInput) (*ShareResult, error)

	// Retrieve resolves a code back to content, honoring expiry lazily:
	// the first read observed after the lifetime elapsed deactivates the
	// note and reports domain.ErrNoteExpired; later reads report
	// domain.ErrNoteGone.
	Retrieve(ctx context.Context, code string) (*RetrieveResult, error)

	// CreateScratch mints a code for an empty note, for the editing flow.
	CreateScratch(ctx context.Context, userID string) (*NoteView, error)

	// List returns all notes, optionally scoped to an owner.
	List(ctx context.Context, userID string) ([]NoteView, error)

	// UpdateContent rewraps and replaces the note's content.
	UpdateContent(ctx context.Context, id string, content string) error

	// Delete removes the note permanently.
	Delete(ctx context.Context, id string) error

	// ReapExpired deactivates every expired-but-active note. The read path
	// already does this lazily per note; reaping makes the policy explicit
	// and keeps storage honest for notes nobody reads again.
	ReapExpired(ctx context.Context) (int64, error)
}
