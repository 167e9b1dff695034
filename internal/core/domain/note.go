package domain

import (
	"errors"
	"time"
)

// NoteTTL is the fixed lifetime of a note. It is set at creation and is never
// extended by access.
const NoteTTL = 24 * time.Hour

var ErrNoteNotFound = errors.New("note not found")
var ErrNoteExpired = errors.New("note has expired and is no longer available")
var ErrNoteGone = errors.New("note is no longer available")
var ErrInvalidNoteID = errors.New("invalid note id")
var ErrInvalidUserID = errors.New("invalid user id")
var ErrCodeTaken = errors.New("share code already taken")
var ErrCodeSpaceExhausted = errors.New("failed to generate unique code")

// Note is the persisted text record, keyed internally by ID and publicly by
// its share code.
type Note struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Content   string    `json:"content" bson:"content"`
	Code      string    `json:"code" bson:"code"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
	CreatedBy string    `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
}

// Expired reports whether the note's lifetime has elapsed at the given instant.
// A note exactly NoteTTL old is not yet expired.
func (n *Note) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) > NoteTTL
}

// Readable reports whether the sharing flow may serve the note at the given
// instant. Active is expected to agree with the expiry clock but can lag; the
// read path corrects it lazily.
func (n *Note) Readable(now time.Time) bool {
	return n.Active && !n.Expired(now)
}
