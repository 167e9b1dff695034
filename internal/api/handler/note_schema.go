package handler

import (
	"time"

	"github.com/notedrop/notes-api/internal/core/ports"
)

// --- Request / Response types ---
//
// Transport-owned types, intentionally separate from ports/domain so the JSON
// contract is not coupled to internal service changes.

type shareRequest struct {
	Content string `json:"content" validate:"required"`
	UserID  string `json:"user_id,omitempty"`
}

type shareResponse struct {
	Code string `json:"code"`
	ID   string `json:"id"`
}

type retrieveResponse struct {
	Content string `json:"content"`
	Code    string `json:"code"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Code      string    `json:"code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

type createNoteRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type createNoteResponse struct {
	Note noteResponse `json:"note"`
}

type listNotesResponse struct {
	Notes []noteResponse `json:"notes"`
}

// updateNoteRequest uses a pointer so a missing content field is
// distinguishable from an explicitly empty string, which is a valid edit.
type updateNoteRequest struct {
	Content *string `json:"content"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func toNoteResponse(v ports.NoteView) noteResponse {
	return noteResponse{
		ID:        v.ID,
		Content:   v.Content,
		Code:      v.Code,
		Active:    v.Active,
		CreatedAt: v.CreatedAt,
		ExpiresAt: v.ExpiresAt,
		CreatedBy: v.CreatedBy,
	}
}
