package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/notedrop/notes-api/internal/core/ports"
)

// NoteHandler handles the authenticated note-management flow.
type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

// Create mints a code for an empty scratch note.
//
// @Summary      Create an empty scratch note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createNoteRequest  false  "Optional owner override"
// @Success      201   {object}  createNoteResponse
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	var req createNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	// Default ownership to whoever is acting when no owner is named.
	userID := req.UserID
	if userID == "" {
		userID = ctxUserID(c)
	}

	view, err := h.service.CreateScratch(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createNoteResponse{Note: toNoteResponse(*view)})
}

// List returns all notes, optionally scoped to an owner.
//
// @Summary      List notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  query     string  false  "Scope the listing to this owner"
// @Success      200      {object}  listNotesResponse
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Router       /v1/notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context(), c.QueryParam("user_id"))
	if err != nil {
		return err
	}

	notes := make([]noteResponse, 0, len(views))
	for _, v := range views {
		notes = append(notes, toNoteResponse(v))
	}
	return c.JSON(http.StatusOK, listNotesResponse{Notes: notes})
}

// Update replaces a note's content, rewrapped at the editor column limit.
//
// @Summary      Update note content
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Note id"
// @Param        body  body      updateNoteRequest  true  "New content"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/notes/{id} [patch]
func (h *NoteHandler) Update(c echo.Context) error {
	var req updateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Content == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "content (string) is required")
	}

	if err := h.service.UpdateContent(c.Request().Context(), c.Param("id"), *req.Content); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// Delete removes a note permanently.
//
// @Summary      Delete a note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Note id"
// @Success      200 {object}  successResponse
// @Failure      400 {object}  map[string]string
// @Failure      404 {object}  map[string]string
// @Router       /v1/notes/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
