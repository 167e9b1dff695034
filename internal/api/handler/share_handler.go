package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/notedrop/notes-api/internal/core/ports"
)

// ShareHandler handles the public share and retrieve flows. Knowing a code
// grants read access to content only; no internal ids, timestamps, or owner
// ever cross this boundary.
type ShareHandler struct {
	service ports.NoteService
}

func NewShareHandler(service ports.NoteService) *ShareHandler {
	return &ShareHandler{service: service}
}

// Share creates a note and mints its share code.
//
// @Summary      Share a note
// @Tags         share
// @Accept       json
// @Produce      json
// @Param        body  body      shareRequest  true  "Note content and optional owner"
// @Success      201   {object}  shareResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /share [post]
func (h *ShareHandler) Share(c echo.Context) error {
	var req shareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Share(c.Request().Context(), ports.ShareNoteInput{
		Content: req.Content,
		UserID:  req.UserID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, shareResponse{Code: result.Code, ID: result.ID})
}

// Retrieve resolves a share code back to note content.
//
// @Summary      Retrieve a shared note by code
// @Tags         share
// @Produce      json
// @Param        code  query     string  true  "Share code (XXX-XXX)"
// @Success      200   {object}  retrieveResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Router       /retrieve [get]
func (h *ShareHandler) Retrieve(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	result, err := h.service.Retrieve(c.Request().Context(), code)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, retrieveResponse{Content: result.Content, Code: result.Code})
}
