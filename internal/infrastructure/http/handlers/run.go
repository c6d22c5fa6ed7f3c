package handlers

import (
	"net/http"
	"strconv"

	"github.com/duragraph/duragraph/internal/application/service"
	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/infrastructure/http/dto"
	"github.com/labstack/echo/v4"
)

// RunHandler handles run-lifecycle HTTP requests: starting, stepping,
// inspecting, and cancelling one engine invocation over a stored graph.
type RunHandler struct {
	runs *service.RunService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runs *service.RunService) *RunHandler {
	return &RunHandler{runs: runs}
}

// Create handles POST /graphs/:graph_id/runs.
func (h *RunHandler) Create(c echo.Context) error {
	graphID := c.Param("graph_id")

	var req dto.CreateRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}

	mode := execution.ModeNormal
	if req.Mode == string(execution.ModeStepped) {
		mode = execution.ModeStepped
	}

	r, err := h.runs.Start(c.Request().Context(), graphID, mode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToRunResponse(r))
}

// Get handles GET /runs/:id.
func (h *RunHandler) Get(c echo.Context) error {
	r, err := h.runs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToRunResponse(r))
}

// List handles GET /graphs/:graph_id/runs.
func (h *RunHandler) List(c echo.Context) error {
	graphID := c.Param("graph_id")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	runs, err := h.runs.List(c.Request().Context(), graphID, limit, offset)
	if err != nil {
		return err
	}

	summaries := make([]dto.RunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, dto.ToRunSummary(r))
	}
	return c.JSON(http.StatusOK, summaries)
}

// Step handles POST /runs/:id/step — advances a stepped-mode run by one
// engine tick.
func (h *RunHandler) Step(c echo.Context) error {
	id, done, err := h.runs.Step(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"node_id": id,
		"done":    done,
	})
}

// Cancel handles POST /runs/:id/cancel.
func (h *RunHandler) Cancel(c echo.Context) error {
	if err := h.runs.Cancel(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	r, err := h.runs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToRunResponse(r))
}
