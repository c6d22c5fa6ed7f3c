package handlers

import (
	"net/http"
	"strconv"

	"github.com/duragraph/duragraph/internal/application/service"
	"github.com/duragraph/duragraph/internal/infrastructure/http/dto"
	"github.com/duragraph/duragraph/internal/pkg/errors"
	"github.com/labstack/echo/v4"
)

// GraphHandler handles graph-document CRUD requests.
type GraphHandler struct {
	graphs *service.GraphService
	runs   *service.RunService
}

// NewGraphHandler creates a new GraphHandler.
func NewGraphHandler(graphs *service.GraphService, runs *service.RunService) *GraphHandler {
	return &GraphHandler{graphs: graphs, runs: runs}
}

// Create handles POST /graphs.
func (h *GraphHandler) Create(c echo.Context) error {
	var req dto.CreateGraphRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}
	if req.Name == "" {
		return errors.InvalidInput("name", "must not be empty")
	}

	stored, err := h.graphs.Create(c.Request().Context(), req.Name, req.Description, req.Document)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToGraphResponse(stored))
}

// Get handles GET /graphs/:id.
func (h *GraphHandler) Get(c echo.Context) error {
	stored, err := h.graphs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToGraphResponse(stored))
}

// List handles GET /graphs.
func (h *GraphHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	stored, err := h.graphs.List(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	summaries := make([]dto.GraphSummary, 0, len(stored))
	for _, s := range stored {
		summaries = append(summaries, dto.ToGraphSummary(s))
	}
	return c.JSON(http.StatusOK, summaries)
}

// Update handles PUT /graphs/:id.
func (h *GraphHandler) Update(c echo.Context) error {
	var req dto.UpdateGraphRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}

	stored, err := h.graphs.Update(c.Request().Context(), c.Param("id"), req.Name, req.Description, req.Document)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToGraphResponse(stored))
}

// Delete handles DELETE /graphs/:id. Refuses to delete a graph with any
// non-terminal run still in flight.
func (h *GraphHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	active, err := h.runs.ActiveRuns(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return errors.InvalidState("has_active_runs", "delete").WithDetails("active_runs", len(active))
	}

	if err := h.graphs.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Validate handles POST /graphs/validate — checks a document against
// the brick registry without persisting it.
func (h *GraphHandler) Validate(c echo.Context) error {
	var req dto.CreateGraphRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}
	if err := h.graphs.Validate(req.Document); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"valid": true})
}
