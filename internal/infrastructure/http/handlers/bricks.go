package handlers

import (
	"net/http"

	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/infrastructure/http/dto"
	"github.com/labstack/echo/v4"
)

// BrickHandler exposes the registered brick catalog (spec.md §6 "brick
// registry API") so authoring clients can discover what's available.
type BrickHandler struct {
	registry *brick.Registry
}

// NewBrickHandler creates a new BrickHandler.
func NewBrickHandler(registry *brick.Registry) *BrickHandler {
	return &BrickHandler{registry: registry}
}

// List handles GET /bricks.
func (h *BrickHandler) List(c echo.Context) error {
	all := h.registry.All()
	out := make([]dto.BrickDescriptor, 0, len(all))
	for _, b := range all {
		out = append(out, dto.ToBrickDescriptor(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /bricks/:id.
func (h *BrickHandler) Get(c echo.Context) error {
	b, err := h.registry.Lookup(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBrickDescriptor(b))
}
