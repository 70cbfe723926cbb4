package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{ dealTypes []string }

func NewHandler(dealTypes []string) *Handler { return &Handler{dealTypes: dealTypes} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339Nano),
		"deal_types": h.dealTypes,
	})
}
