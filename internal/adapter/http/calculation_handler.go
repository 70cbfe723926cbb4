package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"dealforge-calc/internal/adapter/binding"
	"dealforge-calc/internal/domain/calculator"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxBatchItems = 500

type CalculationHandler struct {
	adapter *binding.Adapter
	log     *zap.Logger
}

func NewCalculationHandler(a *binding.Adapter, log *zap.Logger) *CalculationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CalculationHandler{adapter: a, log: log}
}

type batchResponse struct {
	Items []binding.Envelope `json:"items"`
}

// Calculate evaluates the raw request body as one payload and answers with
// the envelope. The status mirrors the envelope: 200, 400 (decode) or 422
// (validation).
func (h *CalculationHandler) Calculate(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dealType := c.Param("deal_type")
	env, err := h.adapter.Handle(dealType, body)
	if err != nil {
		return unsupportedDealType(c, err)
	}
	return c.JSON(envelopeStatus(env), env)
}

// CalculateBatch takes a JSON array of payloads. Per-item failures stay in
// their envelopes, so the response is 200 whenever the array itself parses.
func (h *CalculationHandler) CalculateBatch(c echo.Context) error {
	var items []json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&items); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "body must be a JSON array of payloads"})
	}
	if len(items) > maxBatchItems {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "batch exceeds " + strconv.Itoa(maxBatchItems) + " items",
		})
	}
	payloads := make([][]byte, len(items))
	for i, it := range items {
		payloads[i] = it
	}

	dealType := c.Param("deal_type")
	envs, err := h.adapter.HandleBatch(c.Request().Context(), dealType, payloads)
	switch {
	case errors.Is(err, calculator.ErrUnsupportedDealType):
		return unsupportedDealType(c, err)
	case err != nil:
		h.log.Warn("batch aborted", zap.String("deal_type", dealType), zap.Int("items", len(payloads)), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "batch aborted"})
	}
	if envs == nil {
		envs = []binding.Envelope{}
	}
	return c.JSON(http.StatusOK, batchResponse{Items: envs})
}

func envelopeStatus(env binding.Envelope) int {
	if env.OK() {
		return http.StatusOK
	}
	if env.Error.Kind == binding.KindDecode {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func unsupportedDealType(c echo.Context, err error) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
}
