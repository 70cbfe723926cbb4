package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dealforge-calc/internal/domain/analysis"
	"dealforge-calc/internal/domain/calculator"
	"dealforge-calc/internal/domain/rental"
	ucAnalysis "dealforge-calc/internal/usecase/analysis"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const defaultListLimit = 20

type AnalysisHandler struct {
	uc  *ucAnalysis.Usecase
	log *zap.Logger
}

func NewAnalysisHandler(uc *ucAnalysis.Usecase, log *zap.Logger) *AnalysisHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisHandler{uc: uc, log: log}
}

type createAnalysisReq struct {
	Name     string          `json:"name"      validate:"required,max=120"`
	DealType string          `json:"deal_type" validate:"required,dealtype"`
	Inputs   json.RawMessage `json:"inputs"    validate:"required"`
}

type getAnalysisReq struct {
	AnalysisID string `param:"analysis_id" validate:"required,hex32"`
}

type listAnalysesReq struct {
	DealType string `query:"deal_type" validate:"omitempty,dealtype"`
	Limit    int    `query:"limit"     validate:"gte=0,lte=100"`
}

type listAnalysesResp struct {
	Items []ucAnalysis.AnalysisDTO `json:"items"`
}

func (h *AnalysisHandler) CreateAnalysis(c echo.Context) error {
	var req createAnalysisReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Create(c.Request().Context(), ucAnalysis.CreateAnalysisInput(req))
	if err != nil {
		return h.createError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// createError maps usecase failures onto statuses. Input problems are the
// caller's (400/422); anything else is ours.
func (h *AnalysisHandler) createError(c echo.Context, err error) error {
	var de *calculator.DecodeError
	var ve *rental.ValidationError
	switch {
	case errors.Is(err, calculator.ErrUnsupportedDealType):
		return unsupportedDealType(c, err)
	case errors.As(err, &de):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid inputs",
			Details: []FieldError{{Field: "inputs", Message: de.Message}},
		})
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "inputs." + ve.Field, Message: ve.Reason}},
		})
	}
	h.log.Error("create analysis", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func (h *AnalysisHandler) GetAnalysis(c echo.Context) error {
	var req getAnalysisReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid analysis_id",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Get(c.Request().Context(), req.AnalysisID)
	if errors.Is(err, analysis.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "analysis not found"})
	}
	if err != nil {
		h.log.Error("get analysis", zap.String("analysis_id", req.AnalysisID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AnalysisHandler) ListAnalyses(c echo.Context) error {
	var req listAnalysesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid query",
			Details: ToFieldErrors(err),
		})
	}
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}

	items, err := h.uc.List(c.Request().Context(), req.DealType, req.Limit)
	if err != nil {
		h.log.Error("list analyses", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, listAnalysesResp{Items: items})
}
