package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dealforge-calc/internal/adapter/binding"
	domain "dealforge-calc/internal/domain/analysis"
	"dealforge-calc/internal/testutil/analysismock"
	uc "dealforge-calc/internal/usecase/analysis"

	"github.com/labstack/echo/v4"
)

func newAnalysisHandler(repo *analysismock.Repo) *AnalysisHandler {
	return NewAnalysisHandler(uc.NewUsecase(repo, binding.DefaultRegistry(), nil), nil)
}

func postAnalysis(t *testing.T, h *AnalysisHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodPost, "/v1/analyses", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateAnalysis(c); err != nil {
		t.Fatalf("CreateAnalysis error: %v", err)
	}
	return rec
}

func TestCreateAnalysis_Success(t *testing.T) {
	var saved *domain.Analysis
	h := newAnalysisHandler(&analysismock.Repo{
		CreateFn: func(ctx context.Context, a *domain.Analysis) error {
			a.CreatedAt = time.Now().UTC()
			saved = a
			return nil
		},
	})

	rec := postAnalysis(t, h, map[string]any{
		"name":      "Maple St duplex",
		"deal_type": "rental",
		"inputs":    json.RawMessage(rentalPayload),
	})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	var dto uc.AnalysisDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if saved == nil || dto.AnalysisID != saved.AnalysisID {
		t.Fatalf("dto/saved mismatch: dto=%+v saved=%+v", dto, saved)
	}
	var res map[string]float64
	if err := json.Unmarshal(dto.Results, &res); err != nil {
		t.Fatalf("results json: %v", err)
	}
	if res["noi"] != 14400 {
		t.Fatalf("noi = %v, want 14400", res["noi"])
	}
}

func TestCreateAnalysis_BindError(t *testing.T) {
	h := newAnalysisHandler(&analysismock.Repo{})
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodPost, "/v1/analyses", strings.NewReader(`{"name":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.CreateAnalysis(e.NewContext(req, rec)); err != nil {
		t.Fatalf("CreateAnalysis error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateAnalysis_RequestValidation(t *testing.T) {
	h := newAnalysisHandler(&analysismock.Repo{}) // won't be called

	rec := postAnalysis(t, h, map[string]any{
		"name":      strings.Repeat("n", 121),
		"deal_type": "Rental!",
	})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !containsFieldMsg(er.Details, "name", "at most 120") {
		t.Fatalf("missing name detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "deal_type", "slug") {
		t.Fatalf("missing deal_type detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "inputs", "is required") {
		t.Fatalf("missing inputs detail: %+v", er.Details)
	}
}

func TestCreateAnalysis_InputErrors(t *testing.T) {
	h := newAnalysisHandler(&analysismock.Repo{
		CreateFn: func(ctx context.Context, a *domain.Analysis) error {
			t.Fatalf("nothing should be persisted")
			return nil
		},
	})

	// decode failure in inputs -> 400
	rec := postAnalysis(t, h, map[string]any{
		"name": "x", "deal_type": "rental", "inputs": map[string]any{"purchase_price": 1},
	})
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("decode: status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !containsFieldMsg(er.Details, "inputs", "missing required field") {
		t.Fatalf("decode detail missing: %+v", er.Details)
	}

	// rule violation in inputs -> 422
	bad := strings.Replace(rentalPayload, `"loan_term_years":30`, `"loan_term_years":101`, 1)
	rec = postAnalysis(t, h, map[string]any{
		"name": "x", "deal_type": "rental", "inputs": json.RawMessage(bad),
	})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("validation: status = %d, want 422", rec.Code)
	}
	er = ErrorResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !containsFieldMsg(er.Details, "inputs.loan_term_years", "must not exceed") {
		t.Fatalf("validation detail missing: %+v", er.Details)
	}

	// unknown deal type -> 404
	rec = postAnalysis(t, h, map[string]any{
		"name": "x", "deal_type": "syndication", "inputs": json.RawMessage(rentalPayload),
	})
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("deal type: status = %d, want 404", rec.Code)
	}
}

func TestCreateAnalysis_RepoFailureIs500(t *testing.T) {
	h := newAnalysisHandler(&analysismock.Repo{
		CreateFn: func(ctx context.Context, a *domain.Analysis) error { return errors.New("insert failed") },
	})
	rec := postAnalysis(t, h, map[string]any{
		"name": "x", "deal_type": "rental", "inputs": json.RawMessage(rentalPayload),
	})
	if rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "internal error" {
		t.Fatalf("error = %q, want %q", er.Error, "internal error")
	}
}

func getAnalysis(t *testing.T, h *AnalysisHandler, analysisID string) *httptest.ResponseRecorder {
	t.Helper()
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodGet, "/v1/analyses/"+analysisID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("analysis_id")
	c.SetParamValues(analysisID)
	if err := h.GetAnalysis(c); err != nil {
		t.Fatalf("GetAnalysis error: %v", err)
	}
	return rec
}

func TestGetAnalysis(t *testing.T) {
	known := strings.Repeat("a", 32)
	h := newAnalysisHandler(&analysismock.Repo{
		GetByAnalysisIDFn: func(ctx context.Context, analysisID string) (*domain.Analysis, error) {
			switch analysisID {
			case known:
				return &domain.Analysis{AnalysisID: known, Name: "n", DealType: "rental", Inputs: `{}`, Results: `{}`}, nil
			case strings.Repeat("e", 32):
				return nil, errors.New("connection reset")
			}
			return nil, domain.ErrNotFound
		},
	})

	rec := getAnalysis(t, h, known)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("known: status = %d, want 200", rec.Code)
	}
	var dto uc.AnalysisDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil || dto.AnalysisID != known {
		t.Fatalf("bad dto: %+v err=%v", dto, err)
	}

	if rec := getAnalysis(t, h, strings.Repeat("b", 32)); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("missing: status = %d, want 404", rec.Code)
	}
	if rec := getAnalysis(t, h, "NOT-HEX"); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("malformed id: status = %d, want 400", rec.Code)
	}
	if rec := getAnalysis(t, h, strings.Repeat("e", 32)); rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("repo failure: status = %d, want 500", rec.Code)
	}
}

func TestListAnalyses(t *testing.T) {
	var gotType string
	var gotLimit int
	h := newAnalysisHandler(&analysismock.Repo{
		ListByDealTypeFn: func(ctx context.Context, dealType string, limit int) ([]domain.Analysis, error) {
			gotType, gotLimit = dealType, limit
			return []domain.Analysis{{AnalysisID: strings.Repeat("a", 32), Inputs: `{}`, Results: `{}`}}, nil
		},
	})

	list := func(query string) *httptest.ResponseRecorder {
		e := newEchoWithValidator()
		req := httptest.NewRequest(stdhttp.MethodGet, "/v1/analyses"+query, nil)
		rec := httptest.NewRecorder()
		if err := h.ListAnalyses(e.NewContext(req, rec)); err != nil {
			t.Fatalf("ListAnalyses error: %v", err)
		}
		return rec
	}

	rec := list("?deal_type=rental&limit=5")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotType != "rental" || gotLimit != 5 {
		t.Fatalf("repo called with (%q, %d), want (rental, 5)", gotType, gotLimit)
	}
	var resp struct {
		Items []uc.AnalysisDTO `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp.Items) != 1 {
		t.Fatalf("bad list body: %s", rec.Body.String())
	}

	list("")
	if gotType != "" || gotLimit != defaultListLimit {
		t.Fatalf("defaults: repo called with (%q, %d)", gotType, gotLimit)
	}

	if rec := list("?limit=500"); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("limit too high: status = %d, want 400", rec.Code)
	}
	if rec := list("?limit=abc"); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("limit not a number: status = %d, want 400", rec.Code)
	}
}
