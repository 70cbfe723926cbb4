package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"dealforge-calc/internal/domain/analysis"
	"dealforge-calc/internal/domain/calculator"
	"dealforge-calc/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	repo     analysis.Repository
	registry *calculator.Registry
	log      *zap.Logger
}

func NewUsecase(r analysis.Repository, reg *calculator.Registry, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, registry: reg, log: log}
}

// Create runs the calculation for in.DealType and saves inputs and results
// together. Input failures come back as *calculator.DecodeError or the
// family's validation error; nothing is persisted in that case.
func (u *Usecase) Create(ctx context.Context, in CreateAnalysisInput) (*AnalysisDTO, error) {
	eval, err := u.registry.Lookup(in.DealType)
	if err != nil {
		return nil, err
	}
	out := eval(in.Inputs)
	if out.Err != nil {
		u.log.Debug("analysis rejected",
			zap.String("deal_type", in.DealType),
			zap.Error(out.Err))
		return nil, out.Err
	}

	// Store the decoded form so the saved inputs are canonical.
	inputs, err := json.Marshal(out.Inputs)
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}
	results, err := json.Marshal(out.Result)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}

	a := &analysis.Analysis{
		AnalysisID: id.NewID32(),
		DealType:   in.DealType,
		Name:       in.Name,
		Inputs:     string(inputs),
		Results:    string(results),
	}
	if err := u.repo.Create(ctx, a); err != nil {
		u.log.Error("save analysis failed", zap.String("deal_type", in.DealType), zap.Error(err))
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	u.log.Info("analysis saved",
		zap.String("analysis_id", a.AnalysisID),
		zap.String("deal_type", a.DealType))
	return toDTO(a), nil
}

func (u *Usecase) Get(ctx context.Context, analysisID string) (*AnalysisDTO, error) {
	a, err := u.repo.GetByAnalysisID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

func (u *Usecase) List(ctx context.Context, dealType string, limit int) ([]AnalysisDTO, error) {
	rows, err := u.repo.ListByDealType(ctx, dealType, limit)
	if err != nil {
		return nil, err
	}
	out := make([]AnalysisDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

func toDTO(a *analysis.Analysis) *AnalysisDTO {
	return &AnalysisDTO{
		AnalysisID: a.AnalysisID,
		Name:       a.Name,
		DealType:   a.DealType,
		Inputs:     json.RawMessage(a.Inputs),
		Results:    json.RawMessage(a.Results),
		CreatedAt:  a.CreatedAt,
	}
}
