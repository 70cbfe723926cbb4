package analysismock

import (
	"context"
	"errors"

	domain "dealforge-calc/internal/domain/analysis"
)

// Ensure compile-time compliance
var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("analysismock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset functions return errUnimplemented.
type Repo struct {
	CreateFn          func(ctx context.Context, a *domain.Analysis) error
	GetByAnalysisIDFn func(ctx context.Context, analysisID string) (*domain.Analysis, error)
	ListByDealTypeFn  func(ctx context.Context, dealType string, limit int) ([]domain.Analysis, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Analysis) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return errUnimplemented
}

func (m *Repo) GetByAnalysisID(ctx context.Context, analysisID string) (*domain.Analysis, error) {
	if m.GetByAnalysisIDFn != nil {
		return m.GetByAnalysisIDFn(ctx, analysisID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByDealType(ctx context.Context, dealType string, limit int) ([]domain.Analysis, error) {
	if m.ListByDealTypeFn != nil {
		return m.ListByDealTypeFn(ctx, dealType, limit)
	}
	return nil, errUnimplemented
}
