package analysis

import "context"

type Repository interface {
	Create(ctx context.Context, a *Analysis) error

	// Get by public analysis_id
	GetByAnalysisID(ctx context.Context, analysisID string) (*Analysis, error)

	// Newest first; an empty dealType lists every deal type.
	ListByDealType(ctx context.Context, dealType string, limit int) ([]Analysis, error)
}
