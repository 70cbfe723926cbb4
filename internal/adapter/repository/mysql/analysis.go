package mysql

import (
	"context"
	"errors"

	analysisDomain "dealforge-calc/internal/domain/analysis"

	"gorm.io/gorm"
)

const maxListLimit = 100

type AnalysisRepository struct{ db *gorm.DB }

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

func (r *AnalysisRepository) Create(ctx context.Context, a *analysisDomain.Analysis) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AnalysisRepository) GetByAnalysisID(ctx context.Context, analysisID string) (*analysisDomain.Analysis, error) {
	var out analysisDomain.Analysis
	err := r.db.WithContext(ctx).Where("analysis_id = ?", analysisID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, analysisDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AnalysisRepository) ListByDealType(ctx context.Context, dealType string, limit int) ([]analysisDomain.Analysis, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if dealType != "" {
		q = q.Where("deal_type = ?", dealType)
	}
	var out []analysisDomain.Analysis
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Migrate creates or updates the analyses table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&analysisDomain.Analysis{})
}
