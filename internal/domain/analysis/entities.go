package analysis

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("analysis not found")
)

// Table: analyses. Inputs and results are stored as the JSON the engine
// consumed and produced.
type Analysis struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	AnalysisID string         `gorm:"column:analysis_id;size:32;not null;uniqueIndex:ux_analyses_analysis_id" json:"analysis_id"`
	DealType   string         `gorm:"column:deal_type;size:32;not null;index:idx_analyses_deal_type" json:"deal_type"`
	Name       string         `gorm:"column:name;size:120;not null" json:"name"`
	Inputs     string         `gorm:"column:inputs;type:text;not null" json:"inputs"`
	Results    string         `gorm:"column:results;type:text;not null" json:"results"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Analysis) TableName() string { return "analyses" }
