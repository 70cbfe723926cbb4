package analysis

import (
	"encoding/json"
	"time"
)

type CreateAnalysisInput struct {
	Name     string          `json:"name"`
	DealType string          `json:"deal_type"`
	Inputs   json.RawMessage `json:"inputs"`
}

type AnalysisDTO struct {
	AnalysisID string          `json:"analysis_id"`
	Name       string          `json:"name"`
	DealType   string          `json:"deal_type"`
	Inputs     json.RawMessage `json:"inputs"`
	Results    json.RawMessage `json:"results"`
	CreatedAt  time.Time       `json:"created_at"`
}
