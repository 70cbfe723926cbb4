// Package money holds display helpers for hosts. The engine never rounds;
// a host that shows figures to people rounds them here.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundCents rounds half away from zero to two decimal places. The rounding
// is done in decimal, so 1.005 becomes 1.01 rather than 1.00.
func RoundCents(f float64) float64 {
	out, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return out
}

// RoundFlat rounds every field of a flat, all-numeric record (such as a
// calculation result) to cents.
func RoundFlat(v any) (map[string]float64, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]float64
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("round: not a flat numeric record: %w", err)
	}
	for k, f := range fields {
		fields[k] = RoundCents(f)
	}
	return fields, nil
}
