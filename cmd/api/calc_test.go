package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"dealforge-calc/internal/adapter/binding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{"purchase_price":200000,"down_payment_pct":0.2,"interest_rate_pct":0.06,"loan_term_years":30,` +
	`"monthly_rent":1800,"monthly_expenses":600,"closing_costs":5000,"rehab_costs":0}`

func TestRunCalc_OneEnvelopePerLine(t *testing.T) {
	in := strings.NewReader(payload + "\n\n" + `{"oops"` + "\n" + payload + "\n")
	var out bytes.Buffer

	err := runCalc(context.Background(), binding.NewAdapter(binding.DefaultRegistry(), 2), "rental", in, &out, false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	var first map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Contains(t, first, "result")
	assert.Contains(t, lines[1], `"kind":"DecodeError"`)
	assert.Equal(t, lines[0], lines[2])
}

func TestRunCalc_RoundsForDisplay(t *testing.T) {
	var raw, rounded bytes.Buffer
	a := binding.NewAdapter(binding.DefaultRegistry(), 1)

	require.NoError(t, runCalc(context.Background(), a, "rental", strings.NewReader(payload), &raw, false))
	require.NoError(t, runCalc(context.Background(), a, "rental", strings.NewReader(payload), &rounded, true))

	var r, p struct {
		Result map[string]float64 `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw.Bytes(), &r))
	require.NoError(t, json.Unmarshal(rounded.Bytes(), &p))

	assert.NotEqual(t, 959.28, r.Result["monthly_mortgage_payment"])
	assert.Equal(t, 959.28, p.Result["monthly_mortgage_payment"])
	assert.Equal(t, len(r.Result), len(p.Result))
}

func TestRunCalc_ValidationErrorsAreNotRounded(t *testing.T) {
	bad := strings.Replace(payload, `"purchase_price":200000`, `"purchase_price":0`, 1)
	var out bytes.Buffer

	err := runCalc(context.Background(), binding.NewAdapter(binding.DefaultRegistry(), 1), "rental", strings.NewReader(bad), &out, true)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"error":{"kind":"ValidationError","field":"purchase_price","reason":"must be greater than 0"}}`,
		out.String())
}

func TestRunCalc_UnknownDealType(t *testing.T) {
	err := runCalc(context.Background(), binding.NewAdapter(binding.DefaultRegistry(), 1), "syndication", strings.NewReader(payload), &bytes.Buffer{}, false)
	assert.Error(t, err)
}
