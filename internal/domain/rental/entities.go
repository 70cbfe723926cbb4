package rental

import "fmt"

const DealType = "rental"

// Bounds applied on top of the per-field rules. They keep every derived
// ratio finite. MinFraction applies to down_payment_pct only.
const (
	MinAmount        = 0.01
	MaxAmount        = 1e12
	MinFraction      = 0.0001
	MaxLoanTermYears = 100
)

// RentalInputs is one deal snapshot as the caller sends it.
type RentalInputs struct {
	PurchasePrice   float64 `json:"purchase_price"`
	DownPaymentPct  float64 `json:"down_payment_pct"`
	InterestRatePct float64 `json:"interest_rate_pct"`
	LoanTermYears   int     `json:"loan_term_years"`
	MonthlyRent     float64 `json:"monthly_rent"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	ClosingCosts    float64 `json:"closing_costs"`
	RehabCosts      float64 `json:"rehab_costs"`
}

// ValidatedInputs can only be obtained from Validate, so Calculate never sees
// an unchecked snapshot.
type ValidatedInputs struct {
	in RentalInputs
}

// Inputs returns a copy of the checked snapshot.
func (v ValidatedInputs) Inputs() RentalInputs { return v.in }

// RentalResults holds the unrounded metrics derived from one snapshot.
type RentalResults struct {
	MonthlyMortgagePayment float64 `json:"monthly_mortgage_payment"`
	MonthlyCashFlow        float64 `json:"monthly_cash_flow"`
	AnnualCashFlow         float64 `json:"annual_cash_flow"`
	TotalCashInvested      float64 `json:"total_cash_invested"`
	CashOnCashReturn       float64 `json:"cash_on_cash_return"`
	CapRate                float64 `json:"cap_rate"`
	NOI                    float64 `json:"noi"`

	LoanAmount               float64 `json:"loan_amount"`
	DownPayment              float64 `json:"down_payment"`
	AnnualDebtService        float64 `json:"annual_debt_service"`
	DebtServiceCoverageRatio float64 `json:"debt_service_coverage_ratio"`
	Year1PrincipalPaydown    float64 `json:"year1_principal_paydown"`
	Year1InterestPaid        float64 `json:"year1_interest_paid"`
	FiveYearEquity           float64 `json:"five_year_equity"`
	FiveYearTotalReturn      float64 `json:"five_year_total_return"`
	TotalROI                 float64 `json:"total_roi"`
}

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
