package rental

import (
	"fmt"
	"math"
)

type check struct {
	field string
	value float64
	rule  func(float64) string
}

// Validate checks the snapshot in a fixed field order and reports only the
// first violation.
func Validate(in RentalInputs) (ValidatedInputs, error) {
	checks := []check{
		{"purchase_price", in.PurchasePrice, positiveAmount},
		{"down_payment_pct", in.DownPaymentPct, fraction},
		{"interest_rate_pct", in.InterestRatePct, rate},
		{"loan_term_years", float64(in.LoanTermYears), loanTerm},
		{"monthly_rent", in.MonthlyRent, amount},
		{"monthly_expenses", in.MonthlyExpenses, amount},
		{"closing_costs", in.ClosingCosts, amount},
		{"rehab_costs", in.RehabCosts, amount},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return ValidatedInputs{}, &ValidationError{Field: c.field, Reason: "must be a finite number"}
		}
		if reason := c.rule(c.value); reason != "" {
			return ValidatedInputs{}, &ValidationError{Field: c.field, Reason: reason}
		}
	}
	return ValidatedInputs{in: in}, nil
}

func positiveAmount(v float64) string {
	if v <= 0 {
		return "must be greater than 0"
	}
	return amount(v)
}

// amount accepts zero or a value within [MinAmount, MaxAmount].
func amount(v float64) string {
	switch {
	case v < 0:
		return "must be greater than or equal to 0"
	case v == 0:
		return ""
	case v < MinAmount:
		return fmt.Sprintf("must be 0 or at least %g", MinAmount)
	case v > MaxAmount:
		return fmt.Sprintf("must not exceed %g", MaxAmount)
	}
	return ""
}

// rate has no floor: MonthlyPayment stays finite for any positive rate.
func rate(v float64) string {
	if v < 0 || v > 1 {
		return "must be between 0 and 1"
	}
	return ""
}

func fraction(v float64) string {
	if reason := rate(v); reason != "" {
		return reason
	}
	if v > 0 && v < MinFraction {
		return fmt.Sprintf("must be 0 or at least %g", MinFraction)
	}
	return ""
}

func loanTerm(v float64) string {
	if v <= 0 {
		return "must be greater than 0"
	}
	if v > MaxLoanTermYears {
		return fmt.Sprintf("must not exceed %d", MaxLoanTermYears)
	}
	return ""
}
