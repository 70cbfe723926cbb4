package rental

import "math"

const projectionYears = 5

// Calculate derives every rental metric from a validated snapshot. It keeps
// no state and does not round.
func Calculate(v ValidatedInputs) RentalResults {
	in := v.in

	downPayment := in.PurchasePrice * in.DownPaymentPct
	principal := in.PurchasePrice * (1 - in.DownPaymentPct)
	r := in.InterestRatePct / 12
	n := in.LoanTermYears * 12

	payment := MonthlyPayment(principal, r, n)

	monthlyCashFlow := in.MonthlyRent - in.MonthlyExpenses - payment
	annualCashFlow := monthlyCashFlow * 12
	totalCashInvested := downPayment + in.ClosingCosts + in.RehabCosts
	noi := (in.MonthlyRent - in.MonthlyExpenses) * 12
	annualDebtService := payment * 12

	year1Principal, year1Interest := amortize(principal, r, payment, min(12, n))
	fivePrincipal, _ := amortize(principal, r, payment, min(projectionYears*12, n))

	fiveYearReturn := percentOf(annualCashFlow*projectionYears+fivePrincipal, totalCashInvested)

	return RentalResults{
		MonthlyMortgagePayment: payment,
		MonthlyCashFlow:        monthlyCashFlow,
		AnnualCashFlow:         annualCashFlow,
		TotalCashInvested:      totalCashInvested,
		CashOnCashReturn:       percentOf(annualCashFlow, totalCashInvested),
		CapRate:                percentOf(noi, in.PurchasePrice),
		NOI:                    noi,

		LoanAmount:               principal,
		DownPayment:              downPayment,
		AnnualDebtService:        annualDebtService,
		DebtServiceCoverageRatio: ratio(noi, annualDebtService),
		Year1PrincipalPaydown:    year1Principal,
		Year1InterestPaid:        year1Interest,
		FiveYearEquity:           downPayment + fivePrincipal,
		FiveYearTotalReturn:      fiveYearReturn,
		TotalROI:                 fiveYearReturn / projectionYears,
	}
}

// MonthlyPayment is the level payment that amortizes principal over n months
// at monthly rate r. A zero rate is straight-line.
func MonthlyPayment(principal, r float64, n int) float64 {
	if principal <= 0 || n <= 0 {
		return 0
	}
	if r == 0 {
		return principal / float64(n)
	}
	// 1-(1+r)^-n, computed without cancellation for tiny r.
	denom := -math.Expm1(-float64(n) * math.Log1p(r))
	return principal * (r / denom)
}

// amortize walks the schedule for the given number of months and returns
// the principal and interest portions paid.
func amortize(principal, r, payment float64, months int) (paid, interest float64) {
	if principal <= 0 || payment <= 0 {
		return 0, 0
	}
	balance := principal
	for i := 0; i < months; i++ {
		in := balance * r
		p := payment - in
		paid += p
		interest += in
		balance -= p
	}
	return paid, interest
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

func percentOf(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}
