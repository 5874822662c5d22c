package report

import (
	"github.com/opsboard/report-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Financial is the recurring revenue projection
type Financial struct {
	ActiveAccounts   int     `json:"activeAccounts"`
	MRR              float64 `json:"mrr"`
	AnnualValue      float64 `json:"annualValue"`
	AvgContractValue float64 `json:"avgContractValue"`
	// FallbackApplied counts active accounts priced with the fallback value
	FallbackApplied int `json:"fallbackApplied"`
}

var monthsPerYear = decimal.NewFromInt(12)

// ProjectFinancials sums monthly values of active accounts, using fallback for
// accounts without one
func ProjectFinancials(accounts []domain.RecurringAccount, fallback decimal.Decimal) Financial {
	mrr := decimal.Zero
	active, defaults := 0, 0
	for _, a := range accounts {
		if a.Status != domain.AccountStatusActive {
			continue
		}
		active++
		if a.MonthlyValue.Valid {
			mrr = mrr.Add(a.MonthlyValue.Decimal)
		} else {
			mrr = mrr.Add(fallback)
			defaults++
		}
	}

	avg := decimal.Zero
	if active > 0 {
		avg = mrr.Div(decimal.NewFromInt(int64(active)))
	}
	return Financial{
		ActiveAccounts:   active,
		MRR:              money(mrr),
		AnnualValue:      money(mrr.Mul(monthsPerYear)),
		AvgContractValue: money(avg),
		FallbackApplied:  defaults,
	}
}
