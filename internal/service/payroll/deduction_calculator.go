package payroll

import (
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// DeductionRates are the statutory withholding fractions applied to gross salary.
type DeductionRates struct {
	Pension decimal.Decimal
	Health  decimal.Decimal
}

func DefaultDeductionRates() DeductionRates {
	return DeductionRates{
		Pension: decimal.RequireFromString("0.10"),
		Health:  decimal.RequireFromString("0.07"),
	}
}

// ComputeStatutoryDeductions withholds pension and health from gross, rounded
// to cents. Line items are AFP then Salud and always sum to Total.
func (r DeductionRates) ComputeStatutoryDeductions(gross decimal.Decimal) payroll.StatutoryDeductions {
	pension := gross.Mul(r.Pension).Round(2)
	health := gross.Mul(r.Health).Round(2)

	return payroll.StatutoryDeductions{
		Pension: pension,
		Health:  health,
		Total:   pension.Add(health),
		LineItems: []payroll.Deduction{
			{Concept: payroll.ConceptPension, Amount: pension},
			{Concept: payroll.ConceptHealth, Amount: health},
		},
	}
}
