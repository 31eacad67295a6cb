package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
)

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}

func mapToSettlementResponse(s payroll.Settlement) payroll.SettlementResponse {
	return payroll.SettlementResponse{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		EmployeeName:    s.EmployeeName,
		PeriodMonth:     s.Period.Month,
		PeriodYear:      s.Period.Year,
		PeriodStart:     s.Period.Start.Format("2006-01-02"),
		PeriodEnd:       s.Period.End.Format("2006-01-02"),
		Status:          string(s.Status),
		BaseSalary:      s.BaseSalary,
		RegularHours:    s.RegularHours,
		OvertimeHours:   s.OvertimeHours,
		RegularPay:      s.RegularPay,
		OvertimePay:     s.OvertimePay,
		GrossSalary:     s.GrossSalary,
		TotalDeductions: s.TotalDeductions,
		NetSalary:       s.NetSalary,
		ApprovedBy:      s.ApprovedBy,
		ApprovedAt:      formatTimePtr(s.ApprovedAt),
		RejectionReason: s.RejectionReason,
		RejectedAt:      formatTimePtr(s.RejectedAt),
		PaidAt:          formatTimePtr(s.PaidAt),
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
}

func mapToSettlementResponses(settlements []payroll.Settlement) []payroll.SettlementResponse {
	result := make([]payroll.SettlementResponse, 0, len(settlements))
	for _, s := range settlements {
		result = append(result, mapToSettlementResponse(s))
	}
	return result
}

func mapToDeductionResponses(deductions []payroll.Deduction) []payroll.DeductionResponse {
	result := make([]payroll.DeductionResponse, 0, len(deductions))
	for _, d := range deductions {
		result = append(result, payroll.DeductionResponse{Concept: d.Concept, Amount: d.Amount})
	}
	return result
}

func mapToSalaryPaymentResponse(p payroll.SalaryPayment) payroll.SalaryPaymentResponse {
	return payroll.SalaryPaymentResponse{
		ID:           p.ID,
		SettlementID: p.SettlementID,
		BankName:     p.BankName,
		Method:       string(p.Method),
		Amount:       p.Amount,
		PaymentDate:  p.PaymentDate.Format("2006-01-02"),
	}
}

func mapToProvisionalPaymentResponse(p payroll.ProvisionalPayment) payroll.ProvisionalPaymentResponse {
	return payroll.ProvisionalPaymentResponse{
		ID:            p.ID,
		SettlementID:  p.SettlementID,
		PaymentDate:   p.PaymentDate.Format("2006-01-02"),
		PeriodLabel:   p.PeriodLabel,
		TotalAmount:   p.TotalAmount,
		PensionAmount: p.PensionAmount,
		HealthAmount:  p.HealthAmount,
	}
}

func mapToPaymentResponse(r paymentResult) payroll.PaymentResponse {
	resp := payroll.PaymentResponse{
		Settlement:    mapToSettlementResponse(r.settlement),
		SalaryPayment: mapToSalaryPaymentResponse(r.salary),
	}
	if r.provisional != nil {
		p := mapToProvisionalPaymentResponse(*r.provisional)
		resp.ProvisionalPayment = &p
	}
	return resp
}
