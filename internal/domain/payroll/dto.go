package payroll

import (
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const minPeriodYear = 2000

func validatePeriod(month, year int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if year < minPeriodYear || year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be between 2000 and 9999"})
	}
	return errs
}

// ========== GENERATION DTOs ==========

type GenerateSettlementRequest struct {
	EmployeeID  string `json:"employee_id"`
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
}

func (r *GenerateSettlementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	errs = append(errs, validatePeriod(r.PeriodMonth, r.PeriodYear)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GenerateForPeriodRequest struct {
	PeriodMonth int      `json:"period_month"`
	PeriodYear  int      `json:"period_year"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = all active employees
}

func (r *GenerateForPeriodRequest) Validate() error {
	errs := validatePeriod(r.PeriodMonth, r.PeriodYear)

	if validator.HasDuplicates(r.EmployeeIDs) {
		errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must not contain duplicates"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SkippedEmployee struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type GenerateForPeriodResponse struct {
	PeriodMonth int                  `json:"period_month"`
	PeriodYear  int                  `json:"period_year"`
	Created     []SettlementResponse `json:"created"`
	Skipped     []SkippedEmployee    `json:"skipped"`
}

// ========== TRANSITION DTOs ==========

type RejectSettlementRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectSettlementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== PAYMENT DTOs ==========

// ProvisionalPaymentData requests a provisional (statutory) payment record
// alongside the salary payment. Zero values fall back to the payment date
// and the settlement's period label.
type ProvisionalPaymentData struct {
	PaymentDate *string `json:"payment_date,omitempty"`
	PeriodLabel *string `json:"period_label,omitempty"`
}

func (d *ProvisionalPaymentData) validate() validator.ValidationErrors {
	var errs validator.ValidationErrors
	if d == nil {
		return errs
	}
	if d.PaymentDate != nil {
		if _, ok := validator.IsValidDate(*d.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "provisional.payment_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if d.PeriodLabel != nil && validator.IsEmpty(*d.PeriodLabel) {
		errs = append(errs, validator.ValidationError{Field: "provisional.period_label", Message: "must not be blank"})
	}
	return errs
}

func validatePaymentTarget(bank, method string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(bank) {
		errs = append(errs, validator.ValidationError{Field: "bank", Message: "is required"})
	}
	if !PaymentMethod(method).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "method", Message: "must be 'cheque' or 'deposito'"})
	}
	return errs
}

type PayPeriodRequest struct {
	SettlementID string                  `json:"settlement_id"`
	BankName     string                  `json:"bank"`
	Method       string                  `json:"method"`
	Provisional  *ProvisionalPaymentData `json:"provisional,omitempty"`
}

func (r *PayPeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SettlementID) {
		errs = append(errs, validator.ValidationError{Field: "settlement_id", Message: "is required"})
	}
	errs = append(errs, validatePaymentTarget(r.BankName, r.Method)...)
	errs = append(errs, r.Provisional.validate()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayBatchRequest struct {
	SettlementIDs []string                `json:"settlement_ids"`
	BankName      string                  `json:"bank"`
	Method        string                  `json:"method"`
	Provisional   *ProvisionalPaymentData `json:"provisional,omitempty"`
}

func (r *PayBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.SettlementIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "settlement_ids", Message: "at least one settlement is required"})
	} else if validator.HasDuplicates(r.SettlementIDs) {
		errs = append(errs, validator.ValidationError{Field: "settlement_ids", Message: "must not contain duplicates"})
	}
	errs = append(errs, validatePaymentTarget(r.BankName, r.Method)...)
	errs = append(errs, r.Provisional.validate()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSE DTOs ==========

type SettlementResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	Status          string          `json:"status"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	RegularHours    decimal.Decimal `json:"regular_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	RegularPay      decimal.Decimal `json:"regular_pay"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ApprovedAt      *string         `json:"approved_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	RejectedAt      *string         `json:"rejected_at,omitempty"`
	PaidAt          *string         `json:"paid_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type DeductionResponse struct {
	Concept string          `json:"concept"`
	Amount  decimal.Decimal `json:"amount"`
}

type SalaryPaymentResponse struct {
	ID           string          `json:"id"`
	SettlementID string          `json:"settlement_id"`
	BankName     string          `json:"bank"`
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentDate  string          `json:"payment_date"`
}

type ProvisionalPaymentResponse struct {
	ID            string          `json:"id"`
	SettlementID  string          `json:"settlement_id"`
	PaymentDate   string          `json:"payment_date"`
	PeriodLabel   string          `json:"period_label"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PensionAmount decimal.Decimal `json:"pension_amount"`
	HealthAmount  decimal.Decimal `json:"health_amount"`
}

type SettlementDetailResponse struct {
	Settlement         SettlementResponse          `json:"settlement"`
	Deductions         []DeductionResponse         `json:"deductions"`
	SalaryPayment      *SalaryPaymentResponse      `json:"salary_payment,omitempty"`
	ProvisionalPayment *ProvisionalPaymentResponse `json:"provisional_payment,omitempty"`
}

type PaymentResponse struct {
	Settlement         SettlementResponse          `json:"settlement"`
	SalaryPayment      SalaryPaymentResponse       `json:"salary_payment"`
	ProvisionalPayment *ProvisionalPaymentResponse `json:"provisional_payment,omitempty"`
}

type SettlementFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

// Normalize applies pagination defaults.
func (f *SettlementFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Page <= 0 {
		f.Page = 1
	}
}

func (f *SettlementFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if f.Status != nil {
		switch SettlementStatus(*f.Status) {
		case SettlementStatusPending, SettlementStatusApproved, SettlementStatusRejected, SettlementStatusPaid:
		default:
			errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of pending, approved, rejected, paid"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListSettlementResponse struct {
	Data       []SettlementResponse `json:"data"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
}

type PeriodSummaryResponse struct {
	PeriodMonth      int             `json:"period_month"`
	PeriodYear       int             `json:"period_year"`
	TotalSettlements int             `json:"total_settlements"`
	TotalGrossSalary decimal.Decimal `json:"total_gross_salary"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	TotalNetSalary   decimal.Decimal `json:"total_net_salary"`
	PendingCount     int             `json:"pending_count"`
	ApprovedCount    int             `json:"approved_count"`
	RejectedCount    int             `json:"rejected_count"`
	PaidCount        int             `json:"paid_count"`
}
