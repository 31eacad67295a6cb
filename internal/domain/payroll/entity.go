package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus enum
type SettlementStatus string

const (
	SettlementStatusPending  SettlementStatus = "pending"
	SettlementStatusApproved SettlementStatus = "approved"
	SettlementStatusRejected SettlementStatus = "rejected"
	SettlementStatusPaid     SettlementStatus = "paid"
)

// Period is a calendar month. Start and End are the first and last day, inclusive.
type Period struct {
	Month int
	Year  int
	Start time.Time
	End   time.Time
}

// Label renders the period as "MM/YYYY".
func (p Period) Label() string {
	return fmt.Sprintf("%02d/%d", p.Month, p.Year)
}

// Settlement - one employee's pay computation for one calendar month
type Settlement struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	Period          Period
	Status          SettlementStatus
	BaseSalary      decimal.Decimal
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	RegularPay      decimal.Decimal
	OvertimePay     decimal.Decimal
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	RejectedAt      *time.Time
	PaidAt          *time.Time
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
}

// IsActive reports whether the settlement blocks another one for the same period.
func (s Settlement) IsActive() bool {
	return s.Status != SettlementStatusRejected
}

// Approve moves a pending settlement to approved.
func (s *Settlement) Approve(approverID string, at time.Time) error {
	if s.Status != SettlementStatusPending {
		return s.invalidTransition(SettlementStatusApproved)
	}
	s.Status = SettlementStatusApproved
	s.ApprovedBy = &approverID
	s.ApprovedAt = &at
	return nil
}

// Reject moves a pending settlement to rejected.
func (s *Settlement) Reject(reason string, at time.Time) error {
	if s.Status != SettlementStatusPending {
		return s.invalidTransition(SettlementStatusRejected)
	}
	s.Status = SettlementStatusRejected
	s.RejectionReason = &reason
	s.RejectedAt = &at
	return nil
}

// MarkPaid moves an approved settlement to paid. Pending settlements must be
// approved first.
func (s *Settlement) MarkPaid(at time.Time) error {
	if s.Status != SettlementStatusApproved {
		return s.invalidTransition(SettlementStatusPaid)
	}
	s.Status = SettlementStatusPaid
	s.PaidAt = &at
	return nil
}

func (s *Settlement) invalidTransition(to SettlementStatus) error {
	return &InvalidTransitionError{SettlementID: s.ID, From: s.Status, To: to}
}

// Deduction concepts
const (
	ConceptPension = "AFP"
	ConceptHealth  = "Salud"
)

// Deduction - statutory line item owned by a settlement
type Deduction struct {
	ID           string
	SettlementID string
	Concept      string
	Amount       decimal.Decimal
	CreatedAt    time.Time
}

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodCheque   PaymentMethod = "cheque"
	PaymentMethodDeposito PaymentMethod = "deposito"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCheque || m == PaymentMethodDeposito
}

// SalaryPayment - ledger entry written when a settlement is paid
type SalaryPayment struct {
	ID           string
	SettlementID string
	BankName     string
	Method       PaymentMethod
	Amount       decimal.Decimal
	PaymentDate  time.Time
	CreatedAt    time.Time
}

// ProvisionalPayment - statutory remittance recorded alongside a salary payment
type ProvisionalPayment struct {
	ID            string
	SettlementID  string
	PaymentDate   time.Time
	PeriodLabel   string
	TotalAmount   decimal.Decimal
	PensionAmount decimal.Decimal
	HealthAmount  decimal.Decimal
	CreatedAt     time.Time
}

// GrossBreakdown - result of converting attendance into gross salary
type GrossBreakdown struct {
	BaseSalary     decimal.Decimal
	HourlyRate     decimal.Decimal
	RegularHours   decimal.Decimal
	OvertimeHours  decimal.Decimal
	RegularPay     decimal.Decimal
	OvertimePay    decimal.Decimal
	Gross          decimal.Decimal
	FullAttendance bool
}

// StatutoryDeductions - pension and health withholding for a gross amount
type StatutoryDeductions struct {
	Pension   decimal.Decimal
	Health    decimal.Decimal
	Total     decimal.Decimal
	LineItems []Deduction
}
