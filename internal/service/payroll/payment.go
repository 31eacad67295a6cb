package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/shopspring/decimal"
)

type paymentTarget struct {
	bank        string
	method      payroll.PaymentMethod
	provisional *payroll.ProvisionalPaymentData
}

type paymentResult struct {
	settlement  payroll.Settlement
	salary      payroll.SalaryPayment
	provisional *payroll.ProvisionalPayment
}

func (s *PayrollServiceImpl) PayPeriod(ctx context.Context, req payroll.PayPeriodRequest) (payroll.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PaymentResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionPayrollPay)
	if err != nil {
		return payroll.PaymentResponse{}, err
	}

	target := paymentTarget{
		bank:        req.BankName,
		method:      payroll.PaymentMethod(req.Method),
		provisional: req.Provisional,
	}

	var result paymentResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.payOne(ctx, actor.CompanyID, req.SettlementID, target)
		return err
	})
	if err != nil {
		return payroll.PaymentResponse{}, persistenceFailure("pay settlement", err)
	}

	slog.Info("Payroll: settlement paid",
		"settlement_id", result.settlement.ID,
		"amount", result.salary.Amount.String(),
		"method", string(result.salary.Method),
		"paid_by", actor.UserID)

	return mapToPaymentResponse(result), nil
}

// PayBatch pays every settlement in one unit of work. A single failure
// leaves all of them untouched.
func (s *PayrollServiceImpl) PayBatch(ctx context.Context, req payroll.PayBatchRequest) ([]payroll.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, err := authorize(ctx, user.PermissionPayrollPay)
	if err != nil {
		return nil, err
	}

	target := paymentTarget{
		bank:        req.BankName,
		method:      payroll.PaymentMethod(req.Method),
		provisional: req.Provisional,
	}

	results := make([]paymentResult, 0, len(req.SettlementIDs))
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, id := range req.SettlementIDs {
			result, err := s.payOne(ctx, actor.CompanyID, id, target)
			if err != nil {
				return fmt.Errorf("settlement %s: %w", id, err)
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, persistenceFailure("pay settlement batch", err)
	}

	slog.Info("Payroll: settlement batch paid", "count", len(results), "paid_by", actor.UserID)

	responses := make([]payroll.PaymentResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, mapToPaymentResponse(r))
	}
	return responses, nil
}

// payOne must run inside a unit of work.
func (s *PayrollServiceImpl) payOne(ctx context.Context, companyID, settlementID string, target paymentTarget) (paymentResult, error) {
	current, err := s.payrollRepo.GetSettlementForUpdate(ctx, settlementID, companyID)
	if err != nil {
		return paymentResult{}, err
	}

	now := s.cfg.Now()
	paid, err := s.applyTransition(ctx, current, func(st *payroll.Settlement) error {
		return st.MarkPaid(now)
	})
	if err != nil {
		return paymentResult{}, err
	}

	salary, err := s.payrollRepo.CreateSalaryPayment(ctx, payroll.SalaryPayment{
		SettlementID: paid.ID,
		BankName:     target.bank,
		Method:       target.method,
		Amount:       paid.NetSalary,
		PaymentDate:  now,
		CreatedAt:    now,
	})
	if err != nil {
		return paymentResult{}, fmt.Errorf("failed to create salary payment: %w", err)
	}

	result := paymentResult{settlement: paid, salary: salary}
	if target.provisional == nil {
		return result, nil
	}

	provisional, err := s.createProvisionalPayment(ctx, paid, target.provisional, now)
	if err != nil {
		return paymentResult{}, err
	}
	result.provisional = &provisional
	return result, nil
}

// createProvisionalPayment takes the pension and health split from the
// settlement's own deduction lines.
func (s *PayrollServiceImpl) createProvisionalPayment(ctx context.Context, settlement payroll.Settlement, data *payroll.ProvisionalPaymentData, now time.Time) (payroll.ProvisionalPayment, error) {
	deductions, err := s.payrollRepo.GetDeductionsBySettlementID(ctx, settlement.ID)
	if err != nil {
		return payroll.ProvisionalPayment{}, fmt.Errorf("failed to get deductions: %w", err)
	}

	pension := decimal.Zero
	health := decimal.Zero
	for _, d := range deductions {
		switch d.Concept {
		case payroll.ConceptPension:
			pension = pension.Add(d.Amount)
		case payroll.ConceptHealth:
			health = health.Add(d.Amount)
		}
	}

	paymentDate := now
	if data.PaymentDate != nil {
		parsed, err := time.Parse("2006-01-02", *data.PaymentDate)
		if err != nil {
			return payroll.ProvisionalPayment{}, fmt.Errorf("invalid provisional payment date: %w", err)
		}
		paymentDate = parsed
	}

	label := settlement.Period.Label()
	if data.PeriodLabel != nil {
		label = *data.PeriodLabel
	}

	created, err := s.payrollRepo.CreateProvisionalPayment(ctx, payroll.ProvisionalPayment{
		SettlementID:  settlement.ID,
		PaymentDate:   paymentDate,
		PeriodLabel:   label,
		TotalAmount:   pension.Add(health),
		PensionAmount: pension,
		HealthAmount:  health,
		CreatedAt:     now,
	})
	if err != nil {
		return payroll.ProvisionalPayment{}, fmt.Errorf("failed to create provisional payment: %w", err)
	}
	return created, nil
}
