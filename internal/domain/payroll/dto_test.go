package payroll

import (
	"errors"
	"testing"

	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs), "expected validation errors, got %v", err)
	return errs.ToMap()
}

func TestGenerateSettlementRequest_Validate(t *testing.T) {
	ok := GenerateSettlementRequest{EmployeeID: "e-1", PeriodMonth: 6, PeriodYear: 2024}
	assert.NoError(t, ok.Validate())

	bad := GenerateSettlementRequest{PeriodMonth: 13, PeriodYear: 1999}
	fields := validationFields(t, bad.Validate())
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "period_month")
	assert.Contains(t, fields, "period_year")
}

func TestPayPeriodRequest_Validate(t *testing.T) {
	ok := PayPeriodRequest{SettlementID: "s-1", BankName: "BancoTest", Method: "deposito"}
	assert.NoError(t, ok.Validate())

	badDate := "2024/07/01"
	bad := PayPeriodRequest{Method: "cash", Provisional: &ProvisionalPaymentData{PaymentDate: &badDate}}
	fields := validationFields(t, bad.Validate())
	assert.Contains(t, fields, "settlement_id")
	assert.Contains(t, fields, "bank")
	assert.Contains(t, fields, "method")
	assert.Contains(t, fields, "provisional.payment_date")
}

func TestPayBatchRequest_Validate(t *testing.T) {
	ok := PayBatchRequest{SettlementIDs: []string{"s-1", "s-2"}, BankName: "BancoTest", Method: "cheque"}
	assert.NoError(t, ok.Validate())

	empty := PayBatchRequest{BankName: "BancoTest", Method: "cheque"}
	assert.Contains(t, validationFields(t, empty.Validate()), "settlement_ids")

	dup := PayBatchRequest{SettlementIDs: []string{"s-1", "s-1"}, BankName: "BancoTest", Method: "cheque"}
	assert.Contains(t, validationFields(t, dup.Validate()), "settlement_ids")
}

func TestRejectSettlementRequest_Validate(t *testing.T) {
	ok := RejectSettlementRequest{ID: "s-1", Reason: "hours mismatch"}
	assert.NoError(t, ok.Validate())

	blank := RejectSettlementRequest{ID: "s-1", Reason: "  "}
	assert.Contains(t, validationFields(t, blank.Validate()), "reason")
}

func TestSettlementFilter(t *testing.T) {
	f := SettlementFilter{}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	status := "archived"
	month := 0
	bad := SettlementFilter{Status: &status, PeriodMonth: &month}
	fields := validationFields(t, bad.Validate())
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "period_month")
}
