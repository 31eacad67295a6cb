package employee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEmployee_HasBaseSalary(t *testing.T) {
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)
	salary := decimal.NewFromInt(900000)

	assert.False(t, Employee{}.HasBaseSalary())
	assert.False(t, Employee{BaseSalary: &zero}.HasBaseSalary())
	assert.False(t, Employee{BaseSalary: &negative}.HasBaseSalary())
	assert.True(t, Employee{BaseSalary: &salary}.HasBaseSalary())
}

func TestEmployee_IsActive(t *testing.T) {
	assert.True(t, Employee{EmploymentStatus: EmploymentStatusActive}.IsActive())
	assert.False(t, Employee{EmploymentStatus: EmploymentStatusResigned}.IsActive())
}
