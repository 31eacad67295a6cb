// Package memory is an in-process implementation of the repositories,
// used for local runs and service tests.
package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
)

type txCtxKey struct{}

// Store holds every table. Units of work are serialized by txMu and rolled
// back by restoring a snapshot taken when they started.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	employees           map[string]employee.Employee
	attendances         map[string]attendance.Attendance
	settlements         map[string]payroll.Settlement
	deductions          map[string][]payroll.Deduction
	salaryPayments      map[string]payroll.SalaryPayment
	provisionalPayments map[string]payroll.ProvisionalPayment
}

func NewStore() *Store {
	return &Store{
		employees:           make(map[string]employee.Employee),
		attendances:         make(map[string]attendance.Attendance),
		settlements:         make(map[string]payroll.Settlement),
		deductions:          make(map[string][]payroll.Deduction),
		salaryPayments:      make(map[string]payroll.SalaryPayment),
		provisionalPayments: make(map[string]payroll.ProvisionalPayment),
	}
}

type snapshot struct {
	employees           map[string]employee.Employee
	attendances         map[string]attendance.Attendance
	settlements         map[string]payroll.Settlement
	deductions          map[string][]payroll.Deduction
	salaryPayments      map[string]payroll.SalaryPayment
	provisionalPayments map[string]payroll.ProvisionalPayment
}

// WithinTx implements payroll.Transactor. Nested calls join the outer unit.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txCtxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txCtxKey{}).(bool)
	return v
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		employees:           make(map[string]employee.Employee, len(s.employees)),
		attendances:         make(map[string]attendance.Attendance, len(s.attendances)),
		settlements:         make(map[string]payroll.Settlement, len(s.settlements)),
		deductions:          make(map[string][]payroll.Deduction, len(s.deductions)),
		salaryPayments:      make(map[string]payroll.SalaryPayment, len(s.salaryPayments)),
		provisionalPayments: make(map[string]payroll.ProvisionalPayment, len(s.provisionalPayments)),
	}
	for k, v := range s.employees {
		snap.employees[k] = v
	}
	for k, v := range s.attendances {
		snap.attendances[k] = v
	}
	for k, v := range s.settlements {
		snap.settlements[k] = v
	}
	for k, v := range s.deductions {
		snap.deductions[k] = append([]payroll.Deduction(nil), v...)
	}
	for k, v := range s.salaryPayments {
		snap.salaryPayments[k] = v
	}
	for k, v := range s.provisionalPayments {
		snap.provisionalPayments[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees = snap.employees
	s.attendances = snap.attendances
	s.settlements = snap.settlements
	s.deductions = snap.deductions
	s.salaryPayments = snap.salaryPayments
	s.provisionalPayments = snap.provisionalPayments
}
