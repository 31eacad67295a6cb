package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/google/uuid"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

// SaveEmployee seeds or replaces an employee. Employee CRUD is owned by
// another service; this exists for local runs and tests.
func (s *Store) SaveEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = employee.EmploymentStatusActive
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.employees[e.ID] = e
		return nil
	})
	return e, err
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.employees[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]employee.Employee, 0)
	for _, e := range r.store.employees {
		if e.CompanyID == companyID && e.IsActive() {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FullName == result[j].FullName {
			return result[i].ID < result[j].ID
		}
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

func (r *employeeRepository) GetActiveCompanyIDs(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range r.store.employees {
		if e.IsActive() {
			seen[e.CompanyID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
