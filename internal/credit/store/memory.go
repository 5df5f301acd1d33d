// internal/credit/store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"credit-workers/internal/models"
)

// Memory is an in-process Store. Each customer has its own mutex so
// WithCustomerLock serialises writers per customer, like the row lock in
// Postgres. Loans created inside a failed fn are discarded.
type Memory struct {
	mu        sync.RWMutex
	customers map[int64]models.Customer
	loans     map[int64][]models.Loan
	locks     map[int64]*sync.Mutex
	nextCust  int64
	nextLoan  int64
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		customers: make(map[int64]models.Customer),
		loans:     make(map[int64][]models.Loan),
		locks:     make(map[int64]*sync.Mutex),
		now:       time.Now,
	}
}

// Seed stores c and its loans as given, keeping their IDs. Used to load
// historical data.
func (m *Memory) Seed(c models.Customer, loans ...models.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.customers[c.ID] = c
	if _, ok := m.locks[c.ID]; !ok {
		m.locks[c.ID] = &sync.Mutex{}
	}
	m.nextCust = max(m.nextCust, c.ID)
	for _, l := range loans {
		l.CustomerID = c.ID
		m.loans[c.ID] = append(m.loans[c.ID], l)
		m.nextLoan = max(m.nextLoan, l.ID)
	}
	sort.Slice(m.loans[c.ID], func(i, j int) bool { return m.loans[c.ID][i].ID < m.loans[c.ID][j].ID })
}

func (m *Memory) GetCustomer(_ context.Context, customerID int64) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
	}
	return &c, nil
}

func (m *Memory) CreateCustomer(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.customers {
		if existing.PhoneNumber == c.PhoneNumber {
			return fmt.Errorf("customer with phone %s: %w", c.PhoneNumber, ErrAlreadyExists)
		}
	}
	m.nextCust++
	c.ID = m.nextCust
	c.CreatedAt = m.now().UTC()
	m.customers[c.ID] = *c
	m.locks[c.ID] = &sync.Mutex{}
	return nil
}

func (m *Memory) ListLoans(_ context.Context, customerID int64) ([]models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Loan(nil), m.loans[customerID]...), nil
}

func (m *Memory) ListOpenLoans(ctx context.Context, customerID int64) ([]models.Loan, error) {
	all, _ := m.ListLoans(ctx, customerID)
	var open []models.Loan
	for _, l := range all {
		if l.IsApproved && l.RepaymentsLeft() > 0 {
			open = append(open, l)
		}
	}
	return open, nil
}

func (m *Memory) GetLoan(_ context.Context, loanID int64) (*models.Loan, *models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for customerID, loans := range m.loans {
		for _, l := range loans {
			if l.ID == loanID {
				c := m.customers[customerID]
				return &l, &c, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
}

func (m *Memory) WithCustomerLock(ctx context.Context, customerID int64, fn func(tx Tx) error) error {
	m.mu.RLock()
	lock, ok := m.locks[customerID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
	}

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := m.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	tx := &memTx{m: m, customer: c}
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range tx.pending {
		m.nextLoan++
		tx.pending[i].ID = m.nextLoan
		m.loans[customerID] = append(m.loans[customerID], *tx.pending[i])
	}
	return nil
}

type memTx struct {
	m        *Memory
	customer *models.Customer
	pending  []*models.Loan
}

func (t *memTx) Customer() *models.Customer {
	return t.customer
}

func (t *memTx) ListLoans(ctx context.Context) ([]models.Loan, error) {
	loans, err := t.m.ListLoans(ctx, t.customer.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range t.pending {
		loans = append(loans, *p)
	}
	return loans, nil
}

// CreateLoan buffers the loan until the lock is released. The ID is assigned
// on commit.
func (t *memTx) CreateLoan(_ context.Context, loan *models.Loan) error {
	loan.CustomerID = t.customer.ID
	loan.CreatedAt = t.m.now().UTC()
	t.pending = append(t.pending, loan)
	return nil
}
