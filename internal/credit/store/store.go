// internal/credit/store/store.go
package store

import (
	"context"
	"errors"

	"credit-workers/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Store is the persistence surface of the credit service.
type Store interface {
	GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error)
	// CreateCustomer inserts c and fills in its ID and CreatedAt.
	CreateCustomer(ctx context.Context, c *models.Customer) error
	ListLoans(ctx context.Context, customerID int64) ([]models.Loan, error)
	// ListOpenLoans returns approved loans with EMIs still outstanding.
	ListOpenLoans(ctx context.Context, customerID int64) ([]models.Loan, error)
	GetLoan(ctx context.Context, loanID int64) (*models.Loan, *models.Customer, error)
	// WithCustomerLock runs fn while holding an exclusive lock on the
	// customer. Everything fn does through tx commits or rolls back together.
	WithCustomerLock(ctx context.Context, customerID int64, fn func(tx Tx) error) error
}

// Tx is the view of the store inside a customer lock.
type Tx interface {
	Customer() *models.Customer
	ListLoans(ctx context.Context) ([]models.Loan, error)
	// CreateLoan inserts loan for the locked customer and fills in its ID.
	CreateLoan(ctx context.Context, loan *models.Loan) error
}
