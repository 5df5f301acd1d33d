// internal/credit/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/lib/pq"

	"credit-workers/internal/common/database"
	"credit-workers/internal/models"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	customer_id    BIGSERIAL PRIMARY KEY,
	first_name     TEXT NOT NULL,
	last_name      TEXT NOT NULL DEFAULT '',
	age            INTEGER NOT NULL DEFAULT 0,
	phone_number   TEXT NOT NULL UNIQUE,
	monthly_salary BIGINT NOT NULL CHECK (monthly_salary > 0),
	approved_limit BIGINT NOT NULL CHECK (approved_limit >= 0),
	current_debt   DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS loans (
	loan_id           BIGSERIAL PRIMARY KEY,
	customer_id       BIGINT NOT NULL REFERENCES customers(customer_id) ON DELETE CASCADE,
	loan_amount       DOUBLE PRECISION NOT NULL CHECK (loan_amount > 0),
	tenure            INTEGER NOT NULL CHECK (tenure > 0),
	interest_rate     DOUBLE PRECISION NOT NULL,
	monthly_repayment DOUBLE PRECISION NOT NULL,
	emis_paid_on_time INTEGER NOT NULL DEFAULT 0,
	start_date        DATE NOT NULL,
	end_date          DATE NOT NULL,
	is_approved       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_loans_customer_id ON loans(customer_id);
`

const customerColumns = `customer_id, first_name, last_name, age, phone_number,
	monthly_salary, approved_limit, current_debt, created_at`

const loanColumns = `loan_id, customer_id, loan_amount, tenure, interest_rate,
	monthly_repayment, emis_paid_on_time, start_date, end_date, is_approved, created_at`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Postgres implements Store on lib/pq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the customers and loans tables when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate credit schema: %w", err)
	}
	return nil
}

func (p *Postgres) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	return getCustomer(ctx, p.db, customerID, false)
}

func (p *Postgres) CreateCustomer(ctx context.Context, c *models.Customer) error {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO customers (first_name, last_name, age, phone_number,
		                       monthly_salary, approved_limit, current_debt)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING customer_id, created_at`,
		c.FirstName, c.LastName, c.Age, c.PhoneNumber,
		c.MonthlySalary, c.ApprovedLimit, c.CurrentDebt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("customer with phone %s: %w", c.PhoneNumber, ErrAlreadyExists)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (p *Postgres) ListLoans(ctx context.Context, customerID int64) ([]models.Loan, error) {
	return listLoans(ctx, p.db, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE customer_id = $1
		ORDER BY loan_id`, customerID)
}

func (p *Postgres) ListOpenLoans(ctx context.Context, customerID int64) ([]models.Loan, error) {
	return listLoans(ctx, p.db, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE customer_id = $1 AND is_approved AND emis_paid_on_time < tenure
		ORDER BY loan_id`, customerID)
}

func (p *Postgres) GetLoan(ctx context.Context, loanID int64) (*models.Loan, *models.Customer, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT l.loan_id, l.customer_id, l.loan_amount, l.tenure, l.interest_rate,
		       l.monthly_repayment, l.emis_paid_on_time, l.start_date, l.end_date,
		       l.is_approved, l.created_at,
		       c.customer_id, c.first_name, c.last_name, c.age, c.phone_number,
		       c.monthly_salary, c.approved_limit, c.current_debt, c.created_at
		FROM loans l
		JOIN customers c ON c.customer_id = l.customer_id
		WHERE l.loan_id = $1`, loanID)

	var (
		loan       models.Loan
		customer   models.Customer
		start, end time.Time
	)
	err := row.Scan(
		&loan.ID, &loan.CustomerID, &loan.LoanAmount, &loan.Tenure, &loan.InterestRate,
		&loan.MonthlyRepayment, &loan.EMIsPaidOnTime, &start, &end,
		&loan.IsApproved, &loan.CreatedAt,
		&customer.ID, &customer.FirstName, &customer.LastName, &customer.Age, &customer.PhoneNumber,
		&customer.MonthlySalary, &customer.ApprovedLimit, &customer.CurrentDebt, &customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("query loan %d: %w", loanID, err)
	}
	loan.StartDate = civil.DateOf(start)
	loan.EndDate = civil.DateOf(end)

	return &loan, &customer, nil
}

// WithCustomerLock takes a row lock on the customer with SELECT ... FOR UPDATE.
// Concurrent callers for the same customer queue on that lock until commit.
func (p *Postgres) WithCustomerLock(ctx context.Context, customerID int64, fn func(tx Tx) error) error {
	return database.WithTx(ctx, p.db, func(sqlTx *sql.Tx) error {
		customer, err := getCustomer(ctx, sqlTx, customerID, true)
		if err != nil {
			return err
		}
		return fn(&pgTx{tx: sqlTx, customer: customer})
	})
}

type pgTx struct {
	tx       *sql.Tx
	customer *models.Customer
}

func (t *pgTx) Customer() *models.Customer {
	return t.customer
}

func (t *pgTx) ListLoans(ctx context.Context) ([]models.Loan, error) {
	return listLoans(ctx, t.tx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE customer_id = $1
		ORDER BY loan_id`, t.customer.ID)
}

func (t *pgTx) CreateLoan(ctx context.Context, loan *models.Loan) error {
	loan.CustomerID = t.customer.ID
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO loans (customer_id, loan_amount, tenure, interest_rate, monthly_repayment,
		                   emis_paid_on_time, start_date, end_date, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING loan_id, created_at`,
		loan.CustomerID, loan.LoanAmount, loan.Tenure, loan.InterestRate, loan.MonthlyRepayment,
		loan.EMIsPaidOnTime, loan.StartDate.String(), loan.EndDate.String(), loan.IsApproved,
	).Scan(&loan.ID, &loan.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func getCustomer(ctx context.Context, q queryer, customerID int64, forUpdate bool) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	c, err := scanCustomer(q.QueryRowContext(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
		}
		return nil, fmt.Errorf("query customer %d: %w", customerID, err)
	}
	return c, nil
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Age, &c.PhoneNumber,
		&c.MonthlySalary, &c.ApprovedLimit, &c.CurrentDebt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func listLoans(ctx context.Context, q queryer, query string, customerID int64) ([]models.Loan, error) {
	rows, err := q.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query loans for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}
	return loans, nil
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	var (
		l          models.Loan
		start, end time.Time
	)
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.LoanAmount, &l.Tenure, &l.InterestRate,
		&l.MonthlyRepayment, &l.EMIsPaidOnTime, &start, &end, &l.IsApproved, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.StartDate = civil.DateOf(start)
	l.EndDate = civil.DateOf(end)
	return &l, nil
}
