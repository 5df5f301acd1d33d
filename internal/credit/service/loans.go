// internal/credit/service/loans.go
package service

import (
	"context"
	stderrors "errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"credit-workers/internal/common/errors"
	"credit-workers/internal/credit/store"
)

func (s *Service) ViewLoan(ctx context.Context, loanID int64) (*LoanView, error) {
	ctx, span := s.tracer.Start(ctx, "credit.view-loan",
		trace.WithAttributes(attribute.Int64("loan.id", loanID)))
	defer span.End()

	if loanID <= 0 {
		return nil, fail(span, errors.NewValidationError("loanId must be a positive integer"))
	}

	loan, customer, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, fail(span, storeError("get_loan", err, func() *errors.StandardError {
			return errors.NewLoanNotFoundError(loanID)
		}))
	}
	return &LoanView{Loan: loan, Customer: customer}, nil
}

// ViewCustomerLoans lists the customer's approved loans that still have
// EMIs outstanding.
func (s *Service) ViewCustomerLoans(ctx context.Context, customerID int64) ([]LoanSummary, error) {
	ctx, span := s.tracer.Start(ctx, "credit.view-customer-loans",
		trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	if customerID <= 0 {
		return nil, fail(span, errors.NewValidationError("customerId must be a positive integer"))
	}

	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, fail(span, storeError("get_customer", err, func() *errors.StandardError {
			return errors.NewCustomerNotFoundError(customerID)
		}))
	}

	loans, err := s.store.ListOpenLoans(ctx, customerID)
	if err != nil {
		return nil, fail(span, storeError("list_open_loans", err, nil))
	}

	out := make([]LoanSummary, 0, len(loans))
	for i := range loans {
		l := &loans[i]
		out = append(out, LoanSummary{
			LoanID:             l.ID,
			LoanAmount:         l.LoanAmount,
			IsApproved:         l.IsApproved,
			InterestRate:       l.InterestRate,
			MonthlyInstallment: l.MonthlyRepayment,
			RepaymentsLeft:     l.RepaymentsLeft(),
		})
	}
	span.SetAttributes(attribute.Int("loans.open", len(out)))
	return out, nil
}

func isAlreadyExists(err error) bool {
	return stderrors.Is(err, store.ErrAlreadyExists)
}
