// internal/credit/service/eligibility.go
package service

import (
	"context"
	stderrors "errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"credit-workers/internal/common/errors"
	"credit-workers/internal/common/metrics"
	"credit-workers/internal/credit/decisionlog"
	"credit-workers/internal/credit/eligibility"
	"credit-workers/internal/credit/store"
	"credit-workers/internal/models"
)

const (
	OperationCheck  = "check-eligibility"
	OperationCreate = "create-loan"
)

// CheckEligibility evaluates req without writing anything.
func (s *Service) CheckEligibility(ctx context.Context, req EligibilityRequest) (*Outcome, error) {
	return s.decide(ctx, req, false)
}

// CreateLoan evaluates req and, on approval, stores the loan in the same
// transaction that holds the customer lock.
func (s *Service) CreateLoan(ctx context.Context, req EligibilityRequest) (*Outcome, error) {
	return s.decide(ctx, req, true)
}

func (s *Service) decide(ctx context.Context, req EligibilityRequest, materialize bool) (*Outcome, error) {
	op := OperationCheck
	if materialize {
		op = OperationCreate
	}

	ctx, span := s.tracer.Start(ctx, "credit."+op, trace.WithAttributes(
		attribute.Int64("customer.id", req.CustomerID),
		attribute.Float64("loan.amount", req.LoanAmount),
		attribute.Int("loan.tenure", req.Tenure),
	))
	defer span.End()

	if req.CustomerID <= 0 {
		return nil, fail(span, errors.NewValidationError("customerId must be a positive integer"))
	}
	if err := eligibility.Validate(req.loanRequest()); err != nil {
		return nil, fail(span, validationError(err))
	}

	var (
		out *Outcome
		err error
	)
	if materialize {
		out, err = s.evaluateAndCreate(ctx, req)
	} else {
		out, err = s.evaluateOnly(ctx, req)
	}
	if err != nil {
		return nil, fail(span, err)
	}

	res := out.Result
	span.SetAttributes(
		attribute.Int("credit.score", res.Score),
		attribute.Float64("credit.score.raw", res.RawScore),
		attribute.Bool("credit.approved", res.Approved),
		attribute.String("credit.band", string(res.Band)),
	)
	s.observe(op, res)

	var loanID int64
	if out.Loan != nil {
		loanID = out.Loan.ID
		metrics.LoansCreated.Inc()
		out.Notifications = s.notifier.LoanApproved(ctx, out.Customer, out.Loan)
	}

	if err := s.decisions.Record(ctx, decisionlog.FromResult(op, req.LoanAmount, res, loanID)); err != nil {
		s.logger.Warn("decision not recorded", map[string]interface{}{
			"customerId": req.CustomerID,
			"error":      err.Error(),
		})
	}

	s.logger.Info("eligibility evaluated", map[string]interface{}{
		"operation":     op,
		"customerId":    req.CustomerID,
		"score":         res.Score,
		"band":          string(res.Band),
		"approved":      res.Approved,
		"correctedRate": res.CorrectedRate,
		"loanId":        loanID,
	})
	return out, nil
}

func (s *Service) evaluateOnly(ctx context.Context, req EligibilityRequest) (*Outcome, error) {
	customer, err := s.store.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, storeError("get_customer", err, func() *errors.StandardError {
			return errors.NewCustomerNotFoundError(req.CustomerID)
		})
	}
	loans, err := s.store.ListLoans(ctx, req.CustomerID)
	if err != nil {
		return nil, storeError("list_loans", err, nil)
	}

	res, err := s.evaluate(customer, loans, req)
	if err != nil {
		return nil, err
	}
	return &Outcome{Customer: customer, Result: res}, nil
}

func (s *Service) evaluateAndCreate(ctx context.Context, req EligibilityRequest) (*Outcome, error) {
	var out Outcome

	err := s.store.WithCustomerLock(ctx, req.CustomerID, func(tx store.Tx) error {
		out.Customer = tx.Customer()

		loans, err := tx.ListLoans(ctx)
		if err != nil {
			return storeError("list_loans", err, nil)
		}

		res, err := s.evaluate(out.Customer, loans, req)
		if err != nil {
			return err
		}
		out.Result = res
		if !res.Approved {
			return nil
		}

		rec, clamped := eligibility.NewLoan(req.loanRequest(), res)
		if clamped {
			s.logger.Warn("loan end date clamped to month end", map[string]interface{}{
				"customerId": req.CustomerID,
				"startDate":  rec.StartDate.String(),
				"endDate":    rec.EndDate.String(),
				"tenure":     req.Tenure,
			})
		}

		loan := models.LoanFromRecord(out.Customer.ID, rec)
		if err := tx.CreateLoan(ctx, loan); err != nil {
			return errors.NewDatabaseInsertFailedError(err)
		}
		out.Loan = loan
		return nil
	})
	if err != nil {
		return nil, storeError("create_loan", err, func() *errors.StandardError {
			return errors.NewCustomerNotFoundError(req.CustomerID)
		})
	}
	return &out, nil
}

func (s *Service) evaluate(customer *models.Customer, loans []models.Loan, req EligibilityRequest) (*eligibility.Result, error) {
	today := eligibility.Today(s.clock(), s.location)
	res, err := eligibility.Evaluate(customer.Profile(), models.Records(loans), req.loanRequest(), today)
	if err != nil {
		return nil, validationError(err)
	}
	return res, nil
}

func (s *Service) observe(op string, res *eligibility.Result) {
	outcome := "rejected"
	if res.Approved {
		outcome = "approved"
	}
	metrics.CreditDecisions.WithLabelValues(op, outcome, string(res.Band)).Inc()
	metrics.CreditScore.Observe(float64(res.Score))
}

func validationError(err error) error {
	var ve *eligibility.ValidationError
	if stderrors.As(err, &ve) {
		return errors.NewValidationError(ve.Error()).WithMetadata("field", ve.Field)
	}
	return errors.NewValidationError(err.Error())
}
