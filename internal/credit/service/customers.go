// internal/credit/service/customers.go
package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"credit-workers/internal/common/errors"
	"credit-workers/internal/credit/eligibility"
	"credit-workers/internal/models"
)

// RegisterCustomer stores a new customer with an approved limit derived from
// the monthly income.
func (s *Service) RegisterCustomer(ctx context.Context, req RegisterRequest) (*Registration, error) {
	ctx, span := s.tracer.Start(ctx, "credit.register-customer")
	defer span.End()

	switch {
	case strings.TrimSpace(req.FirstName) == "":
		return nil, fail(span, errors.NewValidationError("firstName is required"))
	case strings.TrimSpace(req.PhoneNumber) == "":
		return nil, fail(span, errors.NewValidationError("phoneNumber is required"))
	case req.MonthlyIncome <= 0:
		return nil, fail(span, errors.NewValidationError("monthlyIncome must be greater than zero"))
	case req.Age < 0:
		return nil, fail(span, errors.NewValidationError("age must not be negative"))
	}

	c := &models.Customer{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Age:           req.Age,
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		MonthlySalary: req.MonthlyIncome,
		ApprovedLimit: eligibility.ApprovedLimit(req.MonthlyIncome),
	}

	if err := s.store.CreateCustomer(ctx, c); err != nil {
		if isAlreadyExists(err) {
			return nil, fail(span, errors.NewDuplicateCustomerError(c.PhoneNumber))
		}
		return nil, fail(span, storeError("create_customer", err, nil))
	}
	span.SetAttributes(attribute.Int64("customer.id", c.ID))

	s.logger.Info("customer registered", map[string]interface{}{
		"customerId":    c.ID,
		"approvedLimit": c.ApprovedLimit,
	})

	return &Registration{
		Customer:      c,
		Notifications: s.notifier.CustomerRegistered(ctx, c),
	}, nil
}
