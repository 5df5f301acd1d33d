// internal/credit/service/service.go
package service

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"credit-workers/internal/common/errors"
	"credit-workers/internal/common/logger"
	"credit-workers/internal/credit/decisionlog"
	"credit-workers/internal/credit/store"
	"credit-workers/internal/models"
)

// Clock returns the current instant. The evaluation date is derived from it.
type Clock func() time.Time

// Notifier delivers customer and operations notifications.
type Notifier interface {
	CustomerRegistered(ctx context.Context, c *models.Customer) []models.Notification
	LoanApproved(ctx context.Context, c *models.Customer, l *models.Loan) []models.Notification
}

type nopNotifier struct{}

func (nopNotifier) CustomerRegistered(context.Context, *models.Customer) []models.Notification {
	return nil
}

func (nopNotifier) LoanApproved(context.Context, *models.Customer, *models.Loan) []models.Notification {
	return nil
}

// Service implements the credit operations on top of a Store.
type Service struct {
	store     store.Store
	clock     Clock
	location  *time.Location
	decisions decisionlog.Recorder
	notifier  Notifier
	tracer    trace.Tracer
	logger    logger.Logger
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLocation sets the timezone the evaluation date is taken in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func WithDecisionLog(r decisionlog.Recorder) Option {
	return func(s *Service) { s.decisions = r }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(st store.Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:     st,
		clock:     time.Now,
		location:  time.UTC,
		decisions: decisionlog.Nop{},
		notifier:  nopNotifier{},
		tracer:    otel.Tracer("credit-workers/service"),
		logger:    log.WithFields(map[string]interface{}{"component": "credit-service"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// storeError converts a store failure into the shared error taxonomy.
// notFound builds the error for store.ErrNotFound and may be nil.
func storeError(op string, err error, notFound func() *errors.StandardError) error {
	if _, ok := errors.AsStandardError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, store.ErrNotFound) && notFound != nil:
		return notFound()
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewQueryTimeoutError(op)
	default:
		return errors.NewQueryExecutionFailedError(op, err)
	}
}

// fail records err on span and returns it.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
