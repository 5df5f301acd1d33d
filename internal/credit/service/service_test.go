package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"credit-workers/internal/common/errors"
	"credit-workers/internal/common/logger"
	"credit-workers/internal/credit/decisionlog"
	"credit-workers/internal/credit/eligibility"
	"credit-workers/internal/credit/store"
	"credit-workers/internal/models"
)

var evaluationTime = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type recordingLog struct {
	mu      sync.Mutex
	entries []decisionlog.Entry
	err     error
}

func (r *recordingLog) Record(_ context.Context, e decisionlog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return r.err
}

type recordingNotifier struct {
	mu         sync.Mutex
	registered []int64
	approved   []int64
}

func (n *recordingNotifier) CustomerRegistered(_ context.Context, c *models.Customer) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registered = append(n.registered, c.ID)
	return []models.Notification{{CustomerID: c.ID, Channel: models.NotificationChannelSMS, Status: models.NotificationStatusSent}}
}

func (n *recordingNotifier) LoanApproved(_ context.Context, c *models.Customer, l *models.Loan) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, l.ID)
	return []models.Notification{{CustomerID: c.ID, LoanID: l.ID, Channel: models.NotificationChannelSMS, Status: models.NotificationStatusSent}}
}

type fixture struct {
	svc      *Service
	store    *store.Memory
	log      *recordingLog
	notifier *recordingNotifier
}

func newFixture(t *testing.T, now time.Time) *fixture {
	f := &fixture{
		store:    store.NewMemory(),
		log:      &recordingLog{},
		notifier: &recordingNotifier{},
	}
	f.svc = New(f.store, logger.NewTestLogger(t),
		WithClock(fixedClock(now)),
		WithDecisionLog(f.log),
		WithNotifier(f.notifier),
	)
	f.store.Seed(models.Customer{
		ID: 7, FirstName: "Asha", LastName: "Rao", PhoneNumber: "9876543210",
		MonthlySalary: 50000, ApprovedLimit: 1800000,
	})
	return f
}

func request(amount, rate float64, tenure int) EligibilityRequest {
	return EligibilityRequest{CustomerID: 7, LoanAmount: amount, InterestRate: rate, Tenure: tenure}
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, code), "expected %s, got %v", code, err)
}

func TestCheckEligibility_NoLoans(t *testing.T) {
	f := newFixture(t, evaluationTime)

	out, err := f.svc.CheckEligibility(context.Background(), request(100000, 13, 12))
	require.NoError(t, err)

	assert.True(t, out.Result.Approved)
	assert.Equal(t, 100, out.Result.Score)
	assert.Equal(t, 13.0, out.Result.CorrectedRate)
	assert.InDelta(t, 8931.73, out.Result.Installment, 0.001)
	assert.Nil(t, out.Loan)
	assert.Empty(t, out.Notifications)

	loans, _ := f.store.ListLoans(context.Background(), 7)
	assert.Empty(t, loans, "check must not write")

	require.Len(t, f.log.entries, 1)
	assert.Equal(t, OperationCheck, f.log.entries[0].Operation)
	assert.Zero(t, f.log.entries[0].LoanID)
}

func TestCreateLoan_Approved(t *testing.T) {
	f := newFixture(t, evaluationTime)

	out, err := f.svc.CreateLoan(context.Background(), request(100000, 13, 12))
	require.NoError(t, err)
	require.NotNil(t, out.Loan)

	assert.Equal(t, int64(1), out.Loan.ID)
	assert.Equal(t, int64(7), out.Loan.CustomerID)
	assert.Equal(t, 13.0, out.Loan.InterestRate)
	assert.InDelta(t, 8931.73, out.Loan.MonthlyRepayment, 0.001)
	assert.Equal(t, 0, out.Loan.EMIsPaidOnTime)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.June, Day: 15}, out.Loan.StartDate)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.June, Day: 15}, out.Loan.EndDate)
	assert.True(t, out.Loan.IsApproved)

	assert.Equal(t, []int64{1}, f.notifier.approved)
	assert.Len(t, out.Notifications, 1)

	require.Len(t, f.log.entries, 1)
	assert.Equal(t, OperationCreate, f.log.entries[0].Operation)
	assert.Equal(t, int64(1), f.log.entries[0].LoanID)
}

func TestCreateLoan_RejectedWritesNothing(t *testing.T) {
	f := newFixture(t, evaluationTime)
	f.store.Seed(models.Customer{ID: 8, PhoneNumber: "8", MonthlySalary: 50000, ApprovedLimit: 1800000},
		models.Loan{
			ID: 100, LoanAmount: 2000000, Tenure: 120, InterestRate: 10, MonthlyRepayment: 2000,
			StartDate:  civil.Date{Year: 2022, Month: time.January, Day: 1},
			EndDate:    civil.Date{Year: 2032, Month: time.January, Day: 1},
			IsApproved: true,
		})

	req := EligibilityRequest{CustomerID: 8, LoanAmount: 100000, InterestRate: 10, Tenure: 12}
	out, err := f.svc.CreateLoan(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, out.Result.Approved)
	assert.Equal(t, 0, out.Result.Score)
	assert.Equal(t, 16.0, out.Result.CorrectedRate)
	assert.Equal(t, eligibility.ReasonLowScore, out.Result.Reason)
	assert.Nil(t, out.Loan)
	assert.Empty(t, f.notifier.approved)

	loans, _ := f.store.ListLoans(context.Background(), 8)
	assert.Len(t, loans, 1)
}

func TestCreateLoan_EndDateClampedToMonthEnd(t *testing.T) {
	f := newFixture(t, time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC))

	out, err := f.svc.CreateLoan(context.Background(), request(10000, 13, 1))
	require.NoError(t, err)
	require.NotNil(t, out.Loan)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 29}, out.Loan.EndDate)
}

func TestCreateLoan_EvaluationDateUsesLocation(t *testing.T) {
	f := newFixture(t, time.Date(2024, time.June, 15, 20, 0, 0, 0, time.UTC))
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	WithLocation(tokyo)(f.svc)

	out, err := f.svc.CreateLoan(context.Background(), request(10000, 13, 12))
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.June, Day: 16}, out.Loan.StartDate)
}

func TestCreateLoan_ConcurrentRequestsSerialise(t *testing.T) {
	f := newFixture(t, evaluationTime)

	// Each loan alone fits the EMI cap; two together do not.
	req := request(240000, 13, 12)

	const callers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.svc.CreateLoan(context.Background(), req)
			if assert.NoError(t, err) && out.Loan != nil {
				mu.Lock()
				approved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, approved)
	loans, _ := f.store.ListLoans(context.Background(), 7)
	assert.Len(t, loans, 1)
}

func TestEligibility_UnknownCustomer(t *testing.T) {
	f := newFixture(t, evaluationTime)
	req := EligibilityRequest{CustomerID: 404, LoanAmount: 1000, InterestRate: 10, Tenure: 12}

	_, err := f.svc.CheckEligibility(context.Background(), req)
	requireCode(t, err, errors.ErrCodeCustomerNotFound)

	_, err = f.svc.CreateLoan(context.Background(), req)
	requireCode(t, err, errors.ErrCodeCustomerNotFound)
	assert.Empty(t, f.log.entries)
}

func TestEligibility_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   EligibilityRequest
		field string
	}{
		{name: "zero tenure", req: request(1000, 10, 0), field: "tenure"},
		{name: "tenure too long", req: request(1000, 10, 601), field: "tenure"},
		{name: "negative amount", req: request(-5, 10, 12), field: "loanAmount"},
		{name: "rate over 100", req: request(1000, 101, 12), field: "interestRate"},
		{name: "non-positive customer", req: EligibilityRequest{LoanAmount: 1000, InterestRate: 10, Tenure: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, evaluationTime)
			_, err := f.svc.CreateLoan(context.Background(), tt.req)
			requireCode(t, err, errors.ErrCodeValidationFailed)
			if tt.field != "" {
				stdErr, _ := errors.AsStandardError(err)
				assert.Equal(t, tt.field, stdErr.Metadata["field"])
			}
		})
	}
}

func TestEligibility_DecisionLogFailureIsIgnored(t *testing.T) {
	f := newFixture(t, evaluationTime)
	f.log.err = stderrors.New("index closed")

	out, err := f.svc.CreateLoan(context.Background(), request(100000, 13, 12))
	require.NoError(t, err)
	assert.NotNil(t, out.Loan)
}

func TestRegisterCustomer(t *testing.T) {
	f := newFixture(t, evaluationTime)

	reg, err := f.svc.RegisterCustomer(context.Background(), RegisterRequest{
		FirstName: " Ravi ", LastName: "Kumar", Age: 30, MonthlyIncome: 62500, PhoneNumber: "9000000001",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ravi", reg.Customer.FirstName)
	assert.Equal(t, int64(2200000), reg.Customer.ApprovedLimit)
	assert.Equal(t, int64(62500), reg.Customer.MonthlySalary)
	assert.Equal(t, int64(8), reg.Customer.ID)
	assert.Equal(t, []int64{8}, f.notifier.registered)
	assert.Len(t, reg.Notifications, 1)
}

func TestRegisterCustomer_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
		code errors.ErrorCode
	}{
		{
			name: "duplicate phone",
			req:  RegisterRequest{FirstName: "X", MonthlyIncome: 10000, PhoneNumber: "9876543210"},
			code: errors.ErrCodeDuplicateCustomer,
		},
		{
			name: "missing first name",
			req:  RegisterRequest{MonthlyIncome: 10000, PhoneNumber: "1"},
			code: errors.ErrCodeValidationFailed,
		},
		{
			name: "zero income",
			req:  RegisterRequest{FirstName: "X", PhoneNumber: "1"},
			code: errors.ErrCodeValidationFailed,
		},
		{
			name: "missing phone",
			req:  RegisterRequest{FirstName: "X", MonthlyIncome: 10000},
			code: errors.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, evaluationTime)
			_, err := f.svc.RegisterCustomer(context.Background(), tt.req)
			requireCode(t, err, tt.code)
			assert.Empty(t, f.notifier.registered)
		})
	}
}

func TestViewLoan(t *testing.T) {
	f := newFixture(t, evaluationTime)
	created, err := f.svc.CreateLoan(context.Background(), request(100000, 13, 12))
	require.NoError(t, err)

	view, err := f.svc.ViewLoan(context.Background(), created.Loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, view.Loan.LoanAmount)
	assert.Equal(t, "Asha", view.Customer.FirstName)

	_, err = f.svc.ViewLoan(context.Background(), 999)
	requireCode(t, err, errors.ErrCodeLoanNotFound)

	_, err = f.svc.ViewLoan(context.Background(), 0)
	requireCode(t, err, errors.ErrCodeValidationFailed)
}

func TestViewCustomerLoans(t *testing.T) {
	f := newFixture(t, evaluationTime)
	f.store.Seed(models.Customer{ID: 9, PhoneNumber: "9"},
		models.Loan{ID: 1, LoanAmount: 5000, Tenure: 12, EMIsPaidOnTime: 12, IsApproved: true},
		models.Loan{ID: 2, LoanAmount: 6000, Tenure: 24, EMIsPaidOnTime: 5, InterestRate: 11, MonthlyRepayment: 280, IsApproved: true},
	)

	loans, err := f.svc.ViewCustomerLoans(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, LoanSummary{
		LoanID: 2, LoanAmount: 6000, IsApproved: true, InterestRate: 11,
		MonthlyInstallment: 280, RepaymentsLeft: 19,
	}, loans[0])

	empty, err := f.svc.ViewCustomerLoans(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.svc.ViewCustomerLoans(context.Background(), 404)
	requireCode(t, err, errors.ErrCodeCustomerNotFound)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Customer)
	return c, args.Error(1)
}

func (m *mockStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockStore) ListLoans(ctx context.Context, id int64) ([]models.Loan, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).([]models.Loan)
	return l, args.Error(1)
}

func (m *mockStore) ListOpenLoans(ctx context.Context, id int64) ([]models.Loan, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).([]models.Loan)
	return l, args.Error(1)
}

func (m *mockStore) GetLoan(ctx context.Context, id int64) (*models.Loan, *models.Customer, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*models.Loan)
	c, _ := args.Get(1).(*models.Customer)
	return l, c, args.Error(2)
}

func (m *mockStore) WithCustomerLock(ctx context.Context, id int64, fn func(store.Tx) error) error {
	return m.Called(ctx, id, fn).Error(0)
}

func TestStoreFailuresAreRetryable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *mockStore)
		call  func(s *Service) error
		code  errors.ErrorCode
	}{
		{
			name: "check read fails",
			setup: func(m *mockStore) {
				m.On("GetCustomer", mock.Anything, int64(7)).Return(nil, stderrors.New("connection refused"))
			},
			call: func(s *Service) error {
				_, err := s.CheckEligibility(context.Background(), request(1000, 10, 12))
				return err
			},
			code: errors.ErrCodeQueryExecutionFailed,
		},
		{
			name: "create lock times out",
			setup: func(m *mockStore) {
				m.On("WithCustomerLock", mock.Anything, int64(7), mock.Anything).Return(context.DeadlineExceeded)
			},
			call: func(s *Service) error {
				_, err := s.CreateLoan(context.Background(), request(1000, 10, 12))
				return err
			},
			code: errors.ErrCodeQueryTimeout,
		},
		{
			name: "register insert fails",
			setup: func(m *mockStore) {
				m.On("CreateCustomer", mock.Anything, mock.Anything).Return(stderrors.New("disk full"))
			},
			call: func(s *Service) error {
				_, err := s.RegisterCustomer(context.Background(), RegisterRequest{FirstName: "A", MonthlyIncome: 1, PhoneNumber: "1"})
				return err
			},
			code: errors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockStore{}
			tt.setup(m)
			svc := New(m, logger.NewTestLogger(t), WithClock(fixedClock(evaluationTime)))

			err := tt.call(svc)
			requireCode(t, err, tt.code)
			assert.True(t, errors.IsRetryableErrorCode(tt.code))
			m.AssertExpectations(t)
		})
	}
}
