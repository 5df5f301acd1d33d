// internal/workers/credit/view-customer-loans/handler.go
package viewcustomerloans

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"credit-workers/internal/common/errors"
	"credit-workers/internal/common/logger"
	"credit-workers/internal/common/metrics"
	"credit-workers/internal/credit/service"
)

const TaskType = "view-customer-loans"

type LoanLister interface {
	ViewCustomerLoans(ctx context.Context, customerID int64) ([]service.LoanSummary, error)
}

type Handler struct {
	config       *Config
	lister       LoanLister
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, lister LoanLister, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		lister:       lister,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// Execute lists the customer's open loans. An empty list is a valid result.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	summaries, err := h.lister.ViewCustomerLoans(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	loans := make([]Loan, 0, len(summaries))
	for _, s := range summaries {
		loans = append(loans, Loan{
			LoanID:             s.LoanID,
			LoanAmount:         s.LoanAmount,
			IsApproved:         s.IsApproved,
			InterestRate:       s.InterestRate,
			MonthlyInstallment: s.MonthlyInstallment,
			RepaymentsLeft:     s.RepaymentsLeft,
		})
	}

	return &Output{
		CustomerID: input.CustomerID,
		Loans:      loans,
		Count:      len(loans),
	}, nil
}

func parseInput(variables string) (*Input, error) {
	result, err := inputValidator.ValidateJSON(variables)
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	if !result.Valid {
		return nil, errors.NewValidationError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey":     job.Key,
			"customerId": output.CustomerID,
			"error":      err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"customerId": output.CustomerID,
		"count":      output.Count,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
