// internal/workers/credit/create-loan/handler.go
package createloan

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

const TaskType = "create-loan"

type LoanCreator interface {
	CreateLoan(ctx context.Context, req service.EligibilityRequest) (*service.Outcome, error)
}

type Handler struct {
	config       *Config
	creator      LoanCreator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, creator LoanCreator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		creator:      creator,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	out, err := h.creator.CreateLoan(ctx, service.EligibilityRequest{
		CustomerID:   input.CustomerID,
		LoanAmount:   input.LoanAmount,
		InterestRate: input.InterestRate,
		Tenure:       input.Tenure,
	})
	if err != nil {
		return nil, err
	}

	res := out.Result
	output := &Output{
		CustomerID:            res.CustomerID,
		LoanApproved:          res.Approved,
		Message:               res.Reason,
		CorrectedInterestRate: res.CorrectedRate,
		CreditScore:           res.Score,
	}
	if out.Loan != nil {
		id := out.Loan.ID
		emi := out.Loan.MonthlyRepayment
		output.LoanID = &id
		output.MonthlyInstallment = &emi
		output.StartDate = out.Loan.StartDate.String()
		output.EndDate = out.Loan.EndDate.String()
		output.Notifications = out.Notifications
	}
	return output, nil
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
		// The loan is already committed; a retried job re-evaluates against it.
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"loanId": output.LoanID,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":       job.Key,
		"customerId":   output.CustomerID,
		"loanApproved": output.LoanApproved,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
