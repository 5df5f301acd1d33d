// internal/credit/decisionlog/decisionlog.go
package decisionlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"credit-workers/internal/common/errors"
	"credit-workers/internal/common/logger"
	"credit-workers/internal/credit/eligibility"
)

// Entry is one audited eligibility decision.
type Entry struct {
	ID            string                     `json:"id"`
	Operation     string                     `json:"operation"`
	CustomerID    int64                      `json:"customerId"`
	LoanID        int64                      `json:"loanId,omitempty"`
	LoanAmount    float64                    `json:"loanAmount"`
	Tenure        int                        `json:"tenure"`
	RequestedRate float64                    `json:"requestedRate"`
	CorrectedRate float64                    `json:"correctedRate"`
	Installment   float64                    `json:"monthlyInstallment"`
	Score         int                        `json:"creditScore"`
	RawScore      float64                    `json:"rawScore"`
	Band          eligibility.Band           `json:"band"`
	Approved      bool                       `json:"approved"`
	Reason        string                     `json:"reason"`
	Breakdown     eligibility.ScoreBreakdown `json:"breakdown"`
	EvaluatedOn   string                     `json:"evaluatedOn"`
	RecordedAt    time.Time                  `json:"recordedAt"`
}

// FromResult builds an entry for a finished evaluation.
func FromResult(operation string, principal float64, res *eligibility.Result, loanID int64) Entry {
	return Entry{
		Operation:     operation,
		CustomerID:    res.CustomerID,
		LoanID:        loanID,
		LoanAmount:    principal,
		Tenure:        res.Tenure,
		RequestedRate: res.RequestedRate,
		CorrectedRate: res.CorrectedRate,
		Installment:   res.Installment,
		Score:         res.Score,
		RawScore:      res.RawScore,
		Band:          res.Band,
		Approved:      res.Approved,
		Reason:        res.Reason,
		Breakdown:     res.Breakdown,
		EvaluatedOn:   res.EvaluatedOn.String(),
	}
}

// Recorder persists decision entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Elasticsearch indexes entries into a single index, one document each.
type Elasticsearch struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearch(client *elasticsearch.Client, index string, log logger.Logger) *Elasticsearch {
	return &Elasticsearch{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "decision-log", "index": index}),
	}
}

func (r *Elasticsearch) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}

	body, err := json.Marshal(e)
	if err != nil {
		return errors.NewDecisionIndexFailedError(r.index, err)
	}

	res, err := r.client.Index(
		r.index,
		bytes.NewReader(body),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(e.ID),
	)
	if err != nil {
		return errors.NewDecisionIndexFailedError(r.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return errors.NewDecisionIndexFailedError(r.index, fmt.Errorf("%s: %s", res.Status(), msg))
	}

	r.logger.Debug("decision indexed", map[string]interface{}{
		"decisionId": e.ID,
		"customerId": e.CustomerID,
	})
	return nil
}

// Nop discards entries. Used when Elasticsearch is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
