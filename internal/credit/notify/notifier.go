// internal/credit/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	awsclient "credit-workers/internal/common/aws"
	"credit-workers/internal/common/config"
	"credit-workers/internal/common/errors"
	"credit-workers/internal/common/logger"
	"credit-workers/internal/models"
)

// Notifier tells customers and the operations desk about credit events.
// Delivery is best effort: failures are reported in the returned
// notifications and never fail the calling operation.
type Notifier struct {
	cfg    config.NotificationConfig
	ses    awsclient.SESAPI
	sns    awsclient.SNSAPI
	logger logger.Logger
	now    func() time.Time
}

// New builds a notifier. Either client may be nil when its channel is disabled.
func New(cfg config.NotificationConfig, ses awsclient.SESAPI, sns awsclient.SNSAPI, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		ses:    ses,
		sns:    sns,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
		now:    time.Now,
	}
}

// CustomerRegistered sends the new customer their approved limit by SMS.
func (n *Notifier) CustomerRegistered(ctx context.Context, c *models.Customer) []models.Notification {
	msg := fmt.Sprintf("Hi %s, your credit profile is ready. Approved limit: %s.",
		c.FirstName, money(float64(c.ApprovedLimit)))
	return []models.Notification{n.sms(ctx, c, 0, msg)}
}

// LoanApproved sends the customer an SMS and the operations desk an email.
func (n *Notifier) LoanApproved(ctx context.Context, c *models.Customer, l *models.Loan) []models.Notification {
	sms := fmt.Sprintf("Loan #%d approved: %s over %d months at %s%%. Monthly installment %s, first due after %s.",
		l.ID, money(l.LoanAmount), l.Tenure, decimal.NewFromFloat(l.InterestRate).String(),
		money(l.MonthlyRepayment), l.StartDate)

	subject := fmt.Sprintf("Loan #%d approved for customer %d", l.ID, c.ID)
	var body strings.Builder
	fmt.Fprintf(&body, "Customer: %s (%d)\n", c.FullName(), c.ID)
	fmt.Fprintf(&body, "Phone: %s\n", c.PhoneNumber)
	fmt.Fprintf(&body, "Amount: %s\n", money(l.LoanAmount))
	fmt.Fprintf(&body, "Tenure: %d months\n", l.Tenure)
	fmt.Fprintf(&body, "Interest rate: %s%%\n", decimal.NewFromFloat(l.InterestRate).String())
	fmt.Fprintf(&body, "Monthly installment: %s\n", money(l.MonthlyRepayment))
	fmt.Fprintf(&body, "Period: %s to %s\n", l.StartDate, l.EndDate)

	return []models.Notification{
		n.sms(ctx, c, l.ID, sms),
		n.email(ctx, c.ID, l.ID, subject, body.String()),
	}
}

func (n *Notifier) sms(ctx context.Context, c *models.Customer, loanID int64, msg string) models.Notification {
	note := n.newNotification(c.ID, loanID, models.NotificationChannelSMS, n.e164(c.PhoneNumber))
	if !n.cfg.SMS.Enabled || n.sns == nil {
		note.Status = models.NotificationStatusDisabled
		return note
	}

	id, err := awsclient.SendSMS(ctx, n.sns, note.Recipient, n.cfg.SMS.SenderID, msg)
	return n.finish(note, id, err)
}

func (n *Notifier) email(ctx context.Context, customerID, loanID int64, subject, body string) models.Notification {
	note := n.newNotification(customerID, loanID, models.NotificationChannelEmail, n.cfg.Email.OpsEmail)
	if !n.cfg.Email.Enabled || n.ses == nil || note.Recipient == "" {
		note.Status = models.NotificationStatusDisabled
		return note
	}

	id, err := awsclient.SendTextEmail(ctx, n.ses, n.cfg.Email.FromEmail, note.Recipient, subject, body)
	return n.finish(note, id, err)
}

func (n *Notifier) newNotification(customerID, loanID int64, channel, recipient string) models.Notification {
	return models.Notification{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		LoanID:     loanID,
		Channel:    channel,
		Recipient:  recipient,
	}
}

func (n *Notifier) finish(note models.Notification, messageID string, err error) models.Notification {
	if err != nil {
		sendErr := errors.NewNotificationSendFailedError(note.Channel, err)
		n.logger.Warn("notification not delivered", map[string]interface{}{
			"channel":    note.Channel,
			"customerId": note.CustomerID,
			"error":      sendErr.Error(),
		})
		note.Status = models.NotificationStatusFailed
		note.Error = err.Error()
		return note
	}

	note.Status = models.NotificationStatusSent
	note.MessageID = messageID
	note.SentAt = n.now().UTC().Format(time.RFC3339)
	return note
}

// e164 prefixes the configured country code to bare national numbers.
func (n *Notifier) e164(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") || n.cfg.SMS.CountryCode == "" {
		return phone
	}
	return n.cfg.SMS.CountryCode + strings.TrimLeft(phone, "0")
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
