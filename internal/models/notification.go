// internal/models/notification.go
package models

type Notification struct {
	ID         string `json:"id"`
	CustomerID int64  `json:"customerId"`
	LoanID     int64  `json:"loanId,omitempty"`
	Channel    string `json:"channel"` // "email", "sms"
	Recipient  string `json:"recipient"`
	Status     string `json:"status"` // "sent", "failed", "disabled"
	MessageID  string `json:"messageId,omitempty"`
	Error      string `json:"error,omitempty"`
	SentAt     string `json:"sentAt,omitempty"`
}

const (
	NotificationChannelEmail = "email"
	NotificationChannelSMS   = "sms"

	NotificationStatusSent     = "sent"
	NotificationStatusFailed   = "failed"
	NotificationStatusDisabled = "disabled"
)
