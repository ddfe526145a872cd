// Package notify sends plan summaries to the person a plan is shared with.
package notify

import (
	"bytes"
	"context"
	"fmt"

	"github.com/iwvelando/payment-planner/internal/config"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Summary is the content of a plan summary message.
type Summary struct {
	PlanID string
	Report planner.Report
}

// Notifier delivers plan summaries.
type Notifier interface {
	SendPlanSummary(ctx context.Context, email string, summary Summary) error
}

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier e-mails plan summaries through an SMTP relay.
type SMTPNotifier struct {
	sender sender
	from   string
	logger *zap.Logger
}

// NewSMTPNotifier creates a notifier for the configured relay.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPNotifier{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// SendPlanSummary renders the report as text and mails it. The relay call
// itself cannot be cancelled; a context that is already done aborts before
// dialling.
func (n *SMTPNotifier) SendPlanSummary(ctx context.Context, email string, summary Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := output.Pretty(&body, summary.Report); err != nil {
		return fmt.Errorf("failed to render plan summary: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject(summary))
	m.SetBody("text/plain", body.String())

	if err := n.sender.DialAndSend(m); err != nil {
		n.logger.Warn("failed to send plan summary",
			zap.String("op", "notify.SendPlanSummary"),
			zap.String("plan", summary.PlanID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send plan summary: %w", err)
	}
	return nil
}

func subject(summary Summary) string {
	if summary.Report.Name == "" {
		return "Payment plan summary"
	}
	return fmt.Sprintf("Payment plan summary: %s", summary.Report.Name)
}

// LogNotifier records summaries in the log instead of sending them. It is
// used when SMTP is disabled.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// SendPlanSummary logs the summary.
func (n *LogNotifier) SendPlanSummary(_ context.Context, email string, summary Summary) error {
	n.logger.Info("plan summary not sent, SMTP disabled",
		zap.String("op", "notify.LogNotifier.SendPlanSummary"),
		zap.String("plan", summary.PlanID),
		zap.String("recipient", email),
		zap.String("target", summary.Report.Target.StringFixed(2)),
	)
	return nil
}
