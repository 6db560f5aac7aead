// Package notify delivers agent notifications for new handoff tickets.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/astrotamil/support-engine/internal/observability"
	"github.com/astrotamil/support-engine/internal/storage"
)

// Notifier alerts a human agent about a new handoff ticket.
type Notifier interface {
	TicketCreated(ctx context.Context, ticket *storage.HandoffTicket, conv *storage.Conversation) error
}

// Subject returns the notification subject line for a ticket.
func Subject(ticket *storage.HandoffTicket) string {
	return fmt.Sprintf("New Customer Handoff Request - Ticket #%s", ticket.Reference())
}

// Body formats the notification body for a ticket.
func Body(ticket *storage.HandoffTicket, conv *storage.Conversation) string {
	var b strings.Builder

	b.WriteString("NEW CUSTOMER HANDOFF REQUEST\n\n")
	fmt.Fprintf(&b, "Ticket ID: %s\n", ticket.Reference())
	fmt.Fprintf(&b, "Customer Name: %s\n", ticket.Name)
	fmt.Fprintf(&b, "Contact Number: %s\n", ticket.Phone)
	fmt.Fprintf(&b, "Problem Summary: %s\n", ticket.Details)
	fmt.Fprintf(&b, "Request Time: %s\n", ticket.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "Conversation ID: %s\n", ticket.ConversationID)
	fmt.Fprintf(&b, "Language: %s\n", conv.Language)
	fmt.Fprintf(&b, "Status: %s\n", ticket.Status)
	b.WriteString("\nPlease contact the customer as soon as possible.\n")

	return b.String()
}

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SMTPNotifier sends ticket notifications by email.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger *observability.Logger
}

// NewSMTPNotifier creates an SMTPNotifier.
func NewSMTPNotifier(cfg SMTPConfig, logger *observability.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger.WithComponent("notify")}
}

// TicketCreated emails the configured agent address about the ticket.
func (n *SMTPNotifier) TicketCreated(ctx context.Context, ticket *storage.HandoffTicket, conv *storage.Conversation) error {
	if n.cfg.To == "" {
		n.logger.Warn().
			Str("ticket_id", ticket.ID.String()).
			Msg("agent email not configured, ticket created but not notified")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.cfg.From, n.cfg.To, Subject(ticket), Body(ticket, conv))

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{n.cfg.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send handoff email: %w", err)
	}

	n.logger.Info().
		Str("ticket_id", ticket.ID.String()).
		Str("recipient", n.cfg.To).
		Msg("handoff notification sent")

	return nil
}

// LogNotifier writes ticket notifications to the log only. Used in
// development when no SMTP server is configured.
type LogNotifier struct {
	logger *observability.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *observability.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithComponent("notify")}
}

// TicketCreated logs the ticket details.
func (n *LogNotifier) TicketCreated(ctx context.Context, ticket *storage.HandoffTicket, conv *storage.Conversation) error {
	n.logger.Info().
		Str("ticket_id", ticket.ID.String()).
		Str("reference", ticket.Reference()).
		Str("customer", ticket.Name).
		Str("phone", ticket.Phone).
		Msg("handoff ticket created")
	return nil
}
