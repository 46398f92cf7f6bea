// Package mailer sends report emails through an SMTP relay, one message per
// recipient.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/j-veylop/team-usage-dashboard/internal/config"
	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/spreadsheet"
)

var (
	// ErrNoRecipients is returned when a request names no recipient.
	ErrNoRecipients = errors.New("no recipient email addresses")
	// ErrNotConfigured is returned when relay credentials are missing.
	ErrNotConfigured = errors.New("SMTP relay is not configured (set SMTP_USERNAME and SMTP_PASSWORD)")
)

const defaultMessage = "No message."

// Group is the description of the selected recipient group. The dashboard
// sends either a string or a list of strings.
type Group string

// UnmarshalJSON accepts a string, a list of strings or null.
func (g *Group) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*g = Group(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("recipients must be a string or a list of strings: %w", err)
	}
	*g = Group(strings.Join(list, ", "))
	return nil
}

// Request is one logical send, as posted to /send-email.
type Request struct {
	ToEmails       []string              `json:"to_emails"`
	Subject        string                `json:"subject"`
	Message        string                `json:"message"`
	Timestamp      string                `json:"timestamp"`
	RecipientCount int                   `json:"recipient_count"`
	Recipients     Group                 `json:"recipients"`
	DashboardURL   string                `json:"dashboard_url"`
	FromName       string                `json:"from_name"`
	FromEmail      string                `json:"from_email"`
	ReplyToName    string                `json:"reply_to_name"`
	ReplyToEmail   string                `json:"reply_to_email"`
	Attachment     *spreadsheet.Workbook `json:"attachment,omitempty"`
}

// Result reports a completed send.
type Result struct {
	SentTo []string
}

// content is the immutable payload shared by every per-recipient message.
type content struct {
	subject        string
	text           string
	html           string
	fromName       string
	fromAddress    string
	replyToName    string
	replyToAddress string
	attachmentName string
	attachment     []byte
}

// Transport delivers messages over one SMTP session.
type Transport interface {
	DialWithContext(ctx context.Context) error
	Send(messages ...*mail.Msg) error
	Close() error
}

// Mailer composes and sends report emails.
type Mailer struct {
	cfg          config.Mail
	templates    *Templates
	now          func() time.Time
	newTransport func(config.Mail) (Transport, error)
}

// New creates a mailer using relay settings and defaults from cfg.
func New(cfg config.Mail, templates *Templates) *Mailer {
	return &Mailer{
		cfg:          cfg,
		templates:    templates,
		now:          time.Now,
		newTransport: newSMTPTransport,
	}
}

// newSMTPTransport returns a go-mail client that requires STARTTLS and
// authenticates with AUTH PLAIN.
func newSMTPTransport(cfg config.Mail) (Transport, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

// Send delivers req to every recipient as a separate message. The first
// failure aborts the remaining recipients and fails the whole call.
func (m *Mailer) Send(ctx context.Context, req Request) (*Result, error) {
	recipients := cleanRecipients(req.ToEmails)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if !m.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	c, err := m.compose(req, recipients)
	if err != nil {
		return nil, err
	}

	msgs := make([]*mail.Msg, 0, len(recipients))
	for _, rcpt := range recipients {
		msg, err := c.message(rcpt)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	transport, err := m.newTransport(m.cfg)
	if err != nil {
		return nil, &SendError{Kind: KindConnection, Err: err}
	}

	logger.Info("connecting to SMTP relay", "host", m.cfg.Host, "port", m.cfg.Port)
	if err := transport.DialWithContext(ctx); err != nil {
		return nil, &SendError{Kind: classify(err), Err: err}
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logger.Warn("failed to close SMTP session", "error", err)
		}
	}()

	for i, msg := range msgs {
		rcpt := recipients[i]
		if err := transport.Send(msg); err != nil {
			logger.Error("email send failed", "recipient", rcpt, "sent", i, "total", len(msgs), "error", err)
			return nil, &SendError{Kind: classify(err), Recipient: rcpt, Err: err}
		}
		logger.Info("email sent", "recipient", rcpt, "index", i+1, "total", len(msgs))
	}

	return &Result{SentTo: recipients}, nil
}

// compose renders the bodies and the attachment once per logical send.
func (m *Mailer) compose(req Request, recipients []string) (*content, error) {
	c := &content{
		subject:        firstNonEmpty(req.Subject, m.cfg.DefaultSubject),
		fromName:       firstNonEmpty(req.FromName, m.cfg.FromName),
		fromAddress:    firstNonEmpty(req.FromEmail, m.cfg.FromAddress),
		replyToName:    firstNonEmpty(req.ReplyToName, m.cfg.ReplyToName),
		replyToAddress: firstNonEmpty(req.ReplyToEmail, m.cfg.ReplyToAddress),
	}

	if req.Attachment != nil {
		data, err := spreadsheet.Build(*req.Attachment)
		if err != nil {
			return nil, fmt.Errorf("failed to build attachment: %w", err)
		}
		c.attachment = data
		c.attachmentName = firstNonEmpty(req.Attachment.Filename, m.cfg.AttachmentName)
		c.attachmentName = spreadsheet.Workbook{Filename: c.attachmentName}.FileName()
	}

	count := req.RecipientCount
	if count == 0 {
		count = len(recipients)
	}

	text, html, err := m.templates.Render(TemplateData{
		Title:          c.subject,
		Message:        firstNonEmpty(req.Message, defaultMessage),
		Timestamp:      firstNonEmpty(req.Timestamp, m.now().Format("2006-01-02 15:04:05")),
		RecipientCount: count,
		Recipients:     firstNonEmpty(string(req.Recipients), "N/A"),
		DashboardURL:   firstNonEmpty(req.DashboardURL, m.cfg.DashboardURL),
		FromName:       c.fromName,
		AttachmentName: c.attachmentName,
	})
	if err != nil {
		return nil, err
	}
	c.text, c.html = text, html
	return c, nil
}

// message builds a fresh message addressed to rcpt alone. Attachment
// readers are created per message over the shared immutable bytes.
func (c *content) message(rcpt string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(c.fromName, c.fromAddress); err != nil {
		return nil, &SendError{Kind: KindSender, Err: err}
	}
	if err := msg.To(rcpt); err != nil {
		return nil, &SendError{Kind: KindRecipient, Recipient: rcpt, Err: err}
	}
	if c.replyToAddress != "" {
		if err := msg.ReplyToFormat(c.replyToName, c.replyToAddress); err != nil {
			return nil, &SendError{Kind: KindSender, Err: err}
		}
	}
	msg.Subject(c.subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, c.text)
	msg.AddAlternativeString(mail.TypeTextHTML, c.html)

	if c.attachment != nil {
		err := msg.AttachReader(c.attachmentName, bytes.NewReader(c.attachment),
			mail.WithFileContentType(mail.ContentType(spreadsheet.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", c.attachmentName, err)
		}
	}
	return msg, nil
}

func cleanRecipients(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
