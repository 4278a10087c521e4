package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/localmarket-hq/localmarket-backend/pkg/config"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
)

var (
	errAPIKeyRequired = errors.New("sendgrid api key is required")
	errFromRequired   = errors.New("sendgrid from address is required")
)

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Client sends transactional email through SendGrid.
type Client struct {
	send     sender
	from     string
	fromName string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithSender overrides the SendGrid transport, used by tests.
func WithSender(s sender) Option {
	return func(c *Client) {
		if s != nil {
			c.send = s
		}
	}
}

// NewClient builds the SendGrid client from configuration.
func NewClient(cfg config.SendgridConfig, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, errFromRequired
	}

	client := &Client{
		send:     sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: cfg.FromName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Send delivers a single HTML email to the recipient.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "email client not configured")
	}
	if strings.TrimSpace(to) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email is required")
	}
	if strings.TrimSpace(subject) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(c.fromName, c.from),
		subject,
		mail.NewEmail("", to),
		"",
		html,
	)

	resp, err := c.send.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}
	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid returned status %d", resp.StatusCode))
	}
	return nil
}
