package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

type emailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Service delivers buyer-facing notifications. Every send is best-effort:
// failures are logged and never propagated to the calling flow.
type Service struct {
	email emailSender
	log   *logger.Logger
}

// NewService builds the notification service.
func NewService(email emailSender, log *logger.Logger) (*Service, error) {
	if email == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{email: email, log: log}, nil
}

// OrderConfirmed emails the buyer a summary of one materialized order.
func (s *Service) OrderConfirmed(ctx context.Context, order *models.Order, buyerEmail string) {
	if order == nil {
		return
	}
	logCtx := s.log.WithOrderID(ctx, order.ID.String())
	if buyerEmail == "" {
		s.log.Warn(logCtx, "order confirmation skipped, buyer email unknown")
		return
	}

	subject := fmt.Sprintf("Order %s confirmed", shortOrderRef(order))
	if err := s.email.Send(ctx, buyerEmail, subject, confirmationBody(order)); err != nil {
		s.log.Error(logCtx, "order confirmation email failed", err)
		return
	}
	s.log.Info(logCtx, "order confirmation email sent")
}

func shortOrderRef(order *models.Order) string {
	id := order.ID.String()
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func confirmationBody(order *models.Order) string {
	var sb strings.Builder
	sb.WriteString("<h2>Thanks for your order!</h2>")
	sb.WriteString("<p>Your payment was received and the supplier has been notified.</p>")
	sb.WriteString("<ul>")
	for _, item := range order.Items {
		sb.WriteString(fmt.Sprintf(
			"<li>%s &times; %d &ndash; $%s</li>",
			item.Name, item.Quantity, item.PriceAtPurchase.StringFixed(2),
		))
	}
	sb.WriteString("</ul>")
	sb.WriteString(fmt.Sprintf("<p><strong>Total: $%s</strong></p>", order.TotalAmount.StringFixed(2)))
	return sb.String()
}
