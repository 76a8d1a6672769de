package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/config"
	"github.com/teagang/dealership/internal/domain/models"
	client "github.com/teagang/dealership/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// Notifier tells staff about closed deals and pushes ad-hoc messages.
type Notifier interface {
	NotifyContract(ctx context.Context, contract models.Contract) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// WhatsAppNotifier sends notifications to the sales manager over the WhatsApp Cloud API.
type WhatsAppNotifier struct {
	client    client.Client
	recipient string
	logger    *zap.Logger
}

// NewWhatsAppNotifier wires a notifier that messages cfg.SalesManagerPhone.
func NewWhatsAppNotifier(cfg config.WhatsAppConfig, c client.Client, logger *zap.Logger) *WhatsAppNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppNotifier{client: c, recipient: cfg.SalesManagerPhone, logger: logger}
}

// NotifyContract sends a one-line summary of the contract.
func (n *WhatsAppNotifier) NotifyContract(ctx context.Context, contract models.Contract) error {
	return n.SendOutbound(ctx, models.OutboundMessageRequest{Message: ContractMessage(contract)})
}

// SendOutbound delivers req. An empty recipient defaults to the sales manager.
func (n *WhatsAppNotifier) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	to := req.To
	if to == "" {
		to = n.recipient
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := n.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   to,
		Body: req.Message,
	})
	if err != nil {
		return fmt.Errorf("notify %s: %w", to, err)
	}

	n.logger.Debug("notification sent", zap.String("to", to), zap.String("message_id", resp.MessageID()))
	return nil
}

// ContractMessage renders the notification text for a contract.
func ContractMessage(c models.Contract) string {
	v := c.Vehicle
	head := fmt.Sprintf("%s %s: %s <%s> took VIN %d (%d %s %s)",
		c.Kind, c.Date.Format(models.ContractDateLayout), c.CustomerName, c.CustomerEmail,
		v.VIN, v.Year, v.Make, v.Model)

	switch c.Kind {
	case models.ContractSale:
		if c.Financed() {
			return fmt.Sprintf("%s. Total $%s, financed at $%s/month.",
				head, c.TotalPrice().StringFixed(2), c.MonthlyPayment().StringFixed(2))
		}
		return fmt.Sprintf("%s. Total $%s, paid in full.", head, c.TotalPrice().StringFixed(2))
	default:
		return fmt.Sprintf("%s. Total $%s, $%s/month.",
			head, c.TotalPrice().StringFixed(2), c.MonthlyPayment().StringFixed(2))
	}
}

// Nop drops every notification. It is used when WhatsApp is not configured.
type Nop struct{}

func (Nop) NotifyContract(context.Context, models.Contract) error { return nil }

func (Nop) SendOutbound(context.Context, models.OutboundMessageRequest) error { return nil }
