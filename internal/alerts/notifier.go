package alerts

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

// sendFunc matches smtp.SendMail so tests can capture the outbound message.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Notifier emails the supervisor when critical stock counts cross the
// configured threshold. Delivery failures are logged, never fatal: stock
// alerts are advisory and must not break the pipeline.
type Notifier struct {
	cfg  config.AlertsConfig
	logg *logger.Logger
	send sendFunc
}

// NewNotifier builds a notifier. A nil logger is rejected.
func NewNotifier(cfg config.AlertsConfig, logg *logger.Logger) (*Notifier, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Notifier{cfg: cfg, logg: logg, send: smtp.SendMail}, nil
}

// NotifyCriticalItems sends one alert listing every critical item, provided
// the count reaches the configured threshold. It reports whether a message
// went out.
func (n *Notifier) NotifyCriticalItems(ctx context.Context, items []models.InventoryItem) bool {
	if !n.shouldSend(ctx, len(items)) {
		return false
	}

	subject := fmt.Sprintf("CRITICAL ALERT: %d Items at Critical Stock Levels", len(items))
	var b strings.Builder
	fmt.Fprintf(&b,
		"URGENT: Critical Stock Alert\n\n"+
			"%d items have reached critical stock levels and require immediate attention:\n\n",
		len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "  %s: stock %d, safety stock %d, reorder point %d\n",
			item.ProductID, item.CurrentStock, item.SafetyStock, item.ReorderPoint)
	}
	b.WriteString("\nPlease log into the supply chain dashboard to review and take action.\n\n" +
		"This is an automated alert.\n")
	return n.deliver(ctx, subject, b.String())
}

func (n *Notifier) shouldSend(ctx context.Context, criticalCount int) bool {
	if !n.cfg.Enabled || criticalCount < n.cfg.CriticalThreshold {
		return false
	}
	if n.cfg.Username == "" || n.cfg.Password == "" || n.cfg.SupervisorEmail == "" {
		n.logg.Warn(ctx, "critical stock alert skipped, smtp credentials not configured")
		return false
	}
	return true
}

func (n *Notifier) deliver(ctx context.Context, subject, body string) bool {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		n.cfg.Username, n.cfg.SupervisorEmail, subject, body,
	)

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)

	if err := n.send(addr, auth, n.cfg.Username, []string{n.cfg.SupervisorEmail}, []byte(msg)); err != nil {
		n.logg.Warn(n.logg.WithField(ctx, "error", err.Error()), "critical stock alert delivery failed")
		return false
	}
	n.logg.Info(n.logg.WithField(ctx, "recipient", n.cfg.SupervisorEmail), "critical stock alert sent")
	return true
}
