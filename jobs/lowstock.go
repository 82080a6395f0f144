package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vantage-erp/vantage-erp/internal/auth"
	"github.com/vantage-erp/vantage-erp/internal/inventory"
	"github.com/vantage-erp/vantage-erp/internal/shared"
	"github.com/vantage-erp/vantage-erp/internal/users"
)

// CronDailyLowStock runs the sweep every day at 06:00 UTC.
const CronDailyLowStock = "0 6 * * *"

// ProductSource lists products at or below their reorder level.
type ProductSource interface {
	LowStock(ctx context.Context) ([]inventory.Product, error)
}

// UserSource resolves the recipients of stock alerts.
type UserSource interface {
	ListByRoles(ctx context.Context, roles ...shared.Role) ([]auth.User, error)
}

// Notifier writes in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, msg string, typ users.NotificationType, actionURL *string) (users.Notification, error)
}

// MailQueue enqueues outbound email.
type MailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// LowStockScanner performs the daily stock sweep: it notifies every
// inventory and admin user in-app and queues one digest email to the
// support inbox.
type LowStockScanner struct {
	products ProductSource
	users    UserSource
	notifier Notifier
	mail     MailQueue
	inbox    string
	logger   *slog.Logger
}

// NewLowStockScanner builds the scanner.
func NewLowStockScanner(products ProductSource, userSource UserSource, notifier Notifier, mail MailQueue, inbox string, logger *slog.Logger) *LowStockScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &LowStockScanner{
		products: products,
		users:    userSource,
		notifier: notifier,
		mail:     mail,
		inbox:    inbox,
		logger:   logger,
	}
}

// Handler adapts Scan to an Asynq task handler.
func (s *LowStockScanner) Handler() asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		return s.Scan(ctx)
	}
}

// Scan runs one sweep. A sweep with nothing low in stock is a quiet
// success; no notifications or email go out.
func (s *LowStockScanner) Scan(ctx context.Context) error {
	low, err := s.products.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("low-stock scan: %w", err)
	}
	if len(low) == 0 {
		s.logger.Info("low-stock scan clean")
		return nil
	}

	recipients, err := s.users.ListByRoles(ctx, shared.RoleAdmin, shared.RoleInventory)
	if err != nil {
		return fmt.Errorf("low-stock scan: %w", err)
	}

	title := "Low stock alert"
	note := fmt.Sprintf("%d products are at or below their reorder level", len(low))
	actionURL := "/api/inventory/low-stock"

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, recipient := range recipients {
		recipient := recipient
		g.Go(func() error {
			_, err := s.notifier.Notify(gctx, recipient.ID, title, note, users.NotifyWarning, &actionURL)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("low-stock scan notify: %w", err)
	}

	if s.mail != nil && s.inbox != "" {
		payload := SendEmailPayload{
			To:      s.inbox,
			Subject: fmt.Sprintf("Low stock: %d products need attention", len(low)),
			Body:    digestBody(low),
		}
		if _, err := s.mail.EnqueueSendEmail(ctx, payload); err != nil {
			s.logger.Warn("enqueue low-stock digest", slog.Any("error", err))
		}
	}

	s.logger.Info("low-stock scan complete",
		slog.Int("products", len(low)),
		slog.Int("recipients", len(recipients)))
	return nil
}

func digestBody(low []inventory.Product) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("The daily stock sweep flagged the following products:\n\n")
	var totalValue float64
	for _, product := range low {
		p.Fprintf(&b, "  %s  %s: %d on hand, reorder at %d, value $%.2f\n",
			product.SKU, product.Name, product.QuantityOnHand, product.ReorderLevel, product.TotalValue())
		totalValue += product.TotalValue()
	}
	p.Fprintf(&b, "\nTotal value at risk: $%.2f across %d products.\n", totalValue, len(low))
	return b.String()
}
