package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns transaction lifecycle and financial reporting.
type Service struct {
	repo   Repository
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service. audit may be nil in tests.
func NewService(repo Repository, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns a filtered transaction page plus the unpaginated total.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transaction, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, shared.Invalid("status", "unknown status")
	}
	if filter.Category != "" && !ValidCategory(filter.Category) {
		return nil, 0, shared.Invalid("category", "unknown category")
	}
	return s.repo.List(ctx, filter)
}

// Get loads a single transaction.
func (s *Service) Get(ctx context.Context, id int64) (Transaction, error) {
	return s.repo.Get(ctx, id)
}

// Create records a new transaction attributed to the caller.
func (s *Service) Create(ctx context.Context, in CreateTransactionInput) (Transaction, error) {
	vendor := strings.TrimSpace(in.Vendor)
	if vendor == "" {
		return Transaction{}, shared.Invalid("vendor", "vendor is required")
	}
	if in.Amount < 0 {
		return Transaction{}, shared.Invalid("amount", "amount must be >= 0")
	}
	if !ValidCategory(in.Category) {
		return Transaction{}, shared.Invalid("category", "unknown category")
	}

	status := StatusPending
	if in.Status != "" {
		if !ValidStatus(in.Status) {
			return Transaction{}, shared.Invalid("status", "unknown status")
		}
		status = Status(in.Status)
	}
	method := PayBankTransfer
	if in.PaymentMethod != "" {
		if !ValidPaymentMethod(in.PaymentMethod) {
			return Transaction{}, shared.Invalid("paymentMethod", "unknown payment method")
		}
		method = PaymentMethod(in.PaymentMethod)
	}
	date := time.Now().UTC()
	if in.Date != nil {
		date = *in.Date
	}

	var createdBy int64
	if id, ok := shared.IdentityFromContext(ctx); ok {
		createdBy = id.UserID
	}

	created, err := s.repo.Insert(ctx, Transaction{
		Date:          date,
		Vendor:        vendor,
		Amount:        in.Amount,
		Status:        status,
		Category:      Category(in.Category),
		Description:   strings.TrimSpace(in.Description),
		InvoiceNumber: normalizeInvoice(in.InvoiceNumber),
		PaymentMethod: method,
		CreatedBy:     createdBy,
	})
	if err != nil {
		return Transaction{}, err
	}
	s.recordAudit(ctx, "finance:create", created.ID, map[string]any{"vendor": created.Vendor, "amount": created.Amount})
	return created, nil
}

// Update applies a sparse patch to a transaction.
func (s *Service) Update(ctx context.Context, id int64, patch UpdateTransactionInput) (Transaction, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Transaction{}, err
	}

	if patch.Vendor != nil {
		vendor := strings.TrimSpace(*patch.Vendor)
		if vendor == "" {
			return Transaction{}, shared.Invalid("vendor", "vendor must not be empty")
		}
		t.Vendor = vendor
	}
	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return Transaction{}, shared.Invalid("amount", "amount must be >= 0")
		}
		t.Amount = *patch.Amount
	}
	if patch.Status != nil {
		if !ValidStatus(*patch.Status) {
			return Transaction{}, shared.Invalid("status", "unknown status")
		}
		t.Status = Status(*patch.Status)
	}
	if patch.Category != nil {
		if !ValidCategory(*patch.Category) {
			return Transaction{}, shared.Invalid("category", "unknown category")
		}
		t.Category = Category(*patch.Category)
	}
	if patch.PaymentMethod != nil {
		if !ValidPaymentMethod(*patch.PaymentMethod) {
			return Transaction{}, shared.Invalid("paymentMethod", "unknown payment method")
		}
		t.PaymentMethod = PaymentMethod(*patch.PaymentMethod)
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.InvoiceNumber != nil {
		t.InvoiceNumber = normalizeInvoice(patch.InvoiceNumber)
	}

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return Transaction{}, err
	}
	s.recordAudit(ctx, "finance:update", updated.ID, map[string]any{"vendor": updated.Vendor, "status": string(updated.Status)})
	return updated, nil
}

// Delete removes a transaction permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "finance:delete", id, nil)
	return nil
}

// Metrics reports completed totals per category, pending revenue as
// outstanding AR, and the net of revenue over expenses.
func (s *Service) Metrics(ctx context.Context, from, to *time.Time) (MetricsReport, error) {
	completed, err := s.repo.CategoryTotals(ctx, StatusCompleted, from, to)
	if err != nil {
		return MetricsReport{}, err
	}
	pending, err := s.repo.CategoryTotals(ctx, StatusPending, from, to)
	if err != nil {
		return MetricsReport{}, err
	}

	report := MetricsReport{
		TotalRevenue:     completed[CategoryRevenue],
		OutstandingAR:    pending[CategoryRevenue],
		TotalExpenses:    completed[CategoryExpense],
		TotalAssets:      completed[CategoryAsset],
		TotalLiabilities: completed[CategoryLiability],
	}
	report.NetProfit = report.TotalRevenue - report.TotalExpenses
	return report, nil
}

func normalizeInvoice(invoice *string) *string {
	if invoice == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*invoice)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *Service) recordAudit(ctx context.Context, action string, txID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if id, ok := shared.IdentityFromContext(ctx); ok {
		actorID = id.UserID
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "transaction",
		EntityID: fmt.Sprintf("%d", txID),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("record audit", slog.String("action", action), slog.Any("error", err))
	}
}
