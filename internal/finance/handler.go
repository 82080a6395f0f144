package finance

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
	"github.com/vantage-erp/vantage-erp/internal/rbac"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Handler serves the /api/finance endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes attaches the /api/finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions", h.listTransactions)
	r.Get("/transactions/{id}", h.getTransaction)
	r.Get("/metrics", h.metrics)

	r.Group(func(r chi.Router) {
		r.Use(rbac.Require(shared.RoleAdmin, shared.RoleFinance))
		r.Post("/transactions", h.createTransaction)
		r.Put("/transactions/{id}", h.updateTransaction)
		r.Delete("/transactions/{id}", h.deleteTransaction)
	})
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 50
	}

	filter := ListFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Page:     page,
		Limit:    limit,
	}
	from, to, err := dateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter.From, filter.To = from, to

	transactions, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, listResponse{
		Transactions: newTransactionViews(transactions),
		Pagination:   shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewTransactionView(t))
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	t, err := h.service.Create(r.Context(), CreateTransactionInput{
		Date:          req.Date,
		Vendor:        req.Vendor,
		Amount:        req.Amount,
		Status:        req.Status,
		Category:      req.Category,
		Description:   req.Description,
		InvoiceNumber: req.InvoiceNumber,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewTransactionView(t))
}

func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}
	var req updateTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	t, err := h.service.Update(r.Context(), id, UpdateTransactionInput{
		Date:          req.Date,
		Vendor:        req.Vendor,
		Amount:        req.Amount,
		Status:        req.Status,
		Category:      req.Category,
		Description:   req.Description,
		InvoiceNumber: req.InvoiceNumber,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewTransactionView(t))
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.Metrics(r.Context(), from, to)
	if err != nil {
		h.logger.Error("finance metrics", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) transactionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.RespondError(w, shared.Invalid("id", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func dateRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			if t, err = time.Parse("2006-01-02", start); err != nil {
				return nil, nil, shared.Invalid("startDate", "must be an RFC3339 timestamp or YYYY-MM-DD date")
			}
		}
		from = &t
	}
	if end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			if t, err = time.Parse("2006-01-02", end); err != nil {
				return nil, nil, shared.Invalid("endDate", "must be an RFC3339 timestamp or YYYY-MM-DD date")
			}
		}
		to = &t
	}
	return from, to, nil
}

func validationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return shared.Invalid(first.Field(), "failed validation on "+first.Tag())
	}
	return shared.Invalid("body", "invalid request")
}
