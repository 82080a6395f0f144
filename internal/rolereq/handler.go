package rolereq

import (
	"context"
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

// Handler serves the /api/role-requests endpoints.
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

// MountRoutes attaches the /api/role-requests routes. The admin-only
// subset is guarded by role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/mine", h.mine)

	r.Group(func(r chi.Router) {
		r.Use(rbac.Require(shared.RoleAdmin))
		r.Get("/", h.listAll)
		r.Post("/{requestID}/approve", h.approve)
		r.Post("/{requestID}/decline", h.decline)
	})
}

type createRequest struct {
	RequestedRole string `json:"requestedRole" validate:"required"`
	Message       string `json:"message"`
}

type requestView struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	UserName      string     `json:"userName,omitempty"`
	UserEmail     string     `json:"userEmail,omitempty"`
	RequestedRole string     `json:"requestedRole"`
	Message       string     `json:"message"`
	Status        Status     `json:"status"`
	DecidedBy     *int64     `json:"decidedBy,omitempty"`
	DecidedAt     *time.Time `json:"decidedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func newRequestView(rr RoleRequest) requestView {
	return requestView{
		ID:            rr.ID,
		UserID:        rr.UserID,
		UserName:      rr.UserName,
		UserEmail:     rr.UserEmail,
		RequestedRole: rr.RequestedRole,
		Message:       rr.Message,
		Status:        rr.Status,
		DecidedBy:     rr.DecidedBy,
		DecidedAt:     rr.DecidedAt,
		CreatedAt:     rr.CreatedAt,
	}
}

func viewList(requests []RoleRequest) []requestView {
	views := make([]requestView, 0, len(requests))
	for _, rr := range requests {
		views = append(views, newRequestView(rr))
	}
	return views
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	created, err := h.service.Request(r.Context(), id, req.RequestedRole, req.Message)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newRequestView(created))
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	requests, err := h.service.Mine(r.Context(), id.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": viewList(requests)})
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	requests, total, err := h.service.All(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list role requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      viewList(requests),
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Approved", h.service.Approve)
}

func (h *Handler) decline(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Declined", h.service.Decline)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, message string,
	fn func(context.Context, shared.Identity, int64) (RoleRequest, error)) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	requestID, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Invalid("requestID", "request id must be an integer"))
		return
	}

	decided, err := fn(r.Context(), id, requestID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": message,
		"request": newRequestView(decided),
	})
}

func validationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return shared.Invalid(first.Field(), "failed validation on "+first.Tag())
	}
	return shared.Invalid("body", "invalid request")
}
