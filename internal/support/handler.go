package support

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Handler serves the /api/support endpoints.
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

// MountRoutes attaches the /api/support routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/announcements", h.listAnnouncements)
	r.Get("/help-topics", h.listHelpTopics)
	r.Get("/faqs", h.listFAQs)
	r.Post("/feedback", h.submitFeedback)
	r.Post("/access-request", h.accessRequest)
}

type announcementView struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Importance  string     `json:"importance"`
	TargetRoles []string   `json:"targetRoles"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type helpTopicView struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	ViewCount int      `json:"viewCount"`
	Order     int      `json:"order"`
}

type faqView struct {
	ID         int64  `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   string `json:"category"`
	Helpful    int    `json:"helpful"`
	NotHelpful int    `json:"notHelpful"`
	Order      int    `json:"order"`
}

type feedbackRequest struct {
	Message  string `json:"message" validate:"required"`
	Category string `json:"category" validate:"omitempty,oneof=bug feature general performance"`
}

type accessRequestRequest struct {
	RequestedAccess string `json:"requestedAccess"`
	Message         string `json:"message"`
}

func (h *Handler) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	page, limit := pageParams(r)

	announcements, total, err := h.service.Announcements(r.Context(), id.Role, page, limit)
	if err != nil {
		h.logger.Error("list announcements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	views := make([]announcementView, 0, len(announcements))
	for _, a := range announcements {
		views = append(views, announcementView{
			ID:          a.ID,
			Title:       a.Title,
			Content:     a.Content,
			Author:      a.AuthorName,
			Importance:  a.Importance,
			TargetRoles: a.TargetRoles,
			ExpiresAt:   a.ExpiresAt,
			CreatedAt:   a.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"announcements": views,
		"pagination":    shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) listHelpTopics(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	topics, total, err := h.service.HelpTopics(r.Context(), q.Get("category"), q.Get("search"), page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	views := make([]helpTopicView, 0, len(topics))
	for _, t := range topics {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		views = append(views, helpTopicView{
			ID:        t.ID,
			Title:     t.Title,
			Category:  t.Category,
			Tags:      tags,
			ViewCount: t.ViewCount,
			Order:     t.Order,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"topics":     views,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) listFAQs(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	faqs, total, err := h.service.FAQs(r.Context(), r.URL.Query().Get("category"), page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	views := make([]faqView, 0, len(faqs))
	for _, f := range faqs {
		views = append(views, faqView{
			ID:         f.ID,
			Question:   f.Question,
			Answer:     f.Answer,
			Category:   f.Category,
			Helpful:    f.Helpful,
			NotHelpful: f.NotHelpful,
			Order:      f.Order,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"faqs":       views,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) submitFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	var req feedbackRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	var userAgent *string
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}
	feedback, err := h.service.SubmitFeedback(r.Context(), id, req.Message, req.Category, userAgent)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":    "Feedback submitted successfully",
		"feedbackId": feedback.ID,
	})
}

func (h *Handler) accessRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	// Both fields are optional; an empty body is a valid request.
	var req accessRequestRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}

	if err := h.service.AccessRequest(r.Context(), id, req.RequestedAccess, req.Message); err != nil {
		h.logger.Error("access request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Access request sent successfully"})
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

func validationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return shared.Invalid(first.Field(), "failed validation on "+first.Tag())
	}
	return shared.Invalid("body", "invalid request")
}
