package users

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Handler serves the /api/user endpoints.
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

// MountRoutes attaches the /api/user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/notifications", h.listNotifications)
	r.Patch("/notifications/{id}/read", h.markRead)
	r.Get("/tasks", h.listTasks)
	r.Post("/tasks", h.createTask)
	r.Patch("/tasks/{id}", h.updateTask)
}

type notificationView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	ActionURL *string   `json:"actionUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newNotificationView(n Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		ActionURL: n.ActionURL,
		CreatedAt: n.CreatedAt,
	}
}

type taskView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     time.Time `json:"dueDate"`
	AssignedBy  int64     `json:"assignedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newTaskView(t Task) taskView {
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		AssignedBy:  t.AssignedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate" validate:"required"`
}

type updateTaskRequest struct {
	Status      *string    `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	page, limit := pageParams(r, 20)

	notifications, total, err := h.service.Notifications(r.Context(), id.UserID, page, limit)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, newNotificationView(n))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"notifications": views,
		"pagination":    shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	notifID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	n, err := h.service.MarkNotificationRead(r.Context(), notifID, id.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":      "Notification marked as read",
		"notification": newNotificationView(n),
	})
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	page, limit := pageParams(r, 20)
	filter := TaskFilter{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
		Page:     page,
		Limit:    limit,
	}

	tasks, total, err := h.service.Tasks(r.Context(), id.UserID, filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"tasks":      views,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	task, err := h.service.CreateTask(r.Context(), id.UserID, CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task":    newTaskView(task),
	})
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	taskID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	task, err := h.service.UpdateTask(r.Context(), taskID, id.UserID, UpdateTaskInput{
		Status:      req.Status,
		Priority:    req.Priority,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Task updated successfully",
		"task":    newTaskView(task),
	})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.RespondError(w, shared.Invalid("id", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultLimit
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
