package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Service serves the per-user inbox and task list. Every operation is
// scoped to one user id; ownership checks happen in the queries.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Notifications lists the user's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, userID int64, page, limit int) ([]Notification, int, error) {
	return s.repo.ListNotifications(ctx, userID, page, limit)
}

// Notify creates a notification. Used by background jobs; the HTTP
// surface only reads notifications.
func (s *Service) Notify(ctx context.Context, userID int64, title, message string, typ NotificationType, actionURL *string) (Notification, error) {
	if title == "" || message == "" {
		return Notification{}, shared.Invalid("title", "title and message are required")
	}
	if typ == "" {
		typ = NotifyInfo
	}
	if !ValidNotificationType(string(typ)) {
		return Notification{}, shared.Invalid("type", "unknown notification type")
	}
	return s.repo.InsertNotification(ctx, Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		ActionURL: actionURL,
	})
}

// MarkNotificationRead marks a notification owned by the user as read.
// Notifications of other users present as NotFound.
func (s *Service) MarkNotificationRead(ctx context.Context, id, userID int64) (Notification, error) {
	return s.repo.MarkNotificationRead(ctx, id, userID)
}

// Tasks lists the user's tasks ordered by due date.
func (s *Service) Tasks(ctx context.Context, userID int64, filter TaskFilter) ([]Task, int, error) {
	if filter.Status != "" && !ValidTaskStatus(filter.Status) {
		return nil, 0, shared.Invalid("status", "unknown status")
	}
	if filter.Priority != "" && !ValidTaskPriority(filter.Priority) {
		return nil, 0, shared.Invalid("priority", "unknown priority")
	}
	return s.repo.ListTasks(ctx, userID, filter)
}

// CreateTask records a self-assigned task for the user.
func (s *Service) CreateTask(ctx context.Context, userID int64, in CreateTaskInput) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, shared.Invalid("title", "task title is required")
	}
	if in.DueDate == nil {
		return Task{}, shared.Invalid("dueDate", "due date is required")
	}
	priority := PriorityMedium
	if in.Priority != "" {
		if !ValidTaskPriority(in.Priority) {
			return Task{}, shared.Invalid("priority", "unknown priority")
		}
		priority = TaskPriority(in.Priority)
	}
	return s.repo.InsertTask(ctx, Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      TaskPending,
		Priority:    priority,
		DueDate:     *in.DueDate,
		AssignedBy:  userID,
	})
}

// UpdateTask applies a sparse patch to a task the user owns.
func (s *Service) UpdateTask(ctx context.Context, id, userID int64, patch UpdateTaskInput) (Task, error) {
	t, err := s.repo.GetTask(ctx, id, userID)
	if err != nil {
		return Task{}, err
	}

	if patch.Status != nil {
		if !ValidTaskStatus(*patch.Status) {
			return Task{}, shared.Invalid("status", "unknown status")
		}
		t.Status = TaskStatus(*patch.Status)
	}
	if patch.Priority != nil {
		if !ValidTaskPriority(*patch.Priority) {
			return Task{}, shared.Invalid("priority", "unknown priority")
		}
		t.Priority = TaskPriority(*patch.Priority)
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	return s.repo.UpdateTask(ctx, t)
}
