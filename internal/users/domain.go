package users

import "time"

// NotificationType classifies a notification for display.
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
	NotifySuccess NotificationType = "success"
)

// ValidNotificationType reports whether s names a known type.
func ValidNotificationType(s string) bool {
	switch NotificationType(s) {
	case NotifyInfo, NotifyWarning, NotifyError, NotifySuccess:
		return true
	}
	return false
}

// Notification is a per-user inbox entry.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      NotificationType
	Read      bool
	ActionURL *string
	CreatedAt time.Time
}

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// ValidTaskStatus reports whether s names a known status.
func ValidTaskStatus(s string) bool {
	switch TaskStatus(s) {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// TaskPriority orders tasks for display.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ValidTaskPriority reports whether s names a known priority.
func ValidTaskPriority(s string) bool {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a personal work item. AssignedBy is the creating user; tasks
// created through the API are self-assigned.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     time.Time
	AssignedBy  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFilter narrows task queries for one user.
type TaskFilter struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

// CreateTaskInput carries fields for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
}

// UpdateTaskInput is a sparse patch; nil fields stay untouched.
type UpdateTaskInput struct {
	Status      *string
	Priority    *string
	Description *string
	DueDate     *time.Time
}
