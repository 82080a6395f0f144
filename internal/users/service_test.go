package users

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

type memUserDataRepo struct {
	mu            sync.Mutex
	nextNotifID   int64
	nextTaskID    int64
	notifications map[int64]Notification
	tasks         map[int64]Task
}

func newMemUserDataRepo() *memUserDataRepo {
	return &memUserDataRepo{
		nextNotifID:   1,
		nextTaskID:    1,
		notifications: make(map[int64]Notification),
		tasks:         make(map[int64]Task),
	}
}

func (r *memUserDataRepo) ListNotifications(_ context.Context, userID int64, page, limit int) ([]Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for id := r.nextNotifID - 1; id >= 1; id-- {
		if n, ok := r.notifications[id]; ok && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (r *memUserDataRepo) InsertNotification(_ context.Context, n Notification) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextNotifID
	n.CreatedAt = time.Now().UTC()
	r.nextNotifID++
	r.notifications[n.ID] = n
	return n, nil
}

func (r *memUserDataRepo) MarkNotificationRead(_ context.Context, id, userID int64) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return Notification{}, shared.NewError(shared.KindNotFound, "id", "notification not found")
	}
	n.Read = true
	r.notifications[id] = n
	return n, nil
}

func (r *memUserDataRepo) ListTasks(_ context.Context, userID int64, filter TaskFilter) ([]Task, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Task
	for id := int64(1); id < r.nextTaskID; id++ {
		t, ok := r.tasks[id]
		if !ok || t.UserID != userID {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(t.Priority) != filter.Priority {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (r *memUserDataRepo) InsertTask(_ context.Context, t Task) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	t.ID = r.nextTaskID
	t.CreatedAt = now
	t.UpdatedAt = now
	r.nextTaskID++
	r.tasks[t.ID] = t
	return t, nil
}

func (r *memUserDataRepo) UpdateTask(_ context.Context, t Task) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return Task{}, shared.NewError(shared.KindNotFound, "id", "task not found")
	}
	t.UpdatedAt = time.Now().UTC()
	r.tasks[t.ID] = t
	return t, nil
}

func (r *memUserDataRepo) GetTask(_ context.Context, id, userID int64) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return Task{}, shared.NewError(shared.KindNotFound, "id", "task not found")
	}
	return t, nil
}

func newUserDataService(t *testing.T) (*Service, *memUserDataRepo) {
	t.Helper()
	repo := newMemUserDataRepo()
	return NewService(repo, nil), repo
}

func timePtr(t time.Time) *time.Time { return &t }

func TestMarkNotificationReadIsOwnerScoped(t *testing.T) {
	svc, _ := newUserDataService(t)
	ctx := context.Background()

	n, err := svc.Notify(ctx, 1, "Low stock", "3 products need attention", NotifyWarning, nil)
	require.NoError(t, err)
	require.False(t, n.Read)

	// Another user cannot read it, and cannot tell it exists.
	_, err = svc.MarkNotificationRead(ctx, n.ID, 2)
	require.ErrorIs(t, err, shared.ErrNotFound)

	read, err := svc.MarkNotificationRead(ctx, n.ID, 1)
	require.NoError(t, err)
	require.True(t, read.Read)
}

func TestNotifyDefaultsToInfo(t *testing.T) {
	svc, _ := newUserDataService(t)

	n, err := svc.Notify(context.Background(), 1, "Title", "Message", "", nil)
	require.NoError(t, err)
	require.Equal(t, NotifyInfo, n.Type)

	_, err = svc.Notify(context.Background(), 1, "", "Message", NotifyInfo, nil)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateTaskRequiresTitleAndDueDate(t *testing.T) {
	svc, _ := newUserDataService(t)
	ctx := context.Background()
	due := time.Now().Add(48 * time.Hour)

	_, err := svc.CreateTask(ctx, 1, CreateTaskInput{Title: "  ", DueDate: timePtr(due)})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.CreateTask(ctx, 1, CreateTaskInput{Title: "Stocktake"})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	task, err := svc.CreateTask(ctx, 1, CreateTaskInput{Title: " Stocktake ", DueDate: timePtr(due)})
	require.NoError(t, err)
	require.Equal(t, "Stocktake", task.Title)
	require.Equal(t, TaskPending, task.Status)
	require.Equal(t, PriorityMedium, task.Priority)
	require.Equal(t, int64(1), task.AssignedBy)
}

func TestUpdateTaskIsOwnerScoped(t *testing.T) {
	svc, _ := newUserDataService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, 1, CreateTaskInput{Title: "Stocktake", DueDate: timePtr(time.Now())})
	require.NoError(t, err)

	status := "completed"
	_, err = svc.UpdateTask(ctx, task.ID, 2, UpdateTaskInput{Status: &status})
	require.ErrorIs(t, err, shared.ErrNotFound)

	updated, err := svc.UpdateTask(ctx, task.ID, 1, UpdateTaskInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, TaskCompleted, updated.Status)

	bad := "archived"
	_, err = svc.UpdateTask(ctx, task.ID, 1, UpdateTaskInput{Status: &bad})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestTasksFilterByStatusAndPriority(t *testing.T) {
	svc, _ := newUserDataService(t)
	ctx := context.Background()
	due := timePtr(time.Now())

	_, err := svc.CreateTask(ctx, 1, CreateTaskInput{Title: "A", DueDate: due, Priority: "high"})
	require.NoError(t, err)
	taskB, err := svc.CreateTask(ctx, 1, CreateTaskInput{Title: "B", DueDate: due, Priority: "low"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, 2, CreateTaskInput{Title: "Other user", DueDate: due, Priority: "high"})
	require.NoError(t, err)

	status := "in-progress"
	_, err = svc.UpdateTask(ctx, taskB.ID, 1, UpdateTaskInput{Status: &status})
	require.NoError(t, err)

	tasks, total, err := svc.Tasks(ctx, 1, TaskFilter{Priority: "high"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "A", tasks[0].Title)

	tasks, _, err = svc.Tasks(ctx, 1, TaskFilter{Status: "in-progress"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "B", tasks[0].Title)

	_, _, err = svc.Tasks(ctx, 1, TaskFilter{Status: "bogus"})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}
