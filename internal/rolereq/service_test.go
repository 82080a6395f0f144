package rolereq

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/auth"
	"github.com/vantage-erp/vantage-erp/internal/shared"
	"github.com/vantage-erp/vantage-erp/jobs"
)

type memRequestRepo struct {
	mu        sync.Mutex
	requests  map[int64]RoleRequest
	userRoles map[int64]string
	nextID    int64
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{
		requests:  make(map[int64]RoleRequest),
		userRoles: make(map[int64]string),
		nextID:    1,
	}
}

func (m *memRequestRepo) Create(_ context.Context, req RoleRequest) (RoleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rr := range m.requests {
		if rr.UserID == req.UserID && rr.Status == StatusPending {
			return RoleRequest{}, shared.NewError(shared.KindConflict, "userId", "you already have a pending role request")
		}
	}
	req.ID = m.nextID
	m.nextID++
	req.Status = StatusPending
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt
	m.requests[req.ID] = req
	return req, nil
}

func (m *memRequestRepo) HasPending(_ context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rr := range m.requests {
		if rr.UserID == userID && rr.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRequestRepo) Get(_ context.Context, id int64) (RoleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rr, ok := m.requests[id]
	if !ok {
		return RoleRequest{}, shared.NewError(shared.KindNotFound, "id", "role request not found")
	}
	return rr, nil
}

func (m *memRequestRepo) ListByUser(_ context.Context, userID int64) ([]RoleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RoleRequest
	for id := m.nextID - 1; id >= 1; id-- {
		if rr, ok := m.requests[id]; ok && rr.UserID == userID {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (m *memRequestRepo) ListAll(_ context.Context, page, limit int) ([]RoleRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RoleRequest
	for id := m.nextID - 1; id >= 1; id-- {
		if rr, ok := m.requests[id]; ok {
			out = append(out, rr)
		}
	}
	total := len(out)
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (m *memRequestRepo) Decide(_ context.Context, id int64, status Status, decidedBy int64) (RoleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rr, ok := m.requests[id]
	if !ok {
		return RoleRequest{}, shared.NewError(shared.KindNotFound, "id", "role request not found")
	}
	if rr.Status != StatusPending {
		return RoleRequest{}, shared.NewError(shared.KindConflict, "status", "Request already processed")
	}
	now := time.Now().UTC()
	rr.Status = status
	rr.DecidedBy = &decidedBy
	rr.DecidedAt = &now
	rr.UpdatedAt = now
	m.requests[id] = rr
	if status == StatusApproved {
		m.userRoles[rr.UserID] = rr.RequestedRole
	}
	return rr, nil
}

type stubUserSource struct {
	users map[int64]auth.User
}

func (s *stubUserSource) GetByID(_ context.Context, id int64) (auth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return auth.User{}, shared.NewError(shared.KindNotFound, "id", "user not found")
	}
	return u, nil
}

type recordingMailQueue struct {
	mu   sync.Mutex
	sent []jobs.SendEmailPayload
}

func (q *recordingMailQueue) EnqueueSendEmail(_ context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, payload)
	return &asynq.TaskInfo{ID: "test", Queue: jobs.QueueDefault}, nil
}

func requester() shared.Identity {
	return shared.Identity{UserID: 5, Email: "sam@example.com", Name: "Sam Lee", Role: shared.RoleUser}
}

func adminIdentity() shared.Identity {
	return shared.Identity{UserID: 1, Email: "admin@example.com", Name: "Admin", Role: shared.RoleAdmin}
}

func newTestService(repo *memRequestRepo, mail *recordingMailQueue) *Service {
	users := &stubUserSource{users: map[int64]auth.User{
		5: {ID: 5, Name: "Sam Lee", Email: "sam@example.com", Role: shared.RoleUser, IsActive: true},
	}}
	var mq MailQueue
	if mail != nil {
		mq = mail
	}
	return NewService(repo, users, mq, nil, nil)
}

func TestRequestValidatesRole(t *testing.T) {
	svc := newTestService(newMemRequestRepo(), nil)

	_, err := svc.Request(context.Background(), requester(), "superuser", "")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Request(context.Background(), requester(), "user", "")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestRequestNormalizesRole(t *testing.T) {
	svc := newTestService(newMemRequestRepo(), nil)

	created, err := svc.Request(context.Background(), requester(), "  Finance ", "need reports")
	require.NoError(t, err)
	require.Equal(t, "finance", created.RequestedRole)
	require.Equal(t, StatusPending, created.Status)
	require.Equal(t, "need reports", created.Message)
}

func TestRequestRejectsSecondPending(t *testing.T) {
	svc := newTestService(newMemRequestRepo(), nil)

	_, err := svc.Request(context.Background(), requester(), "inventory", "")
	require.NoError(t, err)

	_, err = svc.Request(context.Background(), requester(), "finance", "")
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestApproveGrantsRoleAndNotifies(t *testing.T) {
	repo := newMemRequestRepo()
	mail := &recordingMailQueue{}
	svc := newTestService(repo, mail)

	created, err := svc.Request(context.Background(), requester(), "finance", "quarter close")
	require.NoError(t, err)

	decided, err := svc.Approve(context.Background(), adminIdentity(), created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	require.Equal(t, int64(1), *decided.DecidedBy)
	require.NotNil(t, decided.DecidedAt)
	require.Equal(t, "finance", repo.userRoles[5])

	require.Len(t, mail.sent, 1)
	require.Equal(t, "sam@example.com", mail.sent[0].To)
	require.Equal(t, "Role request approved", mail.sent[0].Subject)
	require.Contains(t, mail.sent[0].Body, `"finance"`)
}

func TestDeclineLeavesRoleAndNotifies(t *testing.T) {
	repo := newMemRequestRepo()
	mail := &recordingMailQueue{}
	svc := newTestService(repo, mail)

	created, err := svc.Request(context.Background(), requester(), "admin", "")
	require.NoError(t, err)

	decided, err := svc.Decline(context.Background(), adminIdentity(), created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDeclined, decided.Status)
	require.Empty(t, repo.userRoles)

	require.Len(t, mail.sent, 1)
	require.Equal(t, "Role request declined", mail.sent[0].Subject)
}

func TestDecideRejectsReprocessing(t *testing.T) {
	repo := newMemRequestRepo()
	svc := newTestService(repo, nil)

	created, err := svc.Request(context.Background(), requester(), "finance", "")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), adminIdentity(), created.ID)
	require.NoError(t, err)

	_, err = svc.Decline(context.Background(), adminIdentity(), created.ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.Approve(context.Background(), adminIdentity(), 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMineListsNewestFirst(t *testing.T) {
	repo := newMemRequestRepo()
	svc := newTestService(repo, nil)

	first, err := svc.Request(context.Background(), requester(), "inventory", "")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), adminIdentity(), first.ID)
	require.NoError(t, err)
	second, err := svc.Request(context.Background(), requester(), "finance", "")
	require.NoError(t, err)

	mine, err := svc.Mine(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, second.ID, mine[0].ID)
	require.Equal(t, first.ID, mine[1].ID)
}
