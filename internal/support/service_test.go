package support

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/shared"
	"github.com/vantage-erp/vantage-erp/jobs"
)

type memSupportRepo struct {
	mu            sync.Mutex
	announcements []Announcement
	topics        []HelpTopic
	faqs          []FAQ
	feedback      []Feedback
	nextID        int64
	now           time.Time
}

func newMemSupportRepo() *memSupportRepo {
	return &memSupportRepo{nextID: 1, now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memSupportRepo) ListAnnouncements(_ context.Context, role string, page, limit int) ([]Announcement, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Announcement
	for _, a := range m.announcements {
		if a.ExpiresAt != nil && !a.ExpiresAt.After(m.now) {
			continue
		}
		targeted := false
		for _, r := range a.TargetRoles {
			if r == role {
				targeted = true
				break
			}
		}
		if targeted {
			out = append(out, a)
		}
	}
	return paginate(out, page, limit), len(out), nil
}

func (m *memSupportRepo) ListHelpTopics(_ context.Context, category, search string, page, limit int) ([]HelpTopic, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []HelpTopic
	for _, t := range m.topics {
		if category != "" && t.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(search)) {
			continue
		}
		out = append(out, t)
	}
	return paginate(out, page, limit), len(out), nil
}

func (m *memSupportRepo) BumpTopicViews(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.topics {
		for _, id := range ids {
			if m.topics[i].ID == id {
				m.topics[i].ViewCount++
			}
		}
	}
	return nil
}

func (m *memSupportRepo) ListFAQs(_ context.Context, category string, page, limit int) ([]FAQ, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []FAQ
	for _, f := range m.faqs {
		if category != "" && f.Category != category {
			continue
		}
		out = append(out, f)
	}
	return paginate(out, page, limit), len(out), nil
}

func (m *memSupportRepo) InsertFeedback(_ context.Context, f Feedback) (Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = m.nextID
	m.nextID++
	f.CreatedAt = m.now
	m.feedback = append(m.feedback, f)
	return f, nil
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type recordingMailQueue struct {
	mu   sync.Mutex
	sent []jobs.SendEmailPayload
	err  error
}

func (q *recordingMailQueue) EnqueueSendEmail(_ context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	q.sent = append(q.sent, payload)
	return &asynq.TaskInfo{ID: "test", Queue: jobs.QueueDefault}, nil
}

func supportIdentity() shared.Identity {
	return shared.Identity{UserID: 7, Email: "pat@example.com", Name: "Pat Doe", Role: shared.RoleUser}
}

func TestAnnouncementsTargetRole(t *testing.T) {
	repo := newMemSupportRepo()
	expired := repo.now.Add(-time.Hour)
	repo.announcements = []Announcement{
		{ID: 1, Title: "All hands", TargetRoles: []string{"user", "admin"}},
		{ID: 2, Title: "Finance close", TargetRoles: []string{"finance"}},
		{ID: 3, Title: "Old news", TargetRoles: []string{"user"}, ExpiresAt: &expired},
	}
	svc := NewService(repo, nil, "", nil)

	got, total, err := svc.Announcements(context.Background(), shared.RoleUser, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, got, 1)
	require.Equal(t, "All hands", got[0].Title)
}

func TestHelpTopicsBumpViewCount(t *testing.T) {
	repo := newMemSupportRepo()
	repo.topics = []HelpTopic{
		{ID: 1, Title: "Getting started", Category: "basics", ViewCount: 4},
		{ID: 2, Title: "Inventory alerts", Category: "inventory"},
	}
	svc := NewService(repo, nil, "", nil)

	got, total, err := svc.HelpTopics(context.Background(), "basics", "", 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, got, 1)
	require.Equal(t, 5, repo.topics[0].ViewCount)
	require.Equal(t, 0, repo.topics[1].ViewCount)
}

func TestSubmitFeedbackBounds(t *testing.T) {
	repo := newMemSupportRepo()
	svc := NewService(repo, nil, "", nil)
	id := supportIdentity()

	_, err := svc.SubmitFeedback(context.Background(), id, "too short", "", nil)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.SubmitFeedback(context.Background(), id, strings.Repeat("x", FeedbackMaxLen+1), "", nil)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.SubmitFeedback(context.Background(), id, "long enough message", "nonsense", nil)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSubmitFeedbackDefaultsAndMail(t *testing.T) {
	repo := newMemSupportRepo()
	mail := &recordingMailQueue{}
	svc := NewService(repo, mail, "support@vantage.example", nil)

	created, err := svc.SubmitFeedback(context.Background(), supportIdentity(), "  the dashboard chart is blank  ", "", nil)
	require.NoError(t, err)
	require.Equal(t, FeedbackGeneral, created.Category)
	require.Equal(t, "new", created.Status)
	require.Equal(t, "medium", created.Priority)
	require.Equal(t, "the dashboard chart is blank", created.Message)
	require.Equal(t, "pat@example.com", created.Email)

	require.Len(t, mail.sent, 1)
	require.Equal(t, "support@vantage.example", mail.sent[0].To)
	require.Equal(t, "New Feedback: GENERAL from Pat Doe", mail.sent[0].Subject)
	require.Contains(t, mail.sent[0].Body, "the dashboard chart is blank")
}

func TestSubmitFeedbackSurvivesMailFailure(t *testing.T) {
	repo := newMemSupportRepo()
	mail := &recordingMailQueue{err: context.DeadlineExceeded}
	svc := NewService(repo, mail, "support@vantage.example", nil)

	created, err := svc.SubmitFeedback(context.Background(), supportIdentity(), "valid feedback message", "bug", nil)
	require.NoError(t, err)
	require.Equal(t, FeedbackBug, created.Category)
	require.Len(t, repo.feedback, 1)
}

func TestAccessRequestEnqueuesEmail(t *testing.T) {
	mail := &recordingMailQueue{}
	svc := NewService(newMemSupportRepo(), mail, "support@vantage.example", nil)

	err := svc.AccessRequest(context.Background(), supportIdentity(), "finance", "need invoice visibility")
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	require.Equal(t, "Access Request: Vantage Dashboard", mail.sent[0].Subject)
	require.Contains(t, mail.sent[0].Body, "Name: Pat Doe")
	require.Contains(t, mail.sent[0].Body, "Requested Access: finance")
	require.Contains(t, mail.sent[0].Body, "need invoice visibility")
}

func TestAccessRequestDefaults(t *testing.T) {
	mail := &recordingMailQueue{}
	svc := NewService(newMemSupportRepo(), mail, "support@vantage.example", nil)

	require.NoError(t, svc.AccessRequest(context.Background(), supportIdentity(), "", ""))
	require.Contains(t, mail.sent[0].Body, "Requested Access: Not specified")
	require.Contains(t, mail.sent[0].Body, "(no message provided)")
}

func TestAccessRequestRequiresMailQueue(t *testing.T) {
	svc := NewService(newMemSupportRepo(), nil, "", nil)

	err := svc.AccessRequest(context.Background(), supportIdentity(), "finance", "please")
	require.ErrorIs(t, err, shared.ErrStorageUnavailable)
}
