package support

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vantage-erp/vantage-erp/internal/shared"
	"github.com/vantage-erp/vantage-erp/jobs"
)

// MailQueue enqueues outbound email.
type MailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Service serves support content and routes feedback and access
// requests to the support inbox.
type Service struct {
	repo   Repository
	mail   MailQueue
	inbox  string
	logger *slog.Logger
}

// NewService builds Service. mail may be nil in tests; email is best
// effort and never fails the request.
func NewService(repo Repository, mail MailQueue, inbox string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, mail: mail, inbox: inbox, logger: logger}
}

// Announcements lists published, unexpired announcements targeting the
// caller's role.
func (s *Service) Announcements(ctx context.Context, role shared.Role, page, limit int) ([]Announcement, int, error) {
	return s.repo.ListAnnouncements(ctx, string(role), page, limit)
}

// HelpTopics lists published topics, optionally filtered by category
// or a title/content search. Listing counts as a view.
func (s *Service) HelpTopics(ctx context.Context, category, search string, page, limit int) ([]HelpTopic, int, error) {
	topics, total, err := s.repo.ListHelpTopics(ctx, category, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	if len(topics) > 0 {
		ids := make([]int64, 0, len(topics))
		for _, t := range topics {
			ids = append(ids, t.ID)
		}
		if err := s.repo.BumpTopicViews(ctx, ids); err != nil {
			s.logger.Warn("bump topic views", slog.Any("error", err))
		}
	}
	return topics, total, nil
}

// FAQs lists published FAQs, optionally filtered by category.
func (s *Service) FAQs(ctx context.Context, category string, page, limit int) ([]FAQ, int, error) {
	return s.repo.ListFAQs(ctx, category, page, limit)
}

// SubmitFeedback stores a feedback report and queues a copy to the
// support inbox.
func (s *Service) SubmitFeedback(ctx context.Context, id shared.Identity, message, category string, userAgent *string) (Feedback, error) {
	message = strings.TrimSpace(message)
	if len(message) < FeedbackMinLen {
		return Feedback{}, shared.Invalid("message", fmt.Sprintf("message must be at least %d characters long", FeedbackMinLen))
	}
	if len(message) > FeedbackMaxLen {
		return Feedback{}, shared.Invalid("message", fmt.Sprintf("message must not exceed %d characters", FeedbackMaxLen))
	}
	if category == "" {
		category = string(FeedbackGeneral)
	}
	if !ValidFeedbackCategory(category) {
		return Feedback{}, shared.Invalid("category", "unknown feedback category")
	}

	created, err := s.repo.InsertFeedback(ctx, Feedback{
		UserID:    id.UserID,
		Message:   message,
		Category:  FeedbackCategory(category),
		Status:    "new",
		Priority:  "medium",
		Email:     id.Email,
		UserAgent: userAgent,
	})
	if err != nil {
		return Feedback{}, err
	}

	s.enqueueMail(ctx, jobs.SendEmailPayload{
		To:      s.inbox,
		Subject: fmt.Sprintf("New Feedback: %s from %s", strings.ToUpper(category), id.Name),
		Body: fmt.Sprintf("User: %s (%s)\nCategory: %s\n\n%s\n\nFeedback ID: %d\n",
			id.Name, id.Email, category, message, created.ID),
	})
	return created, nil
}

// AccessRequest queues an email to the support inbox asking for
// additional dashboard access on behalf of the caller.
func (s *Service) AccessRequest(ctx context.Context, id shared.Identity, requestedAccess, message string) error {
	if message == "" {
		message = "(no message provided)"
	}
	if requestedAccess == "" {
		requestedAccess = "Not specified"
	}

	payload := jobs.SendEmailPayload{
		To:      s.inbox,
		Subject: "Access Request: Vantage Dashboard",
		Body: fmt.Sprintf(`Hello Admin,

The following user has requested access to additional dashboards.

Name: %s
Email: %s
User ID: %d
Current Role: %s
Requested Access: %s

Reason:
%s

Sent at: %s
`, id.Name, id.Email, id.UserID, id.Role, requestedAccess, message, time.Now().UTC().Format(time.RFC3339)),
	}
	if s.mail == nil || s.inbox == "" {
		return shared.NewError(shared.KindStorageUnavailable, "mail", "mail queue not configured")
	}
	if _, err := s.mail.EnqueueSendEmail(ctx, payload); err != nil {
		return shared.Storage(err)
	}
	return nil
}

func (s *Service) enqueueMail(ctx context.Context, payload jobs.SendEmailPayload) {
	if s.mail == nil || s.inbox == "" {
		return
	}
	if _, err := s.mail.EnqueueSendEmail(ctx, payload); err != nil {
		s.logger.Warn("enqueue support mail", slog.String("subject", payload.Subject), slog.Any("error", err))
	}
}
