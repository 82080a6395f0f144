package rolereq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/vantage-erp/vantage-erp/internal/auth"
	"github.com/vantage-erp/vantage-erp/internal/shared"
	"github.com/vantage-erp/vantage-erp/jobs"
)

// MailQueue enqueues outbound email.
type MailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// UserSource looks up the requester so decisions can be emailed.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (auth.User, error)
}

// Service manages the role-request workflow: users ask for elevated
// roles, administrators approve or decline.
type Service struct {
	repo   Repository
	users  UserSource
	mail   MailQueue
	audit  AuditPort
	logger *slog.Logger
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// NewService builds Service. mail and audit may be nil.
func NewService(repo Repository, users UserSource, mail MailQueue, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, users: users, mail: mail, audit: audit, logger: logger}
}

// grantableRoles are the roles a user may request. The base role is
// what everyone already has; nobody requests a downgrade here.
var grantableRoles = map[string]struct{}{
	string(shared.RoleAdmin):     {},
	string(shared.RoleFinance):   {},
	string(shared.RoleInventory): {},
}

// Request files a new role request for the caller. A user may have at
// most one pending request at a time.
func (s *Service) Request(ctx context.Context, id shared.Identity, requestedRole, message string) (RoleRequest, error) {
	requestedRole = strings.ToLower(strings.TrimSpace(requestedRole))
	if _, ok := grantableRoles[requestedRole]; !ok {
		return RoleRequest{}, shared.Invalid("requestedRole", "invalid requested role")
	}
	pending, err := s.repo.HasPending(ctx, id.UserID)
	if err != nil {
		return RoleRequest{}, err
	}
	if pending {
		return RoleRequest{}, shared.NewError(shared.KindConflict, "userId", "you already have a pending role request")
	}

	created, err := s.repo.Create(ctx, RoleRequest{
		UserID:        id.UserID,
		RequestedRole: requestedRole,
		Message:       strings.TrimSpace(message),
	})
	if err != nil {
		return RoleRequest{}, err
	}
	s.recordAudit(ctx, "rolereq:create", created.ID, map[string]any{"requestedRole": requestedRole})
	return created, nil
}

// Mine lists the caller's own requests, newest first.
func (s *Service) Mine(ctx context.Context, userID int64) ([]RoleRequest, error) {
	return s.repo.ListByUser(ctx, userID)
}

// All lists every request with the requester joined in. Admin only;
// the handler enforces that.
func (s *Service) All(ctx context.Context, page, limit int) ([]RoleRequest, int, error) {
	return s.repo.ListAll(ctx, page, limit)
}

// Approve grants the requested role. The role change and the request
// decision commit together.
func (s *Service) Approve(ctx context.Context, id shared.Identity, requestID int64) (RoleRequest, error) {
	decided, err := s.repo.Decide(ctx, requestID, StatusApproved, id.UserID)
	if err != nil {
		return RoleRequest{}, err
	}
	s.recordAudit(ctx, "rolereq:approve", decided.ID, map[string]any{"requestedRole": decided.RequestedRole})
	s.notifyDecision(ctx, decided)
	return decided, nil
}

// Decline rejects the request without touching the user's role.
func (s *Service) Decline(ctx context.Context, id shared.Identity, requestID int64) (RoleRequest, error) {
	decided, err := s.repo.Decide(ctx, requestID, StatusDeclined, id.UserID)
	if err != nil {
		return RoleRequest{}, err
	}
	s.recordAudit(ctx, "rolereq:decline", decided.ID, map[string]any{"requestedRole": decided.RequestedRole})
	s.notifyDecision(ctx, decided)
	return decided, nil
}

// notifyDecision emails the requester about the outcome. Best effort;
// the decision already committed.
func (s *Service) notifyDecision(ctx context.Context, rr RoleRequest) {
	if s.mail == nil || s.users == nil {
		return
	}
	user, err := s.users.GetByID(ctx, rr.UserID)
	if err != nil {
		s.logger.Warn("role request notify: lookup requester", slog.Int64("userId", rr.UserID), slog.Any("error", err))
		return
	}

	verdict := "approved"
	detail := fmt.Sprintf("You now have the %q role. Sign in again to pick up the new permissions.", rr.RequestedRole)
	if rr.Status == StatusDeclined {
		verdict = "declined"
		detail = "Your current role is unchanged. Contact an administrator if you believe this is a mistake."
	}
	payload := jobs.SendEmailPayload{
		To:      user.Email,
		Subject: fmt.Sprintf("Role request %s", verdict),
		Body: fmt.Sprintf("Hello %s,\n\nYour request for the %q role has been %s.\n\n%s\n",
			user.Name, rr.RequestedRole, verdict, detail),
	}
	if _, err := s.mail.EnqueueSendEmail(ctx, payload); err != nil {
		s.logger.Warn("role request notify: enqueue email", slog.Int64("userId", rr.UserID), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action string, requestID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if id, ok := shared.IdentityFromContext(ctx); ok {
		actorID = id.UserID
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "role_request",
		EntityID: fmt.Sprintf("%d", requestID),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
