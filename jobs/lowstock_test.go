package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/auth"
	"github.com/vantage-erp/vantage-erp/internal/inventory"
	"github.com/vantage-erp/vantage-erp/internal/mail"
	"github.com/vantage-erp/vantage-erp/internal/shared"
	"github.com/vantage-erp/vantage-erp/internal/users"
)

type stubProducts struct {
	low []inventory.Product
}

func (s *stubProducts) LowStock(context.Context) ([]inventory.Product, error) {
	return s.low, nil
}

type stubUsers struct {
	users []auth.User
}

func (s *stubUsers) ListByRoles(_ context.Context, roles ...shared.Role) ([]auth.User, error) {
	var out []auth.User
	for _, u := range s.users {
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []int64
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, _, _ string, _ users.NotificationType, _ *string) (users.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, userID)
	return users.Notification{UserID: userID}, nil
}

type recordingMailQueue struct {
	mu       sync.Mutex
	payloads []SendEmailPayload
}

func (q *recordingMailQueue) EnqueueSendEmail(_ context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, payload)
	return &asynq.TaskInfo{}, nil
}

func TestLowStockScanFansOut(t *testing.T) {
	products := &stubProducts{low: []inventory.Product{
		{SKU: "WID-1", Name: "Widget", QuantityOnHand: 2, ReorderLevel: 10, UnitCost: 4.5},
		{SKU: "GAD-2", Name: "Gadget", QuantityOnHand: 0, ReorderLevel: 5, UnitCost: 12},
	}}
	accounts := &stubUsers{users: []auth.User{
		{ID: 1, Role: shared.RoleAdmin},
		{ID: 2, Role: shared.RoleInventory},
		{ID: 3, Role: shared.RoleFinance},
		{ID: 4, Role: shared.RoleUser},
	}}
	notifier := &recordingNotifier{}
	queue := &recordingMailQueue{}

	scanner := NewLowStockScanner(products, accounts, notifier, queue, "support@vantage.local", nil)
	require.NoError(t, scanner.Scan(context.Background()))

	// Only admin and inventory users hear about stock.
	require.ElementsMatch(t, []int64{1, 2}, notifier.calls)

	require.Len(t, queue.payloads, 1)
	digest := queue.payloads[0]
	require.Equal(t, "support@vantage.local", digest.To)
	require.Contains(t, digest.Subject, "2 products")
	require.Contains(t, digest.Body, "WID-1")
	require.Contains(t, digest.Body, "GAD-2")
	require.Contains(t, digest.Body, "$9.00")  // 2 * 4.50
	require.Contains(t, digest.Body, "$21.00") // total at risk
}

func TestLowStockScanQuietWhenHealthy(t *testing.T) {
	notifier := &recordingNotifier{}
	queue := &recordingMailQueue{}
	scanner := NewLowStockScanner(&stubProducts{}, &stubUsers{}, notifier, queue, "support@vantage.local", nil)

	require.NoError(t, scanner.Scan(context.Background()))
	require.Empty(t, notifier.calls)
	require.Empty(t, queue.payloads)
}

type recordingSender struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func TestSendEmailHandler(t *testing.T) {
	sender := &recordingSender{}
	handler := NewSendEmailHandler(sender, nil)

	payload, err := json.Marshal(SendEmailPayload{To: "ops@vantage.local", Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, payload)))
	require.Len(t, sender.messages, 1)
	require.Equal(t, []string{"ops@vantage.local"}, sender.messages[0].To)

	// Garbage payloads are dropped without retry.
	err = handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
