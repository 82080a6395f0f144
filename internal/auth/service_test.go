package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]User)}
}

func (r *memUserRepo) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, shared.NewError(shared.KindConflict, "email", "email already registered")
		}
	}
	now := time.Now().UTC()
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.nextID++
	r.users[u.ID] = u
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, shared.NewError(shared.KindNotFound, "email", "user not found")
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.NewError(shared.KindNotFound, "id", "user not found")
	}
	return u, nil
}

func (r *memUserRepo) ListByRoles(_ context.Context, roles ...shared.Role) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []User
	for id := int64(1); id < r.nextID; id++ {
		u, ok := r.users[id]
		if !ok || !u.IsActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (r *memUserRepo) deactivate(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.IsActive = false
	r.users[id] = u
}

func newTestAuth(t *testing.T) (*Service, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	tokens := NewTokenManager("test-secret-do-not-use", time.Hour)
	return NewService(repo, tokens, nil), repo
}

func TestRegisterAssignsUserRole(t *testing.T) {
	svc, _ := newTestAuth(t)

	session, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "  Ada@Example.COM ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, shared.RoleUser, session.User.Role)
	require.Equal(t, "ada@example.com", session.User.Email)
	require.True(t, session.User.IsActive)
	require.NotEmpty(t, session.Token)
	require.NotEqual(t, "correct horse", session.User.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "long enough"})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.c", Password: "short"})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "ADA@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	session, err := svc.Login(ctx, Credentials{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	user, err := svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, user.ID)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, repo := newTestAuth(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "whatever"})
	_, wrongErr := svc.Login(ctx, Credentials{Email: "ada@example.com", Password: "wrong"})
	repo.deactivate(session.User.ID)
	_, inactiveErr := svc.Login(ctx, Credentials{Email: "ada@example.com", Password: "correct horse"})

	require.ErrorIs(t, unknownErr, shared.ErrUnauthorized)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
	require.Equal(t, unknownErr.Error(), inactiveErr.Error())
}

func TestResolveRejectsDeactivated(t *testing.T) {
	svc, repo := newTestAuth(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	repo.deactivate(session.User.ID)
	_, err = svc.Resolve(ctx, session.Token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	var got shared.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	handler := Middleware(svc)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, session.User.ID, got.UserID)
	require.Equal(t, shared.RoleUser, got.Role)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
