package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-parfum-store.git/internal/redisx"
)

type stubAdmins struct{ admin Admin }

func (s *stubAdmins) FindByEmail(ctx context.Context, email string) (Admin, error) {
	if email == s.admin.Email {
		return s.admin, nil
	}
	return Admin{}, ErrInvalidCredentials
}

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	return &Manager{
		Admins: &stubAdmins{admin: Admin{ID: "admin-1", Email: "admin@shop.test", PasswordHash: hash}},
		Redis:  rdb,
		TTL:    time.Hour,
	}, mr
}

func TestLoginAndValidate(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	token, err := m.Login(ctx, "admin@shop.test", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, mr.Exists(fmt.Sprintf(redisx.KeySessionAdmin, token)))

	adminID, err := m.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", adminID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Login(ctx, "admin@shop.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login(ctx, "ghost@shop.test", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateExpiredSession(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	token, err := m.Login(ctx, "admin@shop.test", "s3cret")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogoutDestroysSession(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	token, err := m.Login(ctx, "admin@shop.test", "s3cret")
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, token))

	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMiddleware(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	token, err := m.Login(ctx, "admin@shop.test", "s3cret")
	require.NoError(t, err)

	var gotAdmin string
	h := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAdmin = AdminID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// tanpa token
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// via cookie
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "admin-1", gotAdmin)

	// via bearer
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// token ngawur
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-session")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
