package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-parfum-store.git/internal/redisx"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no active session")
)

type Admin struct {
	ID           string
	Email        string
	PasswordHash string
}

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (Admin, error)
}

type AdminRepo struct{ DB *pgxpool.Pool }

func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	err := r.DB.QueryRow(ctx,
		`SELECT id, email, password_hash FROM admins WHERE email=$1`, email).
		Scan(&a.ID, &a.Email, &a.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return Admin{}, err
	}
	return a, nil
}

// Manager pegang session admin di redis: token opaque -> admin id.
type Manager struct {
	Admins AdminStore
	Redis  *redis.Client
	TTL    time.Duration
}

func (m *Manager) Login(ctx context.Context, email, password string) (string, error) {
	a, err := m.Admins.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	key := fmt.Sprintf(redisx.KeySessionAdmin, token)
	if err := m.Redis.Set(ctx, key, a.ID, m.TTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Validate balikin admin id kalau token masih hidup; sekalian sliding
// refresh TTL biar admin yang lagi aktif nggak tiba-tiba logout.
func (m *Manager) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	key := fmt.Sprintf(redisx.KeySessionAdmin, token)
	adminID, err := m.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	_ = m.Redis.Expire(ctx, key, m.TTL).Err()
	return adminID, nil
}

func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	key := fmt.Sprintf(redisx.KeySessionAdmin, token)
	return m.Redis.Del(ctx, key).Err()
}

// HashPassword dipakai seeding/CLI; bukan bagian request path.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
