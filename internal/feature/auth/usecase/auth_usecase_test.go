package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc      func(user *entity.User) error
	FindByEmailFunc func(email string) (*entity.User, error)
	FindByIDFunc    func(id uint) (*entity.User, error)
	UpdateFunc      func(user *entity.User) error
}

func (m *mockUserRepository) Create(_ context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(_ context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Update(_ context.Context, user *entity.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(user)
	}
	return nil
}

// memorySessions is an in-memory SessionRepository used to exercise rotation and eviction.
type memorySessions struct {
	byID map[string]*entity.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{byID: map[string]*entity.Session{}}
}

func (m *memorySessions) Create(_ context.Context, s *entity.Session) error {
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memorySessions) FindByID(_ context.Context, id string) (*entity.Session, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memorySessions) FindByUserID(_ context.Context, userID uint) ([]*entity.Session, error) {
	var out []*entity.Session
	for _, s := range m.byID {
		if s.UserID == userID && s.IsValid() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySessions) Revoke(_ context.Context, id string) error {
	s, ok := m.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *memorySessions) RevokeAllByUserID(ctx context.Context, userID uint) error {
	for id, s := range m.byID {
		if s.UserID == userID {
			_ = m.Revoke(ctx, id)
		}
	}
	return nil
}

func (m *memorySessions) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func (m *memorySessions) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	s, _ := m.FindByUserID(ctx, userID)
	return int64(len(s)), nil
}

func (m *memorySessions) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	sessions, _ := m.FindByUserID(ctx, userID)
	var oldest *entity.Session
	for _, s := range sessions {
		if oldest == nil || s.CreatedAt.Before(oldest.CreatedAt) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.byID, oldest.ID)
	}
	return nil
}

// mockJWTGenerator is a mock implementation of JWTGenerator.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

func (m *mockJWTGenerator) Expiration() time.Duration { return 15 * time.Minute }

var testClient = ClientInfo{UserAgent: "test-agent", IPAddress: "127.0.0.1"}

func hashedUser(t *testing.T, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{ID: 1, Email: "test@example.com", Password: string(hash), FullName: "Asha Rao", InvestorID: "INV1234ABCD"}
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Run("successful signup", func(t *testing.T) {
		var created *entity.User
		repo := &mockUserRepository{
			CreateFunc: func(user *entity.User) error {
				created = user
				return nil
			},
		}
		uc := NewAuthUsecase(repo, newMemorySessions(), &mockJWTGenerator{}, Config{})

		user, err := uc.Signup(context.Background(), " Test@Example.com ", "password123", "  Asha Rao ")

		require.NoError(t, err)
		assert.Same(t, created, user)
		assert.Equal(t, "test@example.com", user.Email)
		assert.Equal(t, "Asha Rao", user.FullName)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
		assert.Regexp(t, `^INV[0-9A-F]{8}$`, user.InvestorID)
	})

	t.Run("validation failures", func(t *testing.T) {
		uc := NewAuthUsecase(&mockUserRepository{}, newMemorySessions(), &mockJWTGenerator{}, Config{})

		_, err := uc.Signup(context.Background(), "a@b.com", "short", "Asha")
		assert.ErrorIs(t, err, ErrWeakPassword)

		_, err = uc.Signup(context.Background(), "a@b.com", "password123", "   ")
		assert.ErrorIs(t, err, ErrInvalidFullName)

		_, err = uc.Signup(context.Background(), "a@b.com", "password123", strings.Repeat("x", 101))
		assert.ErrorIs(t, err, ErrInvalidFullName)
	})

	t.Run("repository create failure", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateFunc: func(*entity.User) error { return ErrEmailAlreadyExists },
		}
		uc := NewAuthUsecase(repo, newMemorySessions(), &mockJWTGenerator{}, Config{})

		_, err := uc.Signup(context.Background(), "dup@example.com", "password123", "Asha")
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	user := hashedUser(t, "password123")
	repo := &mockUserRepository{
		FindByEmailFunc: func(email string) (*entity.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, ErrUserNotFound
		},
	}

	t.Run("successful login", func(t *testing.T) {
		sessions := newMemorySessions()
		uc := NewAuthUsecase(repo, sessions, &mockJWTGenerator{}, Config{})

		pair, err := uc.Login(context.Background(), "test@example.com", "password123", testClient)

		require.NoError(t, err)
		assert.Equal(t, "mock-jwt-token", pair.AccessToken)
		assert.Len(t, pair.RefreshToken, 64)
		assert.Equal(t, int64(900), pair.ExpiresIn)

		stored, err := sessions.FindByID(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.UserID)
		assert.Equal(t, "test-agent", stored.UserAgent)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		uc := NewAuthUsecase(repo, newMemorySessions(), &mockJWTGenerator{}, Config{})

		_, err := uc.Login(context.Background(), "wrong@example.com", "password123", testClient)
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = uc.Login(context.Background(), "test@example.com", "wrong-password", testClient)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("repository failure is not masked", func(t *testing.T) {
		dbErr := errors.New("database down")
		failing := &mockUserRepository{
			FindByEmailFunc: func(string) (*entity.User, error) { return nil, dbErr },
		}
		uc := NewAuthUsecase(failing, newMemorySessions(), &mockJWTGenerator{}, Config{})

		_, err := uc.Login(context.Background(), "test@example.com", "password123", testClient)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("JWT generation failure", func(t *testing.T) {
		jwtGen := &mockJWTGenerator{
			GenerateTokenFunc: func(uint, string) (string, error) { return "", errors.New("failed to sign token") },
		}
		uc := NewAuthUsecase(repo, newMemorySessions(), jwtGen, Config{})

		_, err := uc.Login(context.Background(), "test@example.com", "password123", testClient)
		assert.EqualError(t, err, "failed to generate token: failed to sign token")
	})

	t.Run("oldest session evicted beyond the limit", func(t *testing.T) {
		sessions := newMemorySessions()
		uc := NewAuthUsecase(repo, sessions, &mockJWTGenerator{}, Config{MaxSessions: 2})
		base := time.Now()
		tick := 0
		uc.now = func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}

		first, err := uc.Login(context.Background(), "test@example.com", "password123", testClient)
		require.NoError(t, err)
		_, err = uc.Login(context.Background(), "test@example.com", "password123", testClient)
		require.NoError(t, err)
		_, err = uc.Login(context.Background(), "test@example.com", "password123", testClient)
		require.NoError(t, err)

		count, _ := sessions.CountByUserID(context.Background(), user.ID)
		assert.Equal(t, int64(2), count)
		_, err = sessions.FindByID(context.Background(), first.RefreshToken)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestAuthUsecase_Refresh(t *testing.T) {
	user := hashedUser(t, "password123")
	repo := &mockUserRepository{
		FindByEmailFunc: func(string) (*entity.User, error) { return user, nil },
		FindByIDFunc:    func(uint) (*entity.User, error) { return user, nil },
	}

	t.Run("rotation revokes the old token", func(t *testing.T) {
		sessions := newMemorySessions()
		uc := NewAuthUsecase(repo, sessions, &mockJWTGenerator{}, Config{})
		login, err := uc.Login(context.Background(), user.Email, "password123", testClient)
		require.NoError(t, err)

		next, err := uc.Refresh(context.Background(), login.RefreshToken, testClient)
		require.NoError(t, err)
		assert.NotEqual(t, login.RefreshToken, next.RefreshToken)

		old, _ := sessions.FindByID(context.Background(), login.RefreshToken)
		assert.True(t, old.IsRevoked())

		// replaying the rotated token revokes everything
		_, err = uc.Refresh(context.Background(), login.RefreshToken, testClient)
		assert.ErrorIs(t, err, ErrSessionRevoked)
		current, _ := sessions.FindByID(context.Background(), next.RefreshToken)
		assert.True(t, current.IsRevoked())
	})

	t.Run("malformed and unknown tokens", func(t *testing.T) {
		uc := NewAuthUsecase(repo, newMemorySessions(), &mockJWTGenerator{}, Config{})

		_, err := uc.Refresh(context.Background(), "short", testClient)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)

		_, err = uc.Refresh(context.Background(), strings.Repeat("a", 64), testClient)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("expired session", func(t *testing.T) {
		sessions := newMemorySessions()
		token := strings.Repeat("b", 64)
		require.NoError(t, sessions.Create(context.Background(), &entity.Session{
			ID: token, UserID: user.ID, CreatedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour),
		}))
		uc := NewAuthUsecase(repo, sessions, &mockJWTGenerator{}, Config{})

		_, err := uc.Refresh(context.Background(), token, testClient)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("expiry follows the usecase clock", func(t *testing.T) {
		sessions := newMemorySessions()
		uc := NewAuthUsecase(repo, sessions, &mockJWTGenerator{}, Config{SessionTTL: time.Hour})
		login, err := uc.Login(context.Background(), user.Email, "password123", testClient)
		require.NoError(t, err)

		issued := time.Now()
		uc.now = func() time.Time { return issued.Add(2 * time.Hour) }

		_, err = uc.Refresh(context.Background(), login.RefreshToken, testClient)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestAuthUsecase_SessionCarriesInvestorID(t *testing.T) {
	user := hashedUser(t, "password123")
	repo := &mockUserRepository{
		FindByEmailFunc: func(string) (*entity.User, error) { return user, nil },
		FindByIDFunc:    func(uint) (*entity.User, error) { return user, nil },
	}
	sessions := newMemorySessions()
	uc := NewAuthUsecase(repo, sessions, &mockJWTGenerator{}, Config{})

	login, err := uc.Login(context.Background(), user.Email, "password123", testClient)
	require.NoError(t, err)
	first, err := sessions.FindByID(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "INV1234ABCD", first.InvestorID)
	assert.Equal(t, user.ID, first.UserID)

	next, err := uc.Refresh(context.Background(), login.RefreshToken, testClient)
	require.NoError(t, err)
	rotated, err := sessions.FindByID(context.Background(), next.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "INV1234ABCD", rotated.InvestorID)
}

func TestSession_ExpiredAt(t *testing.T) {
	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &entity.Session{ExpiresAt: expires}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before expiry", expires.Add(-time.Second), false},
		{"at expiry", expires, true},
		{"after expiry", expires.Add(time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ExpiredAt(tt.now))
		})
	}
}

func TestAuthUsecase_Logout(t *testing.T) {
	sessions := newMemorySessions()
	token := strings.Repeat("c", 64)
	require.NoError(t, sessions.Create(context.Background(), &entity.Session{ID: token, UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}))
	uc := NewAuthUsecase(&mockUserRepository{}, sessions, &mockJWTGenerator{}, Config{})

	require.NoError(t, uc.Logout(context.Background(), token))
	s, _ := sessions.FindByID(context.Background(), token)
	assert.True(t, s.IsRevoked())

	assert.NoError(t, uc.Logout(context.Background(), "unknown"))
}

func TestAuthUsecase_UpdateProfile(t *testing.T) {
	user := &entity.User{ID: 1, FullName: "Asha Rao"}
	var saved *entity.User
	repo := &mockUserRepository{
		FindByIDFunc: func(uint) (*entity.User, error) {
			cp := *user
			return &cp, nil
		},
		UpdateFunc: func(u *entity.User) error {
			saved = u
			return nil
		},
	}
	uc := NewAuthUsecase(repo, newMemorySessions(), &mockJWTGenerator{}, Config{})

	kyc := true
	got, err := uc.UpdateProfile(context.Background(), 1, nil, &kyc)
	require.NoError(t, err)
	assert.True(t, got.KYCVerified)
	assert.Equal(t, "Asha Rao", saved.FullName)

	empty := " "
	_, err = uc.UpdateProfile(context.Background(), 1, &empty, nil)
	assert.ErrorIs(t, err, ErrInvalidFullName)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("MAX_SESSIONS", "")

	cfg := LoadConfig()

	assert.Equal(t, 48*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.MaxSessions)
}
