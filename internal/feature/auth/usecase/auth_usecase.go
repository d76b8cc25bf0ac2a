package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	maxFullNameLength = 100

	refreshTokenBytes = 32

	defaultSessionTTL  = 7 * 24 * time.Hour
	defaultMaxSessions = 5

	// dummyHash はメールアドレスの有無で Login の処理時間が変わらないようにするためのものです。
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
type UserRepository interface {
	// Create は新しいユーザーを保存します。メールアドレスが重複していれば ErrEmailAlreadyExists。
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail は一致するユーザーがいなければ ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByID は一致するユーザーがいなければ ErrUserNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	// Update は変更可能なプロフィール項目を保存します。
	Update(ctx context.Context, user *entity.User) error
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
type JWTGenerator interface {
	GenerateToken(userID uint, email string) (string, error)
	Expiration() time.Duration
}

// Config はリフレッシュセッションの上限を定めます。
type Config struct {
	SessionTTL  time.Duration
	MaxSessions int
}

// LoadConfig は SESSION_TTL と MAX_SESSIONS を読み込みます。
func LoadConfig() Config {
	cfg := Config{SessionTTL: defaultSessionTTL, MaxSessions: defaultMaxSessions}
	if d, err := time.ParseDuration(os.Getenv("SESSION_TTL")); err == nil && d > 0 {
		cfg.SessionTTL = d
	}
	if n, err := strconv.Atoi(os.Getenv("MAX_SESSIONS")); err == nil && n > 0 {
		cfg.MaxSessions = n
	}
	return cfg
}

// TokenPair はログイン時とリフレッシュのたびに発行されます。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// ClientInfo はセッションの端末を識別する情報です。
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users        UserRepository
	sessions     SessionRepository
	jwtGenerator JWTGenerator
	cfg          Config
	now          func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, jwtGenerator JWTGenerator, cfg Config) *authUsecase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	return &authUsecase{
		users:        users,
		sessions:     sessions,
		jwtGenerator: jwtGenerator,
		cfg:          cfg,
		now:          time.Now,
	}
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, minPasswordLength)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxFullNameLength {
		return "", ErrInvalidFullName
	}
	return name, nil
}

// newInvestorID は "INV" に大文字16進8桁を続けた投資家番号を返します。
func newInvestorID() string {
	id := uuid.New()
	return "INV" + strings.ToUpper(hex.EncodeToString(id[:4]))
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
func (u *authUsecase) Signup(ctx context.Context, email, password, fullName string) (*entity.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	name, err := normalizeName(fullName)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Password:   string(hashed),
		FullName:   name,
		InvestorID: newInvestorID(),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、アクセストークンとリフレッシュトークンを返します。
// ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issue(ctx, user, client)
}

// Refresh はリフレッシュトークンをローテーションします。提示されたセッションは失効させ、新しいペアを発行します。
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error) {
	if len(refreshToken) != refreshTokenBytes*2 {
		return nil, ErrInvalidRefreshToken
	}
	session, err := u.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if session.IsRevoked() {
		// 失効済みトークンの再利用は漏洩を意味するので、そのユーザーの全セッションを終了する
		slog.Warn("revoked refresh token reused", "user_id", session.UserID, "investor_id", session.InvestorID)
		if err := u.sessions.RevokeAllByUserID(ctx, session.UserID); err != nil {
			slog.Error("failed to revoke sessions", "user_id", session.UserID, "error", err)
		}
		return nil, ErrSessionRevoked
	}
	if session.ExpiredAt(u.now()) {
		return nil, ErrSessionExpired
	}

	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := u.sessions.Revoke(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}
	return u.issue(ctx, user, client)
}

// Logout は refreshToken のセッションを失効させます。未知のトークンはエラーにしません。
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	if err := u.sessions.Revoke(ctx, refreshToken); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

func (u *authUsecase) Profile(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// UpdateProfile は nil でない項目だけを変更します。
func (u *authUsecase) UpdateProfile(ctx context.Context, userID uint, fullName *string, kycVerified *bool) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if fullName != nil {
		name, err := normalizeName(*fullName)
		if err != nil {
			return nil, err
		}
		user.FullName = name
	}
	if kycVerified != nil {
		user.KYCVerified = *kycVerified
	}
	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// issue はアクセストークンに署名して新しいリフレッシュセッションを開きます。
// ユーザーごとの上限を超える分は古いセッションから追い出します。
func (u *authUsecase) issue(ctx context.Context, user *entity.User, client ClientInfo) (*TokenPair, error) {
	access, err := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	count, err := u.sessions.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for ; count >= int64(u.cfg.MaxSessions); count-- {
		if err := u.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	now := u.now()
	session := &entity.Session{
		ID:         refresh,
		UserID:     user.ID,
		InvestorID: user.InvestorID,
		UserAgent:  truncate(client.UserAgent, 512),
		IPAddress:  truncate(client.IPAddress, 45),
		CreatedAt:  now,
		ExpiresAt:  now.Add(u.cfg.SessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(u.jwtGenerator.Expiration().Seconds()),
	}, nil
}

// newRefreshToken は32バイトの乱数を64桁の hex で返します。
func newRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
