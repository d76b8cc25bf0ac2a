package jwtmw

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// EnvKeyJWTSecret は HMAC 署名鍵の環境変数名です。
	EnvKeyJWTSecret = "JWT_SECRET"
	// EnvKeyAccessTTL はアクセストークンの有効期間（Go の duration 文字列）の環境変数名です。
	EnvKeyAccessTTL = "JWT_ACCESS_TTL"

	defaultAccessTTL = 15 * time.Minute
)

// Generator は HS256 で署名したアクセストークンを生成します。
type Generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator は指定された鍵と有効期間で JWT ジェネレーターを生成します。
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// AccessTTLFromEnv は JWT_ACCESS_TTL を解釈します。未設定なら15分です。
func AccessTTLFromEnv() time.Duration {
	if v := os.Getenv(EnvKeyAccessTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultAccessTTL
}

// GenerateToken は標準クレームを含む署名済み JWT を生成します。
func (g *Generator) GenerateToken(userID uint, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   now.Add(g.expiration).Unix(),
		"iat":   now.Unix(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Expiration は g が発行するトークンの有効期間です。
func (g *Generator) Expiration() time.Duration { return g.expiration }
