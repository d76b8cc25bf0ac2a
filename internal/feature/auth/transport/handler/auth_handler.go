// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/api"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/response"
	jwtmw "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, email, password, fullName string) (*entity.User, error)
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, userID uint) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uint, fullName *string, kycVerified *bool) (*entity.User, error)
}

// AuthHandler は認証とプロフィールのHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func clientInfo(c *gin.Context) usecase.ClientInfo {
	return usecase.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

func toProfile(u *entity.User) api.UserProfile {
	return api.UserProfile{
		Id:          u.ID,
		Email:       openapi_types.Email(u.Email),
		FullName:    u.FullName,
		InvestorId:  u.InvestorID,
		KycVerified: u.KYCVerified,
		CreatedAt:   u.CreatedAt,
	}
}

func toTokenPair(p *usecase.TokenPair) api.TokenPair {
	return api.TokenPair{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
		TokenType:    "Bearer",
	}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400
// - メール重複時は409（実際のエラーは公開しない）
// - 成功時は201とプロフィール
func (h *AuthHandler) Signup(c *gin.Context) {
	var req api.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), string(req.Email), req.Password, req.FullName)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrWeakPassword), errors.Is(err, usecase.ErrInvalidFullName):
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		slog.Warn("signup failed", "error", err, "remote_addr", c.ClientIP())
		response.Fail(c, http.StatusConflict, "signup failed")
		return
	default:
		slog.Error("signup failed", "error", err, "remote_addr", c.ClientIP())
		response.InternalError(c)
		return
	}
	slog.Info("user signup successful", "user_id", user.ID, "investor_id", user.InvestorID)
	response.Created(c, "account created", toProfile(user))
}

// Login は認証に成功するとアクセストークンとリフレッシュトークンを返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	pair, err := h.auth.Login(c.Request.Context(), string(req.Email), req.Password, clientInfo(c))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "remote_addr", c.ClientIP())
			response.Fail(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		slog.Error("login failed", "error", err, "remote_addr", c.ClientIP())
		response.InternalError(c)
		return
	}
	response.OK(c, "login successful", toTokenPair(pair))
}

// Refresh はリフレッシュトークンを新しいトークンペアと交換します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req api.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, clientInfo(c))
	switch {
	case err == nil:
		response.OK(c, "token refreshed", toTokenPair(pair))
	case errors.Is(err, usecase.ErrInvalidRefreshToken),
		errors.Is(err, usecase.ErrSessionRevoked),
		errors.Is(err, usecase.ErrSessionExpired),
		errors.Is(err, usecase.ErrUserNotFound):
		slog.Warn("refresh rejected", "error", err, "remote_addr", c.ClientIP())
		response.Fail(c, http.StatusUnauthorized, "invalid refresh token")
	default:
		slog.Error("refresh failed", "error", err)
		response.InternalError(c)
	}
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req api.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		slog.Error("logout failed", "error", err)
		response.InternalError(c)
		return
	}
	response.OK(c, "logged out", nil)
}

// Profile は認証済みユーザーのプロフィールを返します。
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.auth.Profile(c.Request.Context(), userID)
	if err != nil {
		h.profileError(c, userID, err)
		return
	}
	response.OK(c, "profile", toProfile(user))
}

// UpdateProfile は指定された項目を反映します。
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req api.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), userID, req.FullName, req.KycVerified)
	if err != nil {
		h.profileError(c, userID, err)
		return
	}
	slog.Info("profile updated", "user_id", userID)
	response.OK(c, "profile updated", toProfile(user))
}

func (h *AuthHandler) profileError(c *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, "user not found")
	case errors.Is(err, usecase.ErrInvalidFullName):
		response.Fail(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("profile request failed", "user_id", userID, "error", err)
		response.InternalError(c)
	}
}
