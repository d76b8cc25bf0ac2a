// Package handler はポートフォリオ概要の HTTP ハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/api"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/portfolio/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/response"
	jwtmw "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/jwt"
)

type PortfolioUsecase interface {
	Summary(ctx context.Context, userID uint) (*usecase.Summary, error)
}

type PortfolioHandler struct {
	uc PortfolioUsecase
}

func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

// Summary は GET /api/portfolio/summary を処理します。
func (h *PortfolioHandler) Summary(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	s, err := h.uc.Summary(c.Request.Context(), userID)
	if err != nil {
		slog.Error("failed to build portfolio summary", "user_id", userID, "error", err)
		response.InternalError(c)
		return
	}
	response.OK(c, "portfolio summary", api.PortfolioSummary{
		RealSharesValue:      s.RealSharesValue,
		TokenizedSharesValue: s.TokenizedSharesValue,
		TotalValue:           s.TotalValue,
		InvestedValue:        s.InvestedValue,
		ProfitLoss:           s.ProfitLoss,
		ProfitLossPercent:    s.ProfitLossPercent,
		HoldingsCount:        s.HoldingsCount,
		TokenizedCount:       s.TokenizedCount,
		PendingOrders:        s.PendingOrders,
		WalletBalance:        s.WalletBalance,
	})
}
