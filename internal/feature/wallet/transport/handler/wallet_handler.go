// Package handler は現金ウォレットの HTTP ハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/api"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/response"
	jwtmw "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/jwt"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

type WalletUsecase interface {
	GetWallet(ctx context.Context, userID uint) (*entity.Wallet, error)
	AddFunds(ctx context.Context, userID uint, amount float64, description string) (*usecase.Result, error)
	Withdraw(ctx context.Context, userID uint, amount float64, description string) (*usecase.Result, error)
	ListTransactions(ctx context.Context, userID uint, limit int) ([]entity.Transaction, error)
}

type WalletHandler struct {
	uc WalletUsecase
}

func NewWalletHandler(uc WalletUsecase) *WalletHandler {
	return &WalletHandler{uc: uc}
}

func toWallet(w *entity.Wallet) api.Wallet {
	return api.Wallet{
		Id:             w.ID,
		Balance:        w.Balance,
		DisplayBalance: money.FormatINR(w.Balance),
		UpdatedAt:      w.UpdatedAt,
	}
}

func toTransaction(t *entity.Transaction) api.WalletTransaction {
	return api.WalletTransaction{
		Id:           t.ID,
		Type:         api.WalletTransactionType(t.Type),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

// Get は GET /api/wallet を処理します。
func (h *WalletHandler) Get(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	w, err := h.uc.GetWallet(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	response.OK(c, "wallet", toWallet(w))
}

// AddFunds は POST /api/wallet/add-funds を処理します。
func (h *WalletHandler) AddFunds(c *gin.Context) {
	h.move(c, h.uc.AddFunds, "funds added")
}

// Withdraw は POST /api/wallet/withdraw を処理します。
func (h *WalletHandler) Withdraw(c *gin.Context) {
	h.move(c, h.uc.Withdraw, "funds withdrawn")
}

type walletOp func(ctx context.Context, userID uint, amount float64, description string) (*usecase.Result, error)

func (h *WalletHandler) move(c *gin.Context, op walletOp, message string) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req api.WalletAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	res, err := op(c.Request.Context(), userID, req.Amount, description)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	response.OK(c, message, api.WalletOperationResult{
		Wallet:      toWallet(res.Wallet),
		Transaction: toTransaction(res.Transaction),
	})
}

// ListTransactions は GET /api/wallet/transactions?limit= を処理します。
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Fail(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	txs, err := h.uc.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	out := make([]api.WalletTransaction, 0, len(txs))
	for i := range txs {
		out = append(out, toTransaction(&txs[i]))
	}
	response.OK(c, "wallet transactions", out)
}

func (h *WalletHandler) fail(c *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidAmount), errors.Is(err, usecase.ErrInsufficientBalance):
		slog.Warn("wallet request rejected", "user_id", userID, "reason", err)
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		response.Fail(c, http.StatusConflict, err.Error())
	default:
		slog.Error("wallet request failed", "user_id", userID, "error", err)
		response.InternalError(c)
	}
}
