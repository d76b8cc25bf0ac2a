// Package handler は保有株と取引台帳の HTTP ハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/api"
	companyhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/transport/handler"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/response"
	jwtmw "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/jwt"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

// LedgerUsecase は保有株・トークン操作のユースケースです。
type LedgerUsecase interface {
	Tokenize(ctx context.Context, userID, companyID uint, qty int64, price float64) (*usecase.Result, error)
	ConvertToShares(ctx context.Context, userID, companyID uint, qty int64, price float64) (*usecase.Result, error)
	AddHolding(ctx context.Context, userID, companyID uint, qty int64, price float64) (*usecase.Result, error)
	ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error)
	ListTokenizedShares(ctx context.Context, userID uint) ([]entity.TokenizedShare, error)
	ListTransactions(ctx context.Context, userID uint, limit int, txType string) ([]entity.Transaction, error)
}

type LedgerHandler struct {
	uc LedgerUsecase
}

func NewLedgerHandler(uc LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// ToHoldingAPI は保有を企業の現在値で評価します。
func ToHoldingAPI(h *entity.Holding) api.Holding {
	out := api.Holding{
		Id:        h.ID,
		CompanyId: h.CompanyID,
		Quantity:  h.Quantity,
		AvgPrice:  h.AvgPrice,
		UpdatedAt: h.UpdatedAt,
	}
	if h.Company != nil {
		company := companyhandler.ToAPI(h.Company)
		out.Company = &company
		out.CurrentPrice = h.Company.CurrentPrice
		v := money.Valuate(h.Quantity, h.AvgPrice, h.Company.CurrentPrice)
		out.InvestedValue, out.CurrentValue = v.Invested, v.Current
		out.ProfitLoss, out.ProfitLossPercent = v.ProfitLoss, v.ProfitLossPercent
	}
	return out
}

// ToTokenizedShareAPI はトークンポジションを企業の現在値で評価します。
func ToTokenizedShareAPI(ts *entity.TokenizedShare) api.TokenizedShare {
	out := api.TokenizedShare{
		Id:                ts.ID,
		CompanyId:         ts.CompanyID,
		Quantity:          ts.Quantity,
		TokenizationPrice: ts.TokenizationPrice,
		IsActive:          ts.IsActive,
		UpdatedAt:         ts.UpdatedAt,
	}
	if ts.Company != nil {
		company := companyhandler.ToAPI(ts.Company)
		out.Company = &company
		out.CurrentPrice = ts.Company.CurrentPrice
		v := money.Valuate(ts.Quantity, ts.TokenizationPrice, ts.Company.CurrentPrice)
		out.InvestedValue, out.CurrentValue = v.Invested, v.Current
		out.ProfitLoss, out.ProfitLossPercent = v.ProfitLoss, v.ProfitLossPercent
	}
	return out
}

func ToTransactionAPI(t *entity.Transaction) api.Transaction {
	out := api.Transaction{
		Id:              t.ID,
		CompanyId:       t.CompanyID,
		TransactionType: api.TransactionType(t.TransactionType),
		Quantity:        t.Quantity,
		Price:           t.Price,
		Fees:            t.Fees,
		TotalAmount:     t.TotalAmount,
		DisplayAmount:   money.FormatINR(t.TotalAmount),
		OrderId:         t.OrderID,
		Reference:       t.Reference,
		CreatedAt:       t.CreatedAt,
	}
	if t.Company != nil {
		company := companyhandler.ToAPI(t.Company)
		out.Company = &company
	}
	return out
}

func toResult(r *usecase.Result) api.LedgerResult {
	out := api.LedgerResult{Transaction: ToTransactionAPI(r.Transaction)}
	if r.Holding != nil {
		if r.Holding.Company == nil {
			r.Holding.Company = r.Transaction.Company
		}
		h := ToHoldingAPI(r.Holding)
		out.Holding = &h
	}
	if r.TokenizedShare != nil {
		if r.TokenizedShare.Company == nil {
			r.TokenizedShare.Company = r.Transaction.Company
		}
		ts := ToTokenizedShareAPI(r.TokenizedShare)
		out.TokenizedShare = &ts
	}
	return out
}

// ListHoldings は GET /api/holdings を処理します。
func (h *LedgerHandler) ListHoldings(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	holdings, err := h.uc.ListHoldings(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	out := make([]api.Holding, 0, len(holdings))
	for i := range holdings {
		out = append(out, ToHoldingAPI(&holdings[i]))
	}
	response.OK(c, "holdings", out)
}

// ListTokenizedShares は GET /api/tokenized-shares を処理します。
func (h *LedgerHandler) ListTokenizedShares(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	tokens, err := h.uc.ListTokenizedShares(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	out := make([]api.TokenizedShare, 0, len(tokens))
	for i := range tokens {
		out = append(out, ToTokenizedShareAPI(&tokens[i]))
	}
	response.OK(c, "tokenized shares", out)
}

// AddHolding は POST /api/holdings を処理します。
func (h *LedgerHandler) AddHolding(c *gin.Context) {
	h.mutate(c, h.uc.AddHolding, "holding added")
}

// Tokenize は POST /api/tokenize を処理します。
func (h *LedgerHandler) Tokenize(c *gin.Context) {
	h.mutate(c, h.uc.Tokenize, "shares tokenized")
}

// ConvertToShares は POST /api/convert-to-shares を処理します。
func (h *LedgerHandler) ConvertToShares(c *gin.Context) {
	h.mutate(c, h.uc.ConvertToShares, "tokens converted to shares")
}

type ledgerOp func(ctx context.Context, userID, companyID uint, qty int64, price float64) (*usecase.Result, error)

func (h *LedgerHandler) mutate(c *gin.Context, op ledgerOp, message string) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req api.SharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	res, err := op(c.Request.Context(), userID, req.CompanyId, req.Quantity, req.Price)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	response.Created(c, message, toResult(res))
}

// ListTransactions は GET /api/transactions?limit=&type= を処理します。
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
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
	txs, err := h.uc.ListTransactions(c.Request.Context(), userID, limit, c.Query("type"))
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	out := make([]api.Transaction, 0, len(txs))
	for i := range txs {
		out = append(out, ToTransactionAPI(&txs[i]))
	}
	response.OK(c, "transactions", out)
}

func (h *LedgerHandler) fail(c *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, usecase.ErrCompanyNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrInvalidQuantity),
		errors.Is(err, usecase.ErrInvalidPrice),
		errors.Is(err, usecase.ErrCompanyInactive),
		errors.Is(err, usecase.ErrInsufficientShares),
		errors.Is(err, usecase.ErrInsufficientTokens),
		errors.Is(err, usecase.ErrInvalidTransactionType):
		slog.Warn("ledger request rejected", "user_id", userID, "reason", err)
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		response.Fail(c, http.StatusConflict, err.Error())
	default:
		slog.Error("ledger request failed", "user_id", userID, "error", err)
		response.InternalError(c)
	}
}
