// Package handler は注文の発注と取消の HTTP ハンドラーを提供します。
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
	ledgerusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/response"
	jwtmw "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/jwt"
)

// TradingUsecase は注文に関するユースケースのインターフェースです。
type TradingUsecase interface {
	PlaceOrder(ctx context.Context, userID, companyID uint, orderType string, qty int64, price float64) (*entity.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uint) (*entity.Order, error)
	ListOrders(ctx context.Context, userID uint, status string) ([]entity.Order, error)
}

type OrderHandler struct {
	uc TradingUsecase
}

func NewOrderHandler(uc TradingUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func toOrder(o *entity.Order) api.Order {
	out := api.Order{
		Id:        o.ID,
		CompanyId: o.CompanyID,
		OrderType: api.OrderType(o.OrderType),
		Quantity:  o.Quantity,
		Price:     o.Price,
		Status:    api.OrderStatus(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.Company != nil {
		company := companyhandler.ToAPI(o.Company)
		out.Company = &company
	}
	return out
}

// Place は POST /api/orders を処理します。
func (h *OrderHandler) Place(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req api.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	order, err := h.uc.PlaceOrder(c.Request.Context(), userID, req.CompanyId, string(req.OrderType), req.Quantity, req.Price)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	response.Created(c, "order placed", toOrder(order))
}

// Cancel は POST /api/orders/:id/cancel を処理します。
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := h.uc.CancelOrder(c.Request.Context(), userID, uint(id))
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	response.OK(c, "order cancelled", toOrder(order))
}

// List は GET /api/orders?status= を処理します。
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	orders, err := h.uc.ListOrders(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	out := make([]api.Order, 0, len(orders))
	for i := range orders {
		out = append(out, toOrder(&orders[i]))
	}
	response.OK(c, "orders", out)
}

func (h *OrderHandler) fail(c *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound), errors.Is(err, ledgerusecase.ErrCompanyNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, usecase.ErrInvalidQuantity),
		errors.Is(err, usecase.ErrInvalidPrice),
		errors.Is(err, usecase.ErrInvalidOrderType),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInsufficientTokens),
		errors.Is(err, usecase.ErrInsufficientBalance),
		errors.Is(err, usecase.ErrOrderTooSmall),
		errors.Is(err, ledgerusecase.ErrCompanyInactive):
		slog.Warn("order rejected", "user_id", userID, "reason", err)
		response.Fail(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("order request failed", "user_id", userID, "error", err)
		response.InternalError(c)
	}
}
