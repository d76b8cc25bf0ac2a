// Package handler は企業マスタの HTTP ハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/api"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/response"
)

// CompanyUsecase は企業情報に関するユースケースのインターフェースです。
type CompanyUsecase interface {
	ListActive(ctx context.Context) ([]entity.Company, error)
	Get(ctx context.Context, id uint) (*entity.Company, error)
	GetBySymbol(ctx context.Context, symbol string) (*entity.Company, error)
}

// CompanyHandler は企業情報に関するHTTPリクエストを処理します。
type CompanyHandler struct {
	uc CompanyUsecase
}

func NewCompanyHandler(uc CompanyUsecase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// ToAPI はレスポンス用に企業を変換します。他のフィーチャーも自分のペイロードに埋め込みます。
func ToAPI(c *entity.Company) api.Company {
	return api.Company{
		Id:           c.ID,
		Symbol:       c.Symbol,
		Name:         c.Name,
		Sector:       c.Sector,
		CurrentPrice: c.CurrentPrice,
		MarketCap:    c.MarketCap,
		IsActive:     c.IsActive,
		UpdatedAt:    c.UpdatedAt,
	}
}

// List は GET /api/companies を処理します。
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.uc.ListActive(c.Request.Context())
	if err != nil {
		slog.Error("failed to list companies", "error", err)
		response.InternalError(c)
		return
	}
	out := make([]api.Company, 0, len(companies))
	for i := range companies {
		out = append(out, ToAPI(&companies[i]))
	}
	response.OK(c, "companies", out)
}

// Get は GET /api/companies/:id を処理します。
func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, "invalid company id")
		return
	}
	company, err := h.uc.Get(c.Request.Context(), uint(id))
	h.respond(c, company, err)
}

// GetBySymbol は GET /api/companies/symbol/:symbol を処理します。
func (h *CompanyHandler) GetBySymbol(c *gin.Context) {
	var req api.SymbolPath
	if err := c.ShouldBindUri(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, usecase.ErrInvalidSymbol.Error())
		return
	}
	company, err := h.uc.GetBySymbol(c.Request.Context(), req.Symbol)
	h.respond(c, company, err)
}

func (h *CompanyHandler) respond(c *gin.Context, company *entity.Company, err error) {
	switch {
	case err == nil:
		response.OK(c, "company", ToAPI(company))
	case errors.Is(err, usecase.ErrCompanyNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrInvalidSymbol):
		response.Fail(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("failed to load company", "error", err)
		response.InternalError(c)
	}
}
