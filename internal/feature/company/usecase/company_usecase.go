package usecase

import (
	"context"
	"strings"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/validation"
)

// CompanyRepository は企業マスタの永続化層を抽象化します。
type CompanyRepository interface {
	ListActive(ctx context.Context) ([]entity.Company, error)
	// FindByID は見つからなければ ErrCompanyNotFound を返します。無効な企業も返します。
	FindByID(ctx context.Context, id uint) (*entity.Company, error)
	FindBySymbol(ctx context.Context, symbol string) (*entity.Company, error)
	UpdatePrice(ctx context.Context, id uint, price float64) error
	// Upsert は銘柄コードをキーに追加または更新します。
	Upsert(ctx context.Context, companies []entity.Company) error
}

// NormalizeSymbol は s を大文字にし、NSE の銘柄コードに使える文字か検証します。
func NormalizeSymbol(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !validation.ValidSymbol(s) {
		return "", ErrInvalidSymbol
	}
	return s, nil
}

// CompanyUsecase は企業検索のビジネスロジックを提供します。
type CompanyUsecase struct {
	repo CompanyRepository
}

// NewCompanyUsecase は指定されたリポジトリで CompanyUsecase を生成します。
func NewCompanyUsecase(r CompanyRepository) *CompanyUsecase {
	return &CompanyUsecase{repo: r}
}

// ListActive は有効な企業を銘柄コード順に返します。
func (u *CompanyUsecase) ListActive(ctx context.Context) ([]entity.Company, error) {
	return u.repo.ListActive(ctx)
}

func (u *CompanyUsecase) Get(ctx context.Context, id uint) (*entity.Company, error) {
	if id == 0 {
		return nil, ErrCompanyNotFound
	}
	return u.repo.FindByID(ctx, id)
}

func (u *CompanyUsecase) GetBySymbol(ctx context.Context, symbol string) (*entity.Company, error) {
	s, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return u.repo.FindBySymbol(ctx, s)
}
