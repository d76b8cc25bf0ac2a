// Package adapters はcompanyフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/usecase"
)

// companyGorm はCompanyRepositoryのGORM実装です。
type companyGorm struct {
	db *gorm.DB
}

var _ usecase.CompanyRepository = (*companyGorm)(nil)

// NewCompanyRepository は指定されたDB接続でリポジトリを生成します。
func NewCompanyRepository(db *gorm.DB) *companyGorm {
	return &companyGorm{db: db}
}

// ListActive はシンボル順にアクティブな企業を返します。
func (r *companyGorm) ListActive(ctx context.Context) ([]entity.Company, error) {
	var companies []entity.Company
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("symbol ASC").
		Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *companyGorm) FindByID(ctx context.Context, id uint) (*entity.Company, error) {
	var c entity.Company
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *companyGorm) FindBySymbol(ctx context.Context, symbol string) (*entity.Company, error) {
	var c entity.Company
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

// UpdatePrice は最新価格を設定します。時価総額はシードデータのままにします。
func (r *companyGorm) UpdatePrice(ctx context.Context, id uint, price float64) error {
	result := r.db.WithContext(ctx).Model(&entity.Company{}).
		Where("id = ?", id).
		Update("current_price", price)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrCompanyNotFound
	}
	return nil
}

// Upsert は銘柄コードをキーに企業情報を登録・更新します。
func (r *companyGorm) Upsert(ctx context.Context, companies []entity.Company) error {
	if len(companies) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "sector", "current_price", "market_cap", "is_active", "updated_at"}),
	}).Create(&companies).Error
}
