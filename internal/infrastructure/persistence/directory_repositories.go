package persistence

import (
	"context"
	"fmt"

	"github.com/salesops/backend/internal/domain/directory"
	"github.com/salesops/backend/internal/domain/shared"
	"github.com/salesops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// loadPaged reads a full table in id-ordered pages, converting each row
// through convert. Context is checked between pages so a cancelled run stops
// at a page boundary.
func loadPaged[M any, D any](ctx context.Context, db *gorm.DB, convert func(*M) D) ([]D, error) {
	out := make([]D, 0, shared.DefaultPageSize)
	for offset := 0; ; offset += shared.DefaultPageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rows []M
		if err := db.WithContext(ctx).
			Order("id").
			Limit(shared.DefaultPageSize).
			Offset(offset).
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("%w: load page at offset %d: %v", shared.ErrDatasetUnavailable, offset, err)
		}
		for i := range rows {
			out = append(out, convert(&rows[i]))
		}
		if len(rows) < shared.DefaultPageSize {
			return out, nil
		}
	}
}

// GormCrmCompanyRepository implements CrmCompanyRepository using GORM
type GormCrmCompanyRepository struct {
	db *gorm.DB
}

// NewGormCrmCompanyRepository creates a new GormCrmCompanyRepository
func NewGormCrmCompanyRepository(db *gorm.DB) *GormCrmCompanyRepository {
	return &GormCrmCompanyRepository{db: db}
}

// LoadAll reads the full CRM company directory in pages.
func (r *GormCrmCompanyRepository) LoadAll(ctx context.Context) ([]directory.CrmCompany, error) {
	return loadPaged(ctx, r.db, (*models.CrmCompanyModel).ToDomain)
}

// Count returns the total number of companies.
func (r *GormCrmCompanyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CrmCompanyModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count crm companies: %w", err)
	}
	return count, nil
}

// GormErpCustomerRepository implements ErpCustomerRepository using GORM
type GormErpCustomerRepository struct {
	db *gorm.DB
}

// NewGormErpCustomerRepository creates a new GormErpCustomerRepository
func NewGormErpCustomerRepository(db *gorm.DB) *GormErpCustomerRepository {
	return &GormErpCustomerRepository{db: db}
}

// LoadAll reads the full ERP customer directory in pages.
func (r *GormErpCustomerRepository) LoadAll(ctx context.Context) ([]directory.ErpCustomer, error) {
	return loadPaged(ctx, r.db, (*models.ErpCustomerModel).ToDomain)
}

// Count returns the total number of customers.
func (r *GormErpCustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ErpCustomerModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count erp customers: %w", err)
	}
	return count, nil
}

// GormOrderItemRepository implements OrderItemRepository using GORM
type GormOrderItemRepository struct {
	db *gorm.DB
}

// NewGormOrderItemRepository creates a new GormOrderItemRepository
func NewGormOrderItemRepository(db *gorm.DB) *GormOrderItemRepository {
	return &GormOrderItemRepository{db: db}
}

// LoadAll reads the full order line-item table in pages, coercing each
// sparse row into a typed line.
func (r *GormOrderItemRepository) LoadAll(ctx context.Context) ([]directory.OrderLineItem, error) {
	return loadPaged(ctx, r.db, (*models.OrderItemModel).ToDomain)
}

// Count returns the total number of order lines.
func (r *GormOrderItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderItemModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count order items: %w", err)
	}
	return count, nil
}

// GormMarketplaceCustomerRepository implements MarketplaceCustomerRepository using GORM
type GormMarketplaceCustomerRepository struct {
	db *gorm.DB
}

// NewGormMarketplaceCustomerRepository creates a new GormMarketplaceCustomerRepository
func NewGormMarketplaceCustomerRepository(db *gorm.DB) *GormMarketplaceCustomerRepository {
	return &GormMarketplaceCustomerRepository{db: db}
}

// LoadAll reads the full marketplace roster in pages.
func (r *GormMarketplaceCustomerRepository) LoadAll(ctx context.Context) ([]directory.MarketplaceCustomer, error) {
	return loadPaged(ctx, r.db, (*models.MarketplaceCustomerModel).ToDomain)
}

// Count returns the total number of roster rows.
func (r *GormMarketplaceCustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MarketplaceCustomerModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count marketplace customers: %w", err)
	}
	return count, nil
}
