package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/salesops/backend/internal/infrastructure/persistence/models"
)

func setupDirectoryTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.CrmCompanyModel{},
		&models.ErpCustomerModel{},
		&models.OrderItemModel{},
		&models.MarketplaceCustomerModel{},
	)
	require.NoError(t, err)

	return db
}

func TestGormCrmCompanyRepository_LoadAll(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewGormCrmCompanyRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&[]models.CrmCompanyModel{
		{ID: "cc-1", AccountID: "A-1", AccountOrderID: "777001", Name: "Acme Distribution", Street: "123 Main Street", City: "Austin", State: "TX", PostalCode: "78701"},
		{ID: "cc-2", Name: "Beta Supply"},
	}).Error)

	companies, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)

	assert.Equal(t, "cc-1", companies[0].ID)
	assert.Equal(t, "777001", companies[0].AccountOrderID)
	assert.Equal(t, "Acme Distribution", companies[0].Name)
	assert.Equal(t, "78701", companies[0].PostalCode)
	assert.Equal(t, "Beta Supply", companies[1].Name)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormErpCustomerRepository_LoadAll(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewGormErpCustomerRepository(db)
	ctx := context.Background()

	matchedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&[]models.ErpCustomerModel{
		{
			ID: "fc-1", Name: "Acme Distribution LLC", AccountID: "777001",
			BillingAddress: "123 Main St", BillingCity: "Austin", BillingState: "TX", BillingZip: "78701",
			CrmCompanyID: "cc-1", CrmCompanyName: "Acme Distribution",
			CrmMatchType: "primary_id", CrmConfidence: "high", CrmMatchedAt: &matchedAt,
		},
		{ID: "fc-2", Name: "No Link Yet", ShippingCity: "Dallas"},
	}).Error)

	customers, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)

	linked := customers[0]
	require.NotNil(t, linked.Link)
	assert.Equal(t, "cc-1", linked.Link.CompanyID)
	assert.Equal(t, "primary_id", linked.Link.MatchType)
	assert.Equal(t, matchedAt, linked.Link.MatchedAt)
	assert.True(t, linked.IsLinked())

	unlinked := customers[1]
	assert.Nil(t, unlinked.Link)
	assert.False(t, unlinked.IsLinked())
	// billing empty, shipping fallback applies
	assert.Equal(t, "Dallas", unlinked.City())
}

func TestGormOrderItemRepository_LoadAll_CoercesRawColumns(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewGormOrderItemRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&[]models.OrderItemModel{
		{
			SalesOrderNum: "50001", BillingName: "Acme Distribution",
			BillingAddress: "123 Main St", BillingCity: "Austin",
			PostingDate: "2024-01-15", Revenue: "$1,250.00",
			ProductDescription: "Widget Case", SalesRep: "jordan",
		},
		{
			// falls back to alternate column names and survives bad values
			Num: "#1234567890", BillToName: "Corner Store",
			BillToCity: "Dallas", PostingDate: "not a date",
			TotalPrice: "garbage", Description: "Shipping",
		},
	}).Error)

	lines, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	first := lines[0]
	assert.Equal(t, "50001", first.OrderNumber)
	assert.Equal(t, "Acme Distribution", first.BillingName)
	require.NotNil(t, first.PostingDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *first.PostingDate)
	assert.True(t, first.Revenue.Equal(decimal.RequireFromString("1250.00")))
	assert.Equal(t, "Widget Case", first.ProductName)

	second := lines[1]
	assert.Equal(t, "#1234567890", second.OrderNumber)
	assert.Equal(t, "Corner Store", second.BillingName)
	assert.Equal(t, "Dallas", second.BillingCity)
	assert.Nil(t, second.PostingDate)
	assert.True(t, second.Revenue.IsZero())
}

func TestGormMarketplaceCustomerRepository_LoadAll(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewGormMarketplaceCustomerRepository(db)
	ctx := context.Background()

	firstOrder := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&[]models.MarketplaceCustomerModel{
		{
			ID: "mp-1", BusinessName: "Acme Distribution",
			BillingAddress: "123 Main St", BillingCity: "Austin",
			TotalOrders: 4, LifetimeValue: decimal.RequireFromString("830.50"),
			FirstOrderDate: &firstOrder, Source: "order-export",
			MatchErpCustomerID: "fc-1", MatchErpBusinessName: "Acme Distribution LLC",
			MatchMode: "strict", MatchScore: 8,
			SwitcherIsSwitcher: true, SwitcherGapDays: 46,
			SwitcherDirectRevenue: decimal.RequireFromString("500"),
		},
		{ID: "mp-2", BusinessName: "Shopify Customer"},
	}).Error)

	customers, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)

	annotated := customers[0]
	assert.Equal(t, 4, annotated.TotalOrders)
	assert.True(t, annotated.LifetimeValue.Equal(decimal.RequireFromString("830.50")))
	require.NotNil(t, annotated.Match)
	assert.Equal(t, "fc-1", annotated.Match.ErpCustomerID)
	assert.Equal(t, 8, annotated.Match.MatchScore)
	require.NotNil(t, annotated.Switcher)
	assert.True(t, annotated.Switcher.IsSwitcher)
	assert.Equal(t, 46, annotated.Switcher.GapDays)

	bare := customers[1]
	assert.Nil(t, bare.Match)
	assert.Nil(t, bare.Switcher)
	assert.True(t, bare.IsPlaceholder())
}

func TestLoadPaged_ContextCancelled(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewGormCrmCompanyRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.LoadAll(ctx)
	assert.Error(t, err)
}
