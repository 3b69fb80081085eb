package resolution

import (
	"context"
	"encoding/json"
	"time"

	"github.com/salesops/backend/internal/domain/directory"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockCrmCompanyRepository struct {
	mock.Mock
}

func (m *MockCrmCompanyRepository) LoadAll(ctx context.Context) ([]directory.CrmCompany, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.CrmCompany), args.Error(1)
}

func (m *MockCrmCompanyRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockErpCustomerRepository struct {
	mock.Mock
}

func (m *MockErpCustomerRepository) LoadAll(ctx context.Context) ([]directory.ErpCustomer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.ErpCustomer), args.Error(1)
}

func (m *MockErpCustomerRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) LoadAll(ctx context.Context) ([]directory.OrderLineItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.OrderLineItem), args.Error(1)
}

func (m *MockOrderItemRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockMarketplaceCustomerRepository struct {
	mock.Mock
}

func (m *MockMarketplaceCustomerRepository) LoadAll(ctx context.Context) ([]directory.MarketplaceCustomer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.MarketplaceCustomer), args.Error(1)
}

func (m *MockMarketplaceCustomerRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Mock Writers
// =============================================================================

type MockErpLinkWriter struct {
	mock.Mock
}

func (m *MockErpLinkWriter) ApplyLinks(ctx context.Context, updates []directory.CustomerLinkUpdate) (int, error) {
	args := m.Called(ctx, updates)
	return args.Int(0), args.Error(1)
}

type MockMarketplaceAnnotationWriter struct {
	mock.Mock
}

func (m *MockMarketplaceAnnotationWriter) ApplyAnnotations(ctx context.Context, updates []directory.CustomerAnnotationUpdate) (int, error) {
	args := m.Called(ctx, updates)
	return args.Int(0), args.Error(1)
}

type MockMarketplaceRosterWriter struct {
	mock.Mock
}

func (m *MockMarketplaceRosterWriter) UpsertRoster(ctx context.Context, customers []directory.MarketplaceCustomer) (int, error) {
	args := m.Called(ctx, customers)
	return args.Int(0), args.Error(1)
}

// =============================================================================
// In-memory cache fake
// =============================================================================

type memoryCache struct {
	entries map[string][]byte
	sets    int
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.gets++
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}
