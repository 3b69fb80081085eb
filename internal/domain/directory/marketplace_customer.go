package directory

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MatchAnnotation is the nested match block merged onto a marketplace
// customer when a switcher run is persisted.
type MatchAnnotation struct {
	ErpCustomerID   string
	ErpBusinessName string
	OriginalRep     string
	MatchMode       string
	MatchScore      int
	Alternatives    int
}

// SwitcherAnnotation is the nested switcher block merged onto a marketplace
// customer when a switcher run is persisted.
type SwitcherAnnotation struct {
	IsSwitcher       bool
	SwitchDate       *time.Time
	GapDays          int
	LastDirectOrder  *time.Time
	DirectOrders     int
	DirectRevenue    decimal.Decimal
	FirstOrder       *time.Time
	Orders           int
	Revenue          decimal.Decimal
}

// MarketplaceCustomer is one row of the reseller-channel roster: a unique end
// customer extracted from marketplace orders, with channel-specific lifetime
// stats. It is the authoritative side of the switcher matching flow.
type MarketplaceCustomer struct {
	ID           string
	BusinessName string

	BillingAddress string
	BillingCity    string
	BillingState   string
	BillingZip     string

	TotalOrders    int
	LifetimeValue  decimal.Decimal
	FirstOrderDate *time.Time
	LastOrderDate  *time.Time

	Source string

	Match    *MatchAnnotation
	Switcher *SwitcherAnnotation
}

// IsPlaceholder reports whether the row is a legacy placeholder entry with no
// billing address and a generic storefront name. Placeholders are skipped by
// analysis runs.
func (m *MarketplaceCustomer) IsPlaceholder() bool {
	return strings.TrimSpace(m.BillingAddress) == "" &&
		strings.EqualFold(strings.TrimSpace(m.BusinessName), "shopify customer")
}

// MarketplaceCustomerRepository provides bulk access to the reseller roster.
type MarketplaceCustomerRepository interface {
	LoadAll(ctx context.Context) ([]MarketplaceCustomer, error)
	Count(ctx context.Context) (int64, error)
}
