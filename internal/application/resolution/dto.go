package resolution

import (
	"time"

	"github.com/salesops/backend/internal/domain/resolution"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Identity linking DTOs
// =============================================================================

// LinkRequest configures one identity-linking run. Action "match" computes
// and reports matches; "apply" additionally persists the link fields.
type LinkRequest struct {
	Action string `json:"action" binding:"required,oneof=match apply"`
}

// LinkMatch is one source-to-reference match in a link run response.
type LinkMatch struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	CompanyID    string `json:"company_id"`
	CompanyName  string `json:"company_name"`
	Strategy     string `json:"strategy"`
	Confidence   string `json:"confidence"`
}

// IndexSummary reports the lookup-map sizes of one built identity index.
type IndexSummary struct {
	AccountIDs         int `json:"account_ids"`
	CrossRefs          int `json:"cross_refs"`
	Addresses          int `json:"addresses"`
	AmbiguousAddresses int `json:"ambiguous_addresses"`
}

// LinkReport is the full outcome of one identity-linking run.
type LinkReport struct {
	RunID           string                `json:"run_id"`
	Action          string                `json:"action"`
	CompaniesLoaded int                   `json:"companies_loaded"`
	CustomersLoaded int                   `json:"customers_loaded"`
	AlreadyLinked   int                   `json:"already_linked"`
	Index           IndexSummary          `json:"index"`
	Stats           resolution.MatchStats `json:"stats"`
	Matches         []LinkMatch           `json:"matches"`
	Applied         int                   `json:"applied"`
	DurationMillis  int64                 `json:"duration_ms"`
}

// =============================================================================
// Switcher analysis DTOs
// =============================================================================

// SwitcherRequest configures one roster-vs-direct switcher run.
type SwitcherRequest struct {
	Mode    string `form:"mode" binding:"omitempty,oneof=strict loose"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=10000"`
	Write   bool   `form:"write"`
	Rebuild bool   `form:"rebuild"`
}

// SwitcherEntry is one confirmed switcher in a switcher run response.
type SwitcherEntry struct {
	MarketplaceCustomerID string          `json:"marketplace_customer_id"`
	BusinessName          string          `json:"business_name"`
	City                  string          `json:"city"`
	State                 string          `json:"state"`
	DirectCustomerID      string          `json:"direct_customer_id"`
	DirectCustomerName    string          `json:"direct_customer_name"`
	OriginalRep           string          `json:"original_rep,omitempty"`
	MatchMode             string          `json:"match_mode"`
	MatchScore            int             `json:"match_score"`
	Alternatives          int             `json:"alternatives"`
	IsSwitcher            bool            `json:"is_switcher"`
	SwitchDate            *time.Time      `json:"switch_date,omitempty"`
	GapDays               int             `json:"gap_days"`
	LastDirectOrder       *time.Time      `json:"last_direct_order,omitempty"`
	DirectOrders          int             `json:"direct_orders"`
	DirectRevenue         decimal.Decimal `json:"direct_revenue"`
	MarketplaceOrders     int             `json:"marketplace_orders"`
	MarketplaceRevenue    decimal.Decimal `json:"marketplace_revenue"`
	FirstMarketplaceOrder *time.Time      `json:"first_marketplace_order,omitempty"`
}

// SwitcherReport is the full outcome of one switcher run.
type SwitcherReport struct {
	RunID               string          `json:"run_id"`
	Mode                string          `json:"mode"`
	RosterLoaded        int             `json:"roster_loaded"`
	PlaceholdersSkipped int             `json:"placeholders_skipped"`
	DirectCustomers     int             `json:"direct_customers"`
	Matched             int             `json:"matched"`
	Switchers           int             `json:"switchers"`
	Deduplicated        int             `json:"deduplicated"`
	Entries             []SwitcherEntry `json:"entries"`
	Written             int             `json:"written"`
	FromCache           bool            `json:"from_cache"`
	DurationMillis      int64           `json:"duration_ms"`
}

// =============================================================================
// Channel report DTOs
// =============================================================================

// ChannelReportRequest configures one comprehensive channel report run.
type ChannelReportRequest struct {
	Limit   int  `form:"limit" binding:"omitempty,min=1,max=10000"`
	Rebuild bool `form:"rebuild"`
}

// ChannelTotals is the per-channel aggregate across every customer.
type ChannelTotals struct {
	Customers int             `json:"customers"`
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ChannelSwitchEntry is one customer-level switch in the channel report.
type ChannelSwitchEntry struct {
	Customer      string          `json:"customer"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	Business      bool            `json:"business"`
	From          string          `json:"from"`
	To            string          `json:"to"`
	SwitchDate    time.Time       `json:"switch_date"`
	GapDays       int             `json:"gap_days"`
	SourceOrders  int             `json:"source_orders"`
	SourceRevenue decimal.Decimal `json:"source_revenue"`
	TargetOrders  int             `json:"target_orders"`
	TargetRevenue decimal.Decimal `json:"target_revenue"`
}

// RetailBusinessTarget is a retail-only customer with a business-like name
// and no marketplace activity yet: a wholesale upsell prospect.
type RetailBusinessTarget struct {
	BusinessName string          `json:"business_name"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	RetailOrders int             `json:"retail_orders"`
	RetailSpend  decimal.Decimal `json:"retail_spend"`
	FirstOrder   *time.Time      `json:"first_order,omitempty"`
	LastOrder    *time.Time      `json:"last_order,omitempty"`
}

// ChannelReport is the comprehensive per-channel lifecycle report.
type ChannelReport struct {
	RunID                 string                   `json:"run_id"`
	LinesScanned          int                      `json:"lines_scanned"`
	LinesSkipped          int                      `json:"lines_skipped"`
	UnknownOrders         int                      `json:"unknown_orders"`
	Customers             int                      `json:"customers"`
	Totals                map[string]ChannelTotals `json:"totals"`
	Classifications       map[string]int           `json:"classifications"`
	BusinessCount         int                      `json:"business_count"`
	SwitchCounts          map[string]int           `json:"switch_counts"`
	ToMarketplace         []ChannelSwitchEntry     `json:"to_marketplace"`
	OtherSwitches         []ChannelSwitchEntry     `json:"other_switches"`
	RetailBusinessTargets []RetailBusinessTarget   `json:"retail_business_targets"`
	FromCache             bool                     `json:"from_cache"`
	DurationMillis        int64                    `json:"duration_ms"`
}

// =============================================================================
// Roster extraction DTOs
// =============================================================================

// RosterRequest configures one marketplace roster extraction run.
type RosterRequest struct {
	DryRun bool `json:"dry_run"`
}

// RosterPreview is one extracted roster row in a dry-run response.
type RosterPreview struct {
	BusinessName   string          `json:"business_name"`
	City           string          `json:"city"`
	State          string          `json:"state"`
	TotalOrders    int             `json:"total_orders"`
	LifetimeValue  decimal.Decimal `json:"lifetime_value"`
	FirstOrderDate *time.Time      `json:"first_order_date,omitempty"`
	LastOrderDate  *time.Time      `json:"last_order_date,omitempty"`
}

// RosterReport is the full outcome of one roster extraction run.
type RosterReport struct {
	RunID          string          `json:"run_id"`
	DryRun         bool            `json:"dry_run"`
	LinesScanned   int             `json:"lines_scanned"`
	LinesSkipped   int             `json:"lines_skipped"`
	Extracted      int             `json:"extracted"`
	Upserted       int             `json:"upserted"`
	Preview        []RosterPreview `json:"preview,omitempty"`
	DurationMillis int64           `json:"duration_ms"`
}
