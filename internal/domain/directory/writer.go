package directory

import "context"

// CustomerLinkUpdate carries the derived link fields for one ERP customer.
type CustomerLinkUpdate struct {
	CustomerID string
	Link       CrmLink
}

// ErpLinkWriter persists derived CRM links onto ERP customer rows. Writes
// are merge-upserts against the link columns only; source columns are never
// touched. Applying the same updates twice yields the same stored state.
type ErpLinkWriter interface {
	ApplyLinks(ctx context.Context, updates []CustomerLinkUpdate) (int, error)
}

// CustomerAnnotationUpdate carries the derived match and switcher blocks for
// one marketplace customer.
type CustomerAnnotationUpdate struct {
	CustomerID string
	Match      *MatchAnnotation
	Switcher   *SwitcherAnnotation
}

// MarketplaceAnnotationWriter persists derived match/switcher annotations
// onto marketplace customer rows, with the same merge-only and idempotency
// guarantees as ErpLinkWriter.
type MarketplaceAnnotationWriter interface {
	ApplyAnnotations(ctx context.Context, updates []CustomerAnnotationUpdate) (int, error)
}

// MarketplaceRosterWriter upserts extracted roster rows. Rows are keyed by
// billing identity so re-extraction updates stats in place instead of
// duplicating customers.
type MarketplaceRosterWriter interface {
	UpsertRoster(ctx context.Context, customers []MarketplaceCustomer) (int, error)
}
