package directory

import (
	"context"
	"strings"
)

// CrmCompany is one row of the CRM company directory, the reference side of
// identity matching. AccountID is the CRM's own workflow identifier and is
// always populated; AccountOrderID is the cross-reference field expected to
// hold the ERP side's account identifier.
type CrmCompany struct {
	ID             string // CRM system id (source of truth for links)
	AccountID      string
	AccountOrderID string
	Name           string
	Street         string
	City           string
	State          string
	PostalCode     string
}

// HasAccountOrderID reports whether the cross-reference field carries a value.
func (c *CrmCompany) HasAccountOrderID() bool {
	return strings.TrimSpace(c.AccountOrderID) != ""
}

// CrmCompanyRepository provides bulk access to the CRM company directory.
type CrmCompanyRepository interface {
	// LoadAll reads the full directory in pages and returns it in insertion order.
	LoadAll(ctx context.Context) ([]CrmCompany, error)

	// Count returns the total number of companies.
	Count(ctx context.Context) (int64, error)
}
