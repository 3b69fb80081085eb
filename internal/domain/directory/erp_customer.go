package directory

import (
	"context"
	"strings"
	"time"
)

// CrmLink holds the derived link fields merged onto an ERP customer by the
// reconciliation writer. The writer only ever touches these fields.
type CrmLink struct {
	CompanyID   string
	CompanyName string
	MatchType   string
	Confidence  string
	MatchedAt   time.Time
}

// ErpCustomer is one row of the transactional customer directory exported
// from the order-entry system. AccountID and AccountNumber are two
// independently generated numeric identifiers; either may equal the CRM
// side's AccountOrderID.
type ErpCustomer struct {
	ID            string
	Name          string
	AccountID     string
	AccountNumber string

	BillingAddress string
	BillingCity    string
	BillingState   string
	BillingZip     string

	// Shipping fields are fallbacks for exports where billing is blank.
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingZip     string

	OriginalOwner string
	SalesPerson   string

	Link *CrmLink
}

// Address returns the billing address, falling back to shipping.
func (c *ErpCustomer) Address() string {
	if strings.TrimSpace(c.BillingAddress) != "" {
		return c.BillingAddress
	}
	return c.ShippingAddress
}

// City returns the billing city, falling back to shipping.
func (c *ErpCustomer) City() string {
	if strings.TrimSpace(c.BillingCity) != "" {
		return c.BillingCity
	}
	return c.ShippingCity
}

// State returns the billing state, falling back to shipping.
func (c *ErpCustomer) State() string {
	if strings.TrimSpace(c.BillingState) != "" {
		return c.BillingState
	}
	return c.ShippingState
}

// Zip returns the billing zip, falling back to shipping.
func (c *ErpCustomer) Zip() string {
	if strings.TrimSpace(c.BillingZip) != "" {
		return c.BillingZip
	}
	return c.ShippingZip
}

// IsLinked reports whether this customer already carries a CRM link.
func (c *ErpCustomer) IsLinked() bool {
	return c.Link != nil && c.Link.CompanyID != ""
}

// ErpCustomerRepository provides bulk access to the transactional directory.
type ErpCustomerRepository interface {
	LoadAll(ctx context.Context) ([]ErpCustomer, error)
	Count(ctx context.Context) (int64, error)
}
