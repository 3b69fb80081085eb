package directory

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineItem is one fully-typed line of the raw order stream. Every field
// has already been coerced to a safe value: a malformed amount becomes zero,
// a malformed date becomes nil, a missing string becomes "". Bad values never
// make a line unprocessable.
type OrderLineItem struct {
	OrderNumber string
	CustomerID  string

	BillingName    string
	BillingAddress string
	BillingCity    string
	BillingState   string
	BillingZip     string

	PostingDate *time.Time
	ProductName string
	SKU         string
	Revenue     decimal.Decimal
	SalesRep    string
}

// HasBillingIdentity reports whether the line carries enough billing data to
// attribute it to a customer. Lines with neither a name nor a city are
// unidentifiable and get skipped by aggregation.
func (l *OrderLineItem) HasBillingIdentity() bool {
	return strings.TrimSpace(l.BillingName) != "" || strings.TrimSpace(l.BillingCity) != ""
}

// RawOrderItem is a sparse export row as produced by the external ingestion
// collaborator. Source exports disagree on column names, so each logical
// field has every name it has been observed under. ToLineItem is the only
// place that knows which columns may hold which value.
type RawOrderItem struct {
	SalesOrderNum string
	ErpOrderNum   string
	Num           string

	CustomerID string

	BillingName  string
	BillToName   string
	CustomerName string

	BillingAddress string
	BillToAddress  string
	BillingStreet  string

	BillingCity  string
	BillToCity   string
	ShippingCity string

	BillingState  string
	BillToState   string
	ShippingState string

	BillingZip        string
	BillToZip         string
	BillingPostalCode string

	PostingDate    *time.Time
	PostingDateStr string

	ProductDescription string
	Description        string
	ProductNum         string
	SKU                string

	Revenue    string
	TotalPrice string

	SalesRep    string
	SalesPerson string
}

// ToLineItem collapses the raw row into a typed line item, applying the
// fallback order observed in the source exports and coercing bad values to
// safe defaults.
func (r *RawOrderItem) ToLineItem() OrderLineItem {
	posted := r.PostingDate
	if posted == nil {
		posted = ParseDate(r.PostingDateStr)
	}
	return OrderLineItem{
		OrderNumber:    strings.TrimSpace(firstNonEmpty(r.SalesOrderNum, r.ErpOrderNum, r.Num)),
		CustomerID:     strings.TrimSpace(r.CustomerID),
		BillingName:    strings.TrimSpace(firstNonEmpty(r.BillingName, r.BillToName, r.CustomerName)),
		BillingAddress: strings.TrimSpace(firstNonEmpty(r.BillingAddress, r.BillToAddress, r.BillingStreet)),
		BillingCity:    strings.TrimSpace(firstNonEmpty(r.BillingCity, r.BillToCity, r.ShippingCity)),
		BillingState:   strings.TrimSpace(firstNonEmpty(r.BillingState, r.BillToState, r.ShippingState)),
		BillingZip:     strings.TrimSpace(firstNonEmpty(r.BillingZip, r.BillToZip, r.BillingPostalCode)),
		PostingDate:    posted,
		ProductName:    strings.TrimSpace(firstNonEmpty(r.ProductDescription, r.Description)),
		SKU:            strings.TrimSpace(firstNonEmpty(r.ProductNum, r.SKU)),
		Revenue:        ParseAmount(firstNonEmpty(r.Revenue, r.TotalPrice)),
		SalesRep:       strings.TrimSpace(firstNonEmpty(r.SalesRep, r.SalesPerson)),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ParseAmount coerces a monetary string to a decimal, returning zero for
// anything unparseable.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate coerces a date string to a time, returning nil for anything
// unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// OrderItemRepository provides bulk access to the raw order line items.
type OrderItemRepository interface {
	LoadAll(ctx context.Context) ([]OrderLineItem, error)
	Count(ctx context.Context) (int64, error)
}
