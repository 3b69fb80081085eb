package resolution

import "strings"

// DirectOrderFilter screens marketplace-pattern orders out of a direct
// customer's order history. Marketplace fulfilment flows through the
// order-entry system too, so without this filter a reseller-channel order
// would inflate the customer's direct stats and mask a switch.
type DirectOrderFilter struct {
	// NameTokens flag storefront placeholder billing names.
	NameTokens []string
	// RepTokens flag sales reps who only book marketplace fulfilment.
	RepTokens []string
	// OrderPrefixes flag reseller order-number prefixes.
	OrderPrefixes []string
	// OrderTokens flag reseller order-number substrings.
	OrderTokens []string
}

// DefaultDirectOrderFilter returns the patterns observed in production
// exports. The rep list ships empty; fulfilment reps are deployment policy
// and come from configuration.
func DefaultDirectOrderFilter() DirectOrderFilter {
	return DirectOrderFilter{
		NameTokens:    []string{"shopify"},
		OrderPrefixes: []string{"#"},
		OrderTokens:   []string{"qpq", "000000"},
	}
}

// IsMarketplacePattern reports whether the order line belongs to the
// reseller flow despite living in the direct order export.
func (f DirectOrderFilter) IsMarketplacePattern(orderNumber, billingName, salesRep string) bool {
	num := strings.ToLower(strings.TrimSpace(orderNumber))
	for _, prefix := range f.OrderPrefixes {
		if prefix != "" && strings.HasPrefix(num, strings.ToLower(prefix)) {
			return true
		}
	}
	for _, token := range f.OrderTokens {
		if token != "" && strings.Contains(num, strings.ToLower(token)) {
			return true
		}
	}

	name := strings.ToLower(billingName)
	for _, token := range f.NameTokens {
		if token != "" && strings.Contains(name, strings.ToLower(token)) {
			return true
		}
	}

	rep := strings.ToLower(salesRep)
	for _, token := range f.RepTokens {
		if token != "" && strings.Contains(rep, strings.ToLower(token)) {
			return true
		}
	}

	return false
}
