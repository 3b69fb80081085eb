package resolution

import "strings"

// Channel tags the sales channel an order passed through.
type Channel string

const (
	// ChannelDirect is the organization's own order-entry system, identified
	// by short numeric order numbers.
	ChannelDirect Channel = "direct"
	// ChannelMarketplace is the third-party reseller integration, identified
	// by long alphanumeric or marker-prefixed order numbers.
	ChannelMarketplace Channel = "marketplace"
	// ChannelRetail is the direct-to-consumer storefront.
	ChannelRetail Channel = "retail"
	// ChannelUnknown is a valid terminal tag for order numbers matching no
	// rule. Unknown orders are tracked, never dropped.
	ChannelUnknown Channel = "unknown"
)

// Channels lists every known channel in evaluation order.
var Channels = []Channel{ChannelDirect, ChannelMarketplace, ChannelRetail}

// ClassifierRules holds the order-number pattern rules as data. The exact
// thresholds are business policy observed from labeled exports, not derived,
// so they are configurable rather than hard-coded.
type ClassifierRules struct {
	// RetailPrefixes are case-insensitive storefront order-number prefixes.
	RetailPrefixes []string
	// MarketplaceMarker is the reserved leading character of marketplace
	// order numbers.
	MarketplaceMarker string
	// MarketplaceMarkerMinLen is the minimum total length for a
	// marker-prefixed number to count as marketplace.
	MarketplaceMarkerMinLen int
	// MarketplaceCodeMinLen is the minimum stripped-alphanumeric length for
	// an unmarked code to count as marketplace.
	MarketplaceCodeMinLen int
	// DirectMinDigits and DirectMaxDigits bound the length of pure numeric
	// order-entry numbers.
	DirectMinDigits int
	DirectMaxDigits int
}

// DefaultClassifierRules returns the rules observed in production exports.
func DefaultClassifierRules() ClassifierRules {
	return ClassifierRules{
		RetailPrefixes:          []string{"sh"},
		MarketplaceMarker:       "#",
		MarketplaceMarkerMinLen: 10,
		MarketplaceCodeMinLen:   10,
		DirectMinDigits:         4,
		DirectMaxDigits:         6,
	}
}

// Classify maps a raw order-number string to its channel. It is a total
// function: every input maps to exactly one channel and the same input
// always yields the same tag.
func (r ClassifierRules) Classify(orderNumber string) Channel {
	num := strings.TrimSpace(orderNumber)
	if num == "" {
		return ChannelUnknown
	}

	lower := strings.ToLower(num)
	for _, prefix := range r.RetailPrefixes {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return ChannelRetail
		}
	}

	if r.MarketplaceMarker != "" &&
		strings.HasPrefix(num, r.MarketplaceMarker) &&
		len(num) >= r.MarketplaceMarkerMinLen {
		return ChannelMarketplace
	}

	if isDigits(num) {
		if len(num) >= r.DirectMinDigits && len(num) <= r.DirectMaxDigits {
			return ChannelDirect
		}
		// Numeric but outside the order-entry length bounds matches no rule.
		return ChannelUnknown
	}

	if len(stripNonAlnum(num)) >= r.MarketplaceCodeMinLen {
		return ChannelMarketplace
	}

	return ChannelUnknown
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
