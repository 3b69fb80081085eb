package resolution

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RevenueExclusions lists product-name/SKU tokens whose line items carry no
// merchandise revenue. Matching lines still identify orders; they just
// contribute zero to revenue totals.
var RevenueExclusions = []string{
	"shipping",
	"handling",
	"cc processing",
	"credit card processing",
}

// IsExcludedProduct reports whether a product name or SKU matches the
// revenue exclusion list, case-insensitively.
func IsExcludedProduct(name string, exclusions []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return false
	}
	for _, token := range exclusions {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}

// OrderLine is the engine's view of one raw order line item.
type OrderLine struct {
	OrderNumber    string
	BillingName    string
	BillingAddress string
	BillingCity    string
	BillingState   string
	BillingZip     string
	PostingDate    *time.Time
	ProductName    string
	SKU            string
	Revenue        decimal.Decimal
}

// ChannelHistory is the per-customer, per-channel aggregate: order count,
// revenue total and the first/last order dates.
type ChannelHistory struct {
	Channel Channel
	Orders  int
	Revenue decimal.Decimal
	First   *time.Time
	Last    *time.Time
}

// HasOrders reports whether the channel saw at least one order.
func (h *ChannelHistory) HasOrders() bool {
	return h != nil && h.Orders > 0
}

func (h *ChannelHistory) observe(date *time.Time) {
	if date == nil {
		return
	}
	if h.First == nil || date.Before(*h.First) {
		h.First = date
	}
	if h.Last == nil || date.After(*h.Last) {
		h.Last = date
	}
}

// CustomerProfile is one billing identity's full order history across
// channels, built fresh on every aggregation run.
type CustomerProfile struct {
	// Key is the grouping key: normalized name, address, city and state
	// joined together. No single field is unique on its own.
	Key string

	DisplayName    string
	BillingName    string
	BillingAddress string
	BillingCity    string
	BillingState   string
	BillingZip     string
	Business       bool

	Histories map[Channel]*ChannelHistory

	orderChannels map[string]Channel
}

// History returns the customer's aggregate for one channel, or nil when the
// channel saw no activity.
func (p *CustomerProfile) History(ch Channel) *ChannelHistory {
	return p.Histories[ch]
}

// ActiveChannels returns the known channels with at least one order, in the
// fixed channel evaluation order.
func (p *CustomerProfile) ActiveChannels() []Channel {
	var active []Channel
	for _, ch := range Channels {
		if p.Histories[ch].HasOrders() {
			active = append(active, ch)
		}
	}
	return active
}

// AggregateResult is the outcome of folding one line-item stream.
type AggregateResult struct {
	// Profiles holds one entry per billing identity, keyed by grouping key.
	// ProfileOrder preserves first-seen order for deterministic iteration.
	Profiles     map[string]*CustomerProfile
	ProfileOrder []string

	LinesScanned      int
	LinesSkipped      int
	UnknownOrders     int
	ExcludedLineCount int
}

// ProfilesInOrder returns the profiles in first-seen order.
func (r *AggregateResult) ProfilesInOrder() []*CustomerProfile {
	out := make([]*CustomerProfile, 0, len(r.ProfileOrder))
	for _, key := range r.ProfileOrder {
		out = append(out, r.Profiles[key])
	}
	return out
}

// Aggregator folds raw line items into per-customer, per-channel histories.
type Aggregator struct {
	rules      ClassifierRules
	exclusions []string
}

// NewAggregator creates an aggregator with the given classifier rules and
// revenue exclusion tokens.
func NewAggregator(rules ClassifierRules, exclusions []string) *Aggregator {
	return &Aggregator{rules: rules, exclusions: exclusions}
}

// Fold aggregates the full line-item stream. Lines without an order number
// or without any billing identity are counted and skipped; everything else
// accumulates. Repeated lines against the same order number merge into one
// order entry per customer rather than one per line.
func (a *Aggregator) Fold(lines []OrderLine) *AggregateResult {
	result := &AggregateResult{
		Profiles: make(map[string]*CustomerProfile),
	}

	for i := range lines {
		line := &lines[i]
		result.LinesScanned++

		orderNumber := strings.TrimSpace(line.OrderNumber)
		if orderNumber == "" {
			result.LinesSkipped++
			continue
		}
		if strings.TrimSpace(line.BillingName) == "" && strings.TrimSpace(line.BillingCity) == "" {
			result.LinesSkipped++
			continue
		}

		key := GroupingKey(line.BillingName, line.BillingAddress, line.BillingCity, line.BillingState)
		profile, ok := result.Profiles[key]
		if !ok {
			profile = &CustomerProfile{
				Key:            key,
				DisplayName:    displayName(line),
				BillingName:    strings.TrimSpace(line.BillingName),
				BillingAddress: strings.TrimSpace(line.BillingAddress),
				BillingCity:    strings.TrimSpace(line.BillingCity),
				BillingState:   strings.TrimSpace(line.BillingState),
				BillingZip:     strings.TrimSpace(line.BillingZip),
				Business:       IsBusinessName(line.BillingName),
				Histories:      make(map[Channel]*ChannelHistory),
				orderChannels:  make(map[string]Channel),
			}
			result.Profiles[key] = profile
			result.ProfileOrder = append(result.ProfileOrder, key)
		}

		channel := a.rules.Classify(orderNumber)
		if channel == ChannelUnknown {
			result.UnknownOrders++
		}

		history := profile.Histories[channel]
		if history == nil {
			history = &ChannelHistory{Channel: channel, Revenue: decimal.Zero}
			profile.Histories[channel] = history
		}

		if _, seen := profile.orderChannels[orderNumber]; !seen {
			profile.orderChannels[orderNumber] = channel
			history.Orders++
		}

		if IsExcludedProduct(line.ProductName, a.exclusions) || IsExcludedProduct(line.SKU, a.exclusions) {
			result.ExcludedLineCount++
		} else {
			history.Revenue = history.Revenue.Add(line.Revenue)
		}

		history.observe(line.PostingDate)
	}

	return result
}

// GroupingKey derives the billing identity key for one line. Name alone is
// not unique and address alone is not unique, so the key concatenates every
// normalized billing field.
func GroupingKey(name, address, city, state string) string {
	return strings.Join([]string{
		NormalizeName(name),
		NormalizeAddress(address),
		NormalizeCity(city),
		NormalizeState(state),
	}, "|")
}

func displayName(line *OrderLine) string {
	if name := strings.TrimSpace(line.BillingName); name != "" {
		return name
	}
	city := strings.TrimSpace(line.BillingCity)
	state := strings.TrimSpace(line.BillingState)
	if city != "" && state != "" {
		return city + ", " + state
	}
	return "Unknown Customer"
}

// businessIndicators are tokens that mark a billing name as a business
// rather than an individual.
var businessIndicators = []string{
	"llc", "inc", "corp", "ltd", "co.", "company", "store", "shop", "market",
	"wholesale", "retail", "distribution", "supply", "supplies", "depot",
	"warehouse", "outlet", "center", "group", "holdings", "enterprises",
	"services", "foods", "cafe", "restaurant", "bar", "grill", "kitchen",
	"bakery", "salon", "spa", "wellness", "fitness", "gym", "studio",
	"boutique", "trading", "dba", "&",
}

// IsBusinessName guesses whether a billing name belongs to a business
// rather than an individual. A heuristic, used only to flag retail upsell
// candidates, never for matching.
func IsBusinessName(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return false
	}
	for _, indicator := range businessIndicators {
		if strings.Contains(normalized, indicator) {
			return true
		}
	}

	words := []string{}
	for _, w := range strings.Fields(normalized) {
		if len(w) > 1 {
			words = append(words, w)
		}
	}

	// Two plain alphabetic words look like a person's name.
	if len(words) == 2 {
		plain := true
		for _, w := range words {
			if !isAlpha(w) || len(w) > 15 {
				plain = false
				break
			}
		}
		if plain {
			return false
		}
	}

	if strings.ContainsAny(normalized, "0123456789") {
		return true
	}
	if len(words) == 1 && len(words[0]) > 10 {
		return true
	}
	return len(words) >= 4
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return len(s) > 0
}
