package resolution

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultClassifierRules(), RevenueExclusions)
}

func TestAggregator_Fold_GroupsByBillingIdentity(t *testing.T) {
	agg := newTestAggregator()

	lines := []OrderLine{
		{OrderNumber: "51234", BillingName: "Acme LLC", BillingAddress: "123 Main Street", BillingCity: "Austin", BillingState: "TX", Revenue: decimal.NewFromInt(100), PostingDate: date("2024-01-10")},
		{OrderNumber: "51235", BillingName: "ACME", BillingAddress: "123 Main St", BillingCity: "Austin", BillingState: "TX", Revenue: decimal.NewFromInt(50), PostingDate: date("2024-02-01")},
		{OrderNumber: "51236", BillingName: "Acme LLC", BillingAddress: "999 Other Rd", BillingCity: "Dallas", BillingState: "TX", Revenue: decimal.NewFromInt(25)},
	}

	result := agg.Fold(lines)

	// Name variants at the same address collapse into one customer; the
	// same name at a different address stays separate.
	require.Len(t, result.Profiles, 2)

	profile := result.Profiles[GroupingKey("Acme LLC", "123 Main Street", "Austin", "TX")]
	require.NotNil(t, profile)
	direct := profile.History(ChannelDirect)
	require.True(t, direct.HasOrders())
	assert.Equal(t, 2, direct.Orders)
	assert.True(t, direct.Revenue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, *date("2024-01-10"), *direct.First)
	assert.Equal(t, *date("2024-02-01"), *direct.Last)
}

func TestAggregator_Fold_DeduplicatesOrderLines(t *testing.T) {
	agg := newTestAggregator()

	lines := []OrderLine{
		{OrderNumber: "51234", BillingName: "Acme", ProductName: "Widget", Revenue: decimal.NewFromInt(60)},
		{OrderNumber: "51234", BillingName: "Acme", ProductName: "Gadget", Revenue: decimal.NewFromInt(40)},
	}

	result := agg.Fold(lines)

	profile := result.Profiles[GroupingKey("Acme", "", "", "")]
	require.NotNil(t, profile)
	direct := profile.History(ChannelDirect)
	assert.Equal(t, 1, direct.Orders)
	assert.True(t, direct.Revenue.Equal(decimal.NewFromInt(100)))
}

func TestAggregator_Fold_ExcludedProductsKeepOrderDropRevenue(t *testing.T) {
	agg := newTestAggregator()

	lines := []OrderLine{
		{OrderNumber: "51234", BillingName: "Acme", ProductName: "Shipping", Revenue: decimal.NewFromInt(12)},
		{OrderNumber: "51235", BillingName: "Acme", ProductName: "Widget", SKU: "CC Processing Fee", Revenue: decimal.NewFromInt(5)},
	}

	result := agg.Fold(lines)

	profile := result.Profiles[GroupingKey("Acme", "", "", "")]
	require.NotNil(t, profile)
	direct := profile.History(ChannelDirect)
	// Both orders exist, neither contributes revenue.
	assert.Equal(t, 2, direct.Orders)
	assert.True(t, direct.Revenue.IsZero())
	assert.Equal(t, 2, result.ExcludedLineCount)
}

func TestAggregator_Fold_SkipsUnidentifiableLines(t *testing.T) {
	agg := newTestAggregator()

	lines := []OrderLine{
		{OrderNumber: "", BillingName: "Acme"},
		{OrderNumber: "51234", BillingName: "", BillingCity: ""},
		{OrderNumber: "51235", BillingName: "", BillingCity: "Austin", BillingState: "TX"},
	}

	result := agg.Fold(lines)

	assert.Equal(t, 2, result.LinesSkipped)
	require.Len(t, result.Profiles, 1)
	profile := result.ProfilesInOrder()[0]
	assert.Equal(t, "Austin, TX", profile.DisplayName)
}

func TestAggregator_Fold_TracksUnknownChannel(t *testing.T) {
	agg := newTestAggregator()

	lines := []OrderLine{
		{OrderNumber: "51234", BillingName: "Acme", Revenue: decimal.NewFromInt(10)},
		{OrderNumber: "???", BillingName: "Acme", Revenue: decimal.NewFromInt(20)},
	}

	result := agg.Fold(lines)

	assert.Equal(t, 1, result.UnknownOrders)
	profile := result.Profiles[GroupingKey("Acme", "", "", "")]
	require.NotNil(t, profile)
	assert.True(t, profile.History(ChannelUnknown).HasOrders())
	// Unknown orders never surface as an active known channel.
	assert.Equal(t, []Channel{ChannelDirect}, profile.ActiveChannels())
}

func TestAggregator_Fold_SplitsChannels(t *testing.T) {
	agg := newTestAggregator()

	lines := []OrderLine{
		{OrderNumber: "51234", BillingName: "Acme", Revenue: decimal.NewFromInt(10), PostingDate: date("2024-01-01")},
		{OrderNumber: "#123456789", BillingName: "Acme", Revenue: decimal.NewFromInt(20), PostingDate: date("2024-03-01")},
		{OrderNumber: "SH555", BillingName: "Acme", Revenue: decimal.NewFromInt(30), PostingDate: date("2024-02-01")},
	}

	result := agg.Fold(lines)

	profile := result.Profiles[GroupingKey("Acme", "", "", "")]
	require.NotNil(t, profile)
	assert.Equal(t, []Channel{ChannelDirect, ChannelMarketplace, ChannelRetail}, profile.ActiveChannels())
	assert.Equal(t, 1, profile.History(ChannelMarketplace).Orders)
	assert.True(t, profile.History(ChannelRetail).Revenue.Equal(decimal.NewFromInt(30)))
}

func TestIsExcludedProduct(t *testing.T) {
	tests := []struct {
		product string
		want    bool
	}{
		{product: "Shipping", want: true},
		{product: "Expedited Shipping Charge", want: true},
		{product: "CC PROCESSING", want: true},
		{product: "Credit Card Processing Fee", want: true},
		{product: "Handling", want: true},
		{product: "Widget", want: false},
		{product: "", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsExcludedProduct(tt.product, RevenueExclusions), tt.product)
	}
}

func TestIsBusinessName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "Acme Distribution LLC", want: true},
		{name: "Downtown Smoke Shop", want: true},
		{name: "7-Eleven 1042", want: true},
		{name: "Smith & Sons", want: true},
		{name: "John Smith", want: false},
		{name: "Maria Garcia", want: false},
		{name: "", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBusinessName(tt.name), tt.name)
	}
}
