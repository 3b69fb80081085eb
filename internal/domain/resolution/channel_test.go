package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifierRules_Classify(t *testing.T) {
	rules := DefaultClassifierRules()

	tests := []struct {
		name        string
		orderNumber string
		want        Channel
	}{
		{name: "storefront prefix", orderNumber: "SH10293", want: ChannelRetail},
		{name: "storefront prefix lowercase", orderNumber: "sh10293", want: ChannelRetail},
		{name: "marker prefixed long", orderNumber: "#123456789", want: ChannelMarketplace},
		{name: "marker prefixed short", orderNumber: "#12345", want: ChannelUnknown},
		{name: "plain numeric order entry", orderNumber: "51234", want: ChannelDirect},
		{name: "numeric lower bound", orderNumber: "1234", want: ChannelDirect},
		{name: "numeric upper bound", orderNumber: "123456", want: ChannelDirect},
		{name: "numeric too short", orderNumber: "123", want: ChannelUnknown},
		{name: "numeric too long", orderNumber: "1234567890123", want: ChannelUnknown},
		{name: "long alphanumeric code", orderNumber: "A1B2C3D4E5F6", want: ChannelMarketplace},
		{name: "long code with separators", orderNumber: "AB-12-CD-34-EF", want: ChannelMarketplace},
		{name: "short alphanumeric", orderNumber: "AB12", want: ChannelUnknown},
		{name: "whitespace trimmed", orderNumber: "  51234  ", want: ChannelDirect},
		{name: "empty", orderNumber: "", want: ChannelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Classify(tt.orderNumber))
		})
	}
}

func TestClassifierRules_Classify_Deterministic(t *testing.T) {
	rules := DefaultClassifierRules()
	inputs := []string{"SH1", "#123456789", "51234", "A1B2C3D4E5F6", "??", ""}

	for _, input := range inputs {
		first := rules.Classify(input)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, rules.Classify(input))
		}
	}
}

func TestClassifierRules_Classify_CustomRules(t *testing.T) {
	rules := ClassifierRules{
		RetailPrefixes:          []string{"web"},
		MarketplaceMarker:       "@",
		MarketplaceMarkerMinLen: 6,
		MarketplaceCodeMinLen:   8,
		DirectMinDigits:         3,
		DirectMaxDigits:         5,
	}

	assert.Equal(t, ChannelRetail, rules.Classify("WEB-1001"))
	assert.Equal(t, ChannelMarketplace, rules.Classify("@12345"))
	assert.Equal(t, ChannelDirect, rules.Classify("123"))
	assert.Equal(t, ChannelUnknown, rules.Classify("1234567"))
}
