package directory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawOrderItem_ToLineItem_OrderNumberFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  RawOrderItem
		want string
	}{
		{
			name: "sales order number wins",
			raw:  RawOrderItem{SalesOrderNum: "50001", ErpOrderNum: "E-50001", Num: "N-50001"},
			want: "50001",
		},
		{
			name: "erp order number fills a blank sales order number",
			raw:  RawOrderItem{SalesOrderNum: "  ", ErpOrderNum: "E-50002", Num: "N-50002"},
			want: "E-50002",
		},
		{
			name: "bare num is the last resort",
			raw:  RawOrderItem{Num: "N-50003"},
			want: "N-50003",
		},
		{
			name: "all blank yields empty",
			raw:  RawOrderItem{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.raw.ToLineItem().OrderNumber)
		})
	}
}

func TestRawOrderItem_ToLineItem_BillingFallbacks(t *testing.T) {
	raw := RawOrderItem{
		SalesOrderNum: "50010",
		BillToName:    "Acme Distribution",
		BillToAddress: "123 Main St",
		ShippingCity:  "Austin",
		BillToState:   "TX",
		BillToZip:     "78701",
	}

	item := raw.ToLineItem()
	assert.Equal(t, "Acme Distribution", item.BillingName)
	assert.Equal(t, "123 Main St", item.BillingAddress)
	assert.Equal(t, "Austin", item.BillingCity)
	assert.Equal(t, "TX", item.BillingState)
	assert.Equal(t, "78701", item.BillingZip)
}

func TestRawOrderItem_ToLineItem_CoercesDateAndAmount(t *testing.T) {
	raw := RawOrderItem{
		SalesOrderNum:  "50020",
		PostingDateStr: "01/15/2024",
		Revenue:        "$1,234.50",
	}

	item := raw.ToLineItem()
	require.NotNil(t, item.PostingDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *item.PostingDate)
	assert.True(t, item.Revenue.Equal(decimal.RequireFromString("1234.50")))
}

func TestRawOrderItem_ToLineItem_BadValuesSafeDefaults(t *testing.T) {
	raw := RawOrderItem{
		SalesOrderNum:  "50030",
		PostingDateStr: "not a date",
		Revenue:        "n/a",
	}

	item := raw.ToLineItem()
	assert.Nil(t, item.PostingDate)
	assert.True(t, item.Revenue.IsZero())
}
