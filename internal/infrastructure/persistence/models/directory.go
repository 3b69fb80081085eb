package models

import (
	"time"

	"github.com/salesops/backend/internal/domain/directory"
	"github.com/shopspring/decimal"
)

// CrmCompanyModel is the persistence model for one CRM company row.
type CrmCompanyModel struct {
	ID             string `gorm:"type:varchar(64);primaryKey"`
	AccountID      string `gorm:"type:varchar(64);index"`
	AccountOrderID string `gorm:"type:varchar(64);index"`
	Name           string `gorm:"type:varchar(255)"`
	Street         string `gorm:"type:text"`
	City           string `gorm:"type:varchar(120)"`
	State          string `gorm:"type:varchar(60)"`
	PostalCode     string `gorm:"type:varchar(20)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (CrmCompanyModel) TableName() string {
	return "crm_companies"
}

// ToDomain converts the persistence model to a domain CrmCompany.
func (m *CrmCompanyModel) ToDomain() directory.CrmCompany {
	return directory.CrmCompany{
		ID:             m.ID,
		AccountID:      m.AccountID,
		AccountOrderID: m.AccountOrderID,
		Name:           m.Name,
		Street:         m.Street,
		City:           m.City,
		State:          m.State,
		PostalCode:     m.PostalCode,
	}
}

// ErpCustomerModel is the persistence model for one ERP customer row. The
// crm_* columns hold the derived link and are the only columns the
// reconciliation writer touches.
type ErpCustomerModel struct {
	ID            string `gorm:"type:varchar(64);primaryKey"`
	Name          string `gorm:"type:varchar(255)"`
	AccountID     string `gorm:"type:varchar(64);index"`
	AccountNumber string `gorm:"type:varchar(64);index"`

	BillingAddress string `gorm:"type:text"`
	BillingCity    string `gorm:"type:varchar(120)"`
	BillingState   string `gorm:"type:varchar(60)"`
	BillingZip     string `gorm:"type:varchar(20)"`

	ShippingAddress string `gorm:"type:text"`
	ShippingCity    string `gorm:"type:varchar(120)"`
	ShippingState   string `gorm:"type:varchar(60)"`
	ShippingZip     string `gorm:"type:varchar(20)"`

	OriginalOwner string `gorm:"type:varchar(120)"`
	SalesPerson   string `gorm:"type:varchar(120)"`

	CrmCompanyID   string     `gorm:"column:crm_company_id;type:varchar(64);index"`
	CrmCompanyName string     `gorm:"column:crm_company_name;type:varchar(255)"`
	CrmMatchType   string     `gorm:"column:crm_match_type;type:varchar(32)"`
	CrmConfidence  string     `gorm:"column:crm_confidence;type:varchar(16)"`
	CrmMatchedAt   *time.Time `gorm:"column:crm_matched_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ErpCustomerModel) TableName() string {
	return "erp_customers"
}

// ToDomain converts the persistence model to a domain ErpCustomer.
func (m *ErpCustomerModel) ToDomain() directory.ErpCustomer {
	c := directory.ErpCustomer{
		ID:              m.ID,
		Name:            m.Name,
		AccountID:       m.AccountID,
		AccountNumber:   m.AccountNumber,
		BillingAddress:  m.BillingAddress,
		BillingCity:     m.BillingCity,
		BillingState:    m.BillingState,
		BillingZip:      m.BillingZip,
		ShippingAddress: m.ShippingAddress,
		ShippingCity:    m.ShippingCity,
		ShippingState:   m.ShippingState,
		ShippingZip:     m.ShippingZip,
		OriginalOwner:   m.OriginalOwner,
		SalesPerson:     m.SalesPerson,
	}
	if m.CrmCompanyID != "" {
		link := &directory.CrmLink{
			CompanyID:   m.CrmCompanyID,
			CompanyName: m.CrmCompanyName,
			MatchType:   m.CrmMatchType,
			Confidence:  m.CrmConfidence,
		}
		if m.CrmMatchedAt != nil {
			link.MatchedAt = *m.CrmMatchedAt
		}
		c.Link = link
	}
	return c
}

// OrderItemModel is the persistence model for one raw order line. Source
// exports disagree on column names, so the table carries every observed
// variant and the raw-row coercion decides which one wins. Dates and
// amounts stay text; coercion turns bad values into safe defaults instead
// of failing the row.
type OrderItemModel struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	SalesOrderNum string `gorm:"type:varchar(64);index"`
	ErpOrderNum   string `gorm:"type:varchar(64)"`
	Num           string `gorm:"type:varchar(64)"`

	CustomerID string `gorm:"type:varchar(64);index"`

	BillingName  string `gorm:"type:varchar(255)"`
	BillToName   string `gorm:"type:varchar(255)"`
	CustomerName string `gorm:"type:varchar(255)"`

	BillingAddress string `gorm:"type:text"`
	BillToAddress  string `gorm:"type:text"`
	BillingStreet  string `gorm:"type:text"`

	BillingCity  string `gorm:"type:varchar(120)"`
	BillToCity   string `gorm:"type:varchar(120)"`
	ShippingCity string `gorm:"type:varchar(120)"`

	BillingState  string `gorm:"type:varchar(60)"`
	BillToState   string `gorm:"type:varchar(60)"`
	ShippingState string `gorm:"type:varchar(60)"`

	BillingZip        string `gorm:"type:varchar(20)"`
	BillToZip         string `gorm:"type:varchar(20)"`
	BillingPostalCode string `gorm:"type:varchar(20)"`

	PostingDate string `gorm:"type:varchar(40)"`

	ProductDescription string `gorm:"type:text"`
	Description        string `gorm:"type:text"`
	ProductNum         string `gorm:"type:varchar(120)"`
	SKU                string `gorm:"column:sku;type:varchar(120)"`

	Revenue    string `gorm:"type:varchar(40)"`
	TotalPrice string `gorm:"type:varchar(40)"`

	SalesRep    string `gorm:"type:varchar(120)"`
	SalesPerson string `gorm:"type:varchar(120)"`

	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_line_items"
}

// ToDomain collapses the sparse row into a typed line item.
func (m *OrderItemModel) ToDomain() directory.OrderLineItem {
	raw := directory.RawOrderItem{
		SalesOrderNum: m.SalesOrderNum,
		ErpOrderNum:   m.ErpOrderNum,
		Num:           m.Num,

		CustomerID: m.CustomerID,

		BillingName:  m.BillingName,
		BillToName:   m.BillToName,
		CustomerName: m.CustomerName,

		BillingAddress: m.BillingAddress,
		BillToAddress:  m.BillToAddress,
		BillingStreet:  m.BillingStreet,

		BillingCity:  m.BillingCity,
		BillToCity:   m.BillToCity,
		ShippingCity: m.ShippingCity,

		BillingState:  m.BillingState,
		BillToState:   m.BillToState,
		ShippingState: m.ShippingState,

		BillingZip:        m.BillingZip,
		BillToZip:         m.BillToZip,
		BillingPostalCode: m.BillingPostalCode,

		PostingDateStr: m.PostingDate,

		ProductDescription: m.ProductDescription,
		Description:        m.Description,
		ProductNum:         m.ProductNum,
		SKU:                m.SKU,

		Revenue:    m.Revenue,
		TotalPrice: m.TotalPrice,

		SalesRep:    m.SalesRep,
		SalesPerson: m.SalesPerson,
	}
	return raw.ToLineItem()
}

// MarketplaceCustomerModel is the persistence model for one reseller roster
// row. The match_* and switcher_* columns hold derived annotations and are
// only written by the reconciliation writer.
type MarketplaceCustomerModel struct {
	ID           string `gorm:"type:varchar(128);primaryKey"`
	BusinessName string `gorm:"type:varchar(255)"`

	BillingAddress string `gorm:"type:text"`
	BillingCity    string `gorm:"type:varchar(120)"`
	BillingState   string `gorm:"type:varchar(60)"`
	BillingZip     string `gorm:"type:varchar(20)"`

	TotalOrders    int             `gorm:"not null;default:0"`
	LifetimeValue  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FirstOrderDate *time.Time
	LastOrderDate  *time.Time

	Source string `gorm:"type:varchar(40)"`

	MatchErpCustomerID   string `gorm:"column:match_erp_customer_id;type:varchar(64)"`
	MatchErpBusinessName string `gorm:"column:match_erp_business_name;type:varchar(255)"`
	MatchOriginalRep     string `gorm:"column:match_original_rep;type:varchar(120)"`
	MatchMode            string `gorm:"column:match_mode;type:varchar(16)"`
	MatchScore           int    `gorm:"column:match_score;not null;default:0"`
	MatchAlternatives    int    `gorm:"column:match_alternatives;not null;default:0"`

	SwitcherIsSwitcher      bool            `gorm:"column:switcher_is_switcher;not null;default:false"`
	SwitcherSwitchDate      *time.Time      `gorm:"column:switcher_switch_date"`
	SwitcherGapDays         int             `gorm:"column:switcher_gap_days;not null;default:0"`
	SwitcherLastDirectOrder *time.Time      `gorm:"column:switcher_last_direct_order"`
	SwitcherDirectOrders    int             `gorm:"column:switcher_direct_orders;not null;default:0"`
	SwitcherDirectRevenue   decimal.Decimal `gorm:"column:switcher_direct_revenue;type:decimal(18,4);not null;default:0"`
	SwitcherFirstOrder      *time.Time      `gorm:"column:switcher_first_order"`
	SwitcherOrders          int             `gorm:"column:switcher_orders;not null;default:0"`
	SwitcherRevenue         decimal.Decimal `gorm:"column:switcher_revenue;type:decimal(18,4);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (MarketplaceCustomerModel) TableName() string {
	return "marketplace_customers"
}

// ToDomain converts the persistence model to a domain MarketplaceCustomer.
func (m *MarketplaceCustomerModel) ToDomain() directory.MarketplaceCustomer {
	c := directory.MarketplaceCustomer{
		ID:             m.ID,
		BusinessName:   m.BusinessName,
		BillingAddress: m.BillingAddress,
		BillingCity:    m.BillingCity,
		BillingState:   m.BillingState,
		BillingZip:     m.BillingZip,
		TotalOrders:    m.TotalOrders,
		LifetimeValue:  m.LifetimeValue,
		FirstOrderDate: m.FirstOrderDate,
		LastOrderDate:  m.LastOrderDate,
		Source:         m.Source,
	}
	if m.MatchErpCustomerID != "" {
		c.Match = &directory.MatchAnnotation{
			ErpCustomerID:   m.MatchErpCustomerID,
			ErpBusinessName: m.MatchErpBusinessName,
			OriginalRep:     m.MatchOriginalRep,
			MatchMode:       m.MatchMode,
			MatchScore:      m.MatchScore,
			Alternatives:    m.MatchAlternatives,
		}
		c.Switcher = &directory.SwitcherAnnotation{
			IsSwitcher:      m.SwitcherIsSwitcher,
			SwitchDate:      m.SwitcherSwitchDate,
			GapDays:         m.SwitcherGapDays,
			LastDirectOrder: m.SwitcherLastDirectOrder,
			DirectOrders:    m.SwitcherDirectOrders,
			DirectRevenue:   m.SwitcherDirectRevenue,
			FirstOrder:      m.SwitcherFirstOrder,
			Orders:          m.SwitcherOrders,
			Revenue:         m.SwitcherRevenue,
		}
	}
	return c
}

// FromDomain populates a roster model from a domain MarketplaceCustomer,
// excluding the derived annotation columns.
func (m *MarketplaceCustomerModel) FromDomain(c *directory.MarketplaceCustomer) {
	m.ID = c.ID
	m.BusinessName = c.BusinessName
	m.BillingAddress = c.BillingAddress
	m.BillingCity = c.BillingCity
	m.BillingState = c.BillingState
	m.BillingZip = c.BillingZip
	m.TotalOrders = c.TotalOrders
	m.LifetimeValue = c.LifetimeValue
	m.FirstOrderDate = c.FirstOrderDate
	m.LastOrderDate = c.LastOrderDate
	m.Source = c.Source
}
