package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nau/billing/internal/domain/billing"
)

// TransactionRecordModel is the persistence model for the TransactionRecord
// domain entity. BasketID carries a unique index so two concurrent checkout
// completions cannot both insert, and is nullable so the record survives
// basket deletion.
type TransactionRecordModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	BasketID *int64    `gorm:"uniqueIndex:idx_transaction_records_basket"`
	State    string    `gorm:"type:varchar(20);not null;default:'TO_BE_SENT';index"`
	// Pointers so an absent request/response is stored as NULL; postgres
	// rejects the empty string as jsonb.
	RequestJSON  *string   `gorm:"type:jsonb;column:request"`
	ResponseJSON *string   `gorm:"type:jsonb;column:response"`
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionRecordModel) TableName() string {
	return "transaction_records"
}

// ToDomain converts the persistence model to a domain TransactionRecord.
func (m *TransactionRecordModel) ToDomain() *billing.TransactionRecord {
	record := &billing.TransactionRecord{
		ID:        m.ID,
		BasketID:  m.BasketID,
		State:     billing.TransactionState(m.State),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.RequestJSON != nil {
		var payload billing.TransactionPayload
		if err := json.Unmarshal([]byte(*m.RequestJSON), &payload); err == nil {
			record.Request = &payload
		}
	}
	if m.ResponseJSON != nil {
		record.Response = json.RawMessage(*m.ResponseJSON)
	}
	return record
}

// FromDomain populates the persistence model from a domain TransactionRecord.
func (m *TransactionRecordModel) FromDomain(record *billing.TransactionRecord) {
	m.ID = record.ID
	m.BasketID = record.BasketID
	m.State = record.State.String()
	m.CreatedAt = record.CreatedAt
	m.UpdatedAt = record.UpdatedAt
	m.RequestJSON = nil
	if record.Request != nil {
		if raw, err := json.Marshal(record.Request); err == nil {
			request := string(raw)
			m.RequestJSON = &request
		}
	}
	m.ResponseJSON = nil
	if len(record.Response) > 0 {
		response := string(record.Response)
		m.ResponseJSON = &response
	}
}

// BillingProfileModel is the persistence model for the BillingProfile
// domain entity, one row per basket.
type BillingProfileModel struct {
	BasketID    int64     `gorm:"primary_key;autoIncrement:false"`
	Name        string    `gorm:"type:varchar(255)"`
	Line1       string    `gorm:"type:varchar(255)"`
	Line2       string    `gorm:"type:varchar(255)"`
	Line3       string    `gorm:"type:varchar(255)"`
	Line4       string    `gorm:"type:varchar(255)"`
	State       string    `gorm:"type:varchar(255)"`
	PostalCode  string    `gorm:"type:varchar(64)"`
	CountryCode string    `gorm:"type:varchar(2)"`
	VATIN       string    `gorm:"type:varchar(255);column:vatin"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillingProfileModel) TableName() string {
	return "billing_profiles"
}

// ToDomain converts the persistence model to a domain BillingProfile.
func (m *BillingProfileModel) ToDomain() *billing.BillingProfile {
	return &billing.BillingProfile{
		BasketID:    m.BasketID,
		Name:        m.Name,
		Line1:       m.Line1,
		Line2:       m.Line2,
		Line3:       m.Line3,
		Line4:       m.Line4,
		State:       m.State,
		PostalCode:  m.PostalCode,
		CountryCode: m.CountryCode,
		VATIN:       m.VATIN,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain BillingProfile.
func (m *BillingProfileModel) FromDomain(profile *billing.BillingProfile) {
	m.BasketID = profile.BasketID
	m.Name = profile.Name
	m.Line1 = profile.Line1
	m.Line2 = profile.Line2
	m.Line3 = profile.Line3
	m.Line4 = profile.Line4
	m.State = profile.State
	m.PostalCode = profile.PostalCode
	m.CountryCode = profile.CountryCode
	m.VATIN = profile.VATIN
	m.CreatedAt = profile.CreatedAt
	m.UpdatedAt = profile.UpdatedAt
}

// OrderModel is the read model of a completed order. Orders are written by
// the storefront's checkout; this service only reads them.
type OrderModel struct {
	ID                   int64            `gorm:"primary_key"`
	Number               string           `gorm:"type:varchar(64);not null;uniqueIndex"`
	BasketID             int64            `gorm:"not null;index"`
	Partner              string           `gorm:"type:varchar(64);not null"`
	OwnerName            string           `gorm:"type:varchar(255);not null"`
	OwnerEmail           string           `gorm:"type:varchar(255);not null"`
	Currency             string           `gorm:"type:varchar(12);not null"`
	TotalInclTax         decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	TotalDiscountInclTax decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	CardType             string           `gorm:"type:varchar(32)"`
	Lines                []OrderLineModel `gorm:"foreignKey:OrderID"`
	PlacedAt             time.Time
	CreatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is one purchased item of an order.
type OrderLineModel struct {
	ID               int64           `gorm:"primary_key"`
	OrderID          int64           `gorm:"not null;index"`
	Title            string          `gorm:"type:varchar(255);not null"`
	Quantity         int             `gorm:"not null"`
	UnitPriceInclTax decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountExclTax  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountInclTax  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ProductTitle     string          `gorm:"type:varchar(255);not null"`
	CourseID         string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *billing.Order {
	order := &billing.Order{
		ID:                   m.ID,
		Number:               m.Number,
		BasketID:             m.BasketID,
		Partner:              m.Partner,
		OwnerName:            m.OwnerName,
		OwnerEmail:           m.OwnerEmail,
		Currency:             m.Currency,
		TotalInclTax:         m.TotalInclTax,
		TotalDiscountInclTax: m.TotalDiscountInclTax,
		CardType:             m.CardType,
		Lines:                make([]billing.OrderLine, 0, len(m.Lines)),
		PlacedAt:             m.PlacedAt,
		CreatedAt:            m.CreatedAt,
	}
	for _, line := range m.Lines {
		order.Lines = append(order.Lines, billing.OrderLine{
			ID:               line.ID,
			OrderID:          line.OrderID,
			Title:            line.Title,
			Quantity:         line.Quantity,
			UnitPriceInclTax: line.UnitPriceInclTax,
			DiscountExclTax:  line.DiscountExclTax,
			DiscountInclTax:  line.DiscountInclTax,
			ProductTitle:     line.ProductTitle,
			CourseID:         line.CourseID,
		})
	}
	return order
}
