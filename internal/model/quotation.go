package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotationStatus tracks the lifecycle of a supplier's price offer
type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "draft"
	QuotationSent     QuotationStatus = "sent"
	QuotationAccepted QuotationStatus = "accepted"
	QuotationRejected QuotationStatus = "rejected"
	QuotationExpired  QuotationStatus = "expired"
)

// Quotation is a supplier's price offer to a merchant
type Quotation struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	SupplierID      uint            `json:"supplier_id" gorm:"index;not null"`
	MerchantID      *uint           `json:"merchant_id,omitempty" gorm:"index"`
	QuotationNumber string          `json:"quotation_number" gorm:"type:varchar(50);uniqueIndex;not null"`
	Title           string          `json:"title" gorm:"type:varchar(100);not null"`
	Description     string          `json:"description" gorm:"type:text"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);default:'SAR'"`
	Status          QuotationStatus `json:"status" gorm:"type:varchar(20);default:'draft'"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
	Notes           string          `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []QuotationItem `json:"items" gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// QuotationItem is one priced line of a quotation
type QuotationItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	QuotationID uint            `json:"quotation_id" gorm:"index;not null"`
	ProductID   *uint           `json:"product_id,omitempty"`
	ProductName string          `json:"product_name" gorm:"type:varchar(100);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
}
