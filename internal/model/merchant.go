package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Merchant represents the merchant profile owned by a user with the merchant role
type Merchant struct {
	ID                     uint            `json:"id" gorm:"primaryKey"`
	UserID                 uint            `json:"user_id" gorm:"index;not null"`
	StoreName              string          `json:"store_name" gorm:"type:varchar(100);not null"`
	StoreAddress           string          `json:"store_address" gorm:"type:text"`
	StoreType              string          `json:"store_type" gorm:"type:varchar(50)"`
	TaxNumber              string          `json:"tax_number" gorm:"type:varchar(50)"`
	CommercialLicense      string          `json:"commercial_license" gorm:"type:varchar(100)"`
	Description            string          `json:"description" gorm:"type:text"`
	LogoURL                string          `json:"logo_url" gorm:"type:varchar(255)"`
	Rating                 float64         `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalPurchases         int             `json:"total_purchases" gorm:"default:0"`
	TotalSpent             decimal.Decimal `json:"total_spent" gorm:"type:decimal(12,2);default:0"`
	PreferredPaymentMethod string          `json:"preferred_payment_method" gorm:"type:varchar(50);default:'bank_transfer'"`
	CreditLimit            decimal.Decimal `json:"credit_limit" gorm:"type:decimal(12,2);default:0"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	DeletedAt              gorm.DeletedAt  `json:"-" gorm:"index"`
}

// RequestStatus tracks the lifecycle of a merchant's request for quotations
type RequestStatus string

const (
	RequestDraft          RequestStatus = "draft"
	RequestSent           RequestStatus = "sent"
	RequestReceivedQuotes RequestStatus = "received_quotes"
	RequestClosed         RequestStatus = "closed"
)

// QuotationRequest is a merchant's request for price offers (RFQ)
type QuotationRequest struct {
	ID                   uint                   `json:"id" gorm:"primaryKey"`
	MerchantID           uint                   `json:"merchant_id" gorm:"index;not null"`
	RequestNumber        string                 `json:"request_number" gorm:"type:varchar(50);uniqueIndex;not null"`
	Title                string                 `json:"title" gorm:"type:varchar(100);not null"`
	Description          string                 `json:"description" gorm:"type:text"`
	DeliveryDateRequired *time.Time             `json:"delivery_date_required,omitempty"`
	DeliveryAddress      string                 `json:"delivery_address" gorm:"type:text"`
	Status               RequestStatus          `json:"status" gorm:"type:varchar(20);default:'draft'"`
	Notes                string                 `json:"notes" gorm:"type:text"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
	Items                []QuotationRequestItem `json:"items" gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

// QuotationRequestItem is one line of a quotation request
type QuotationRequestItem struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	RequestID      uint             `json:"request_id" gorm:"index;not null"`
	ProductName    string           `json:"product_name" gorm:"type:varchar(100);not null"`
	Description    string           `json:"description" gorm:"type:text"`
	QuantityNeeded int              `json:"quantity_needed" gorm:"not null"`
	Unit           string           `json:"unit" gorm:"type:varchar(20);default:'piece'"`
	MaxPrice       *decimal.Decimal `json:"max_price,omitempty" gorm:"type:decimal(10,2)"`
	Specifications string           `json:"specifications" gorm:"type:text"`
}

// FavoriteSupplier links a merchant to a bookmarked supplier
type FavoriteSupplier struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	MerchantID uint      `json:"merchant_id" gorm:"uniqueIndex:idx_merchant_supplier;not null"`
	SupplierID uint      `json:"supplier_id" gorm:"uniqueIndex:idx_merchant_supplier;not null"`
	Notes      string    `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}
