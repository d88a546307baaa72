package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks the fulfillment pipeline of a purchase order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is the derived indicator of how much of an order's total has
// been covered by completed payments
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// PaymentState is the state of an individual payment record
type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentCompleted PaymentState = "completed"
	PaymentFailed    PaymentState = "failed"
	PaymentRefunded  PaymentState = "refunded"
)

// Valid reports whether s is one of the known payment states
func (s PaymentState) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// PurchaseOrder is a confirmed order a merchant places with a supplier.
// Fulfillment (Status) and payment (PaymentStatus) progress independently.
type PurchaseOrder struct {
	ID                    uint                `json:"id" gorm:"primaryKey"`
	MerchantID            uint                `json:"merchant_id" gorm:"index;not null"`
	SupplierID            uint                `json:"supplier_id" gorm:"index;not null"`
	QuotationID           *uint               `json:"quotation_id,omitempty" gorm:"index"`
	OrderNumber           string              `json:"order_number" gorm:"type:varchar(50);uniqueIndex;not null"`
	TotalAmount           decimal.Decimal     `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Currency              string              `json:"currency" gorm:"type:varchar(3);default:'SAR'"`
	Status                OrderStatus         `json:"status" gorm:"type:varchar(20);default:'pending'"`
	PaymentStatus         PaymentStatus       `json:"payment_status" gorm:"type:varchar(20);default:'pending'"`
	PaymentMethod         string              `json:"payment_method" gorm:"type:varchar(50)"`
	DeliveryAddress       string              `json:"delivery_address" gorm:"type:text"`
	DeliveryDateRequested *time.Time          `json:"delivery_date_requested,omitempty"`
	DeliveryDateConfirmed *time.Time          `json:"delivery_date_confirmed,omitempty"`
	Notes                 string              `json:"notes" gorm:"type:text"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
	Items                 []PurchaseOrderItem `json:"items" gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	Payments              []Payment           `json:"payments" gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// PurchaseOrderItem is one line of a purchase order. Items derived from a
// quotation are snapshots; later quotation edits do not touch them.
type PurchaseOrderItem struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	PurchaseOrderID  uint            `json:"purchase_order_id" gorm:"index;not null"`
	ProductID        *uint           `json:"product_id,omitempty"`
	ProductName      string          `json:"product_name" gorm:"type:varchar(100);not null"`
	Description      string          `json:"description" gorm:"type:text"`
	Quantity         int             `json:"quantity" gorm:"not null"`
	UnitPrice        decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	TotalPrice       decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	ReceivedQuantity int             `json:"received_quantity" gorm:"default:0"`
}

// Payment is one payment recorded against a purchase order
type Payment struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	PurchaseOrderID uint            `json:"purchase_order_id" gorm:"index;not null"`
	PaymentNumber   string          `json:"payment_number" gorm:"type:varchar(50);uniqueIndex;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);default:'SAR'"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(50);not null"`
	PaymentDate     time.Time       `json:"payment_date"`
	Status          PaymentState    `json:"status" gorm:"type:varchar(20);default:'completed'"`
	TransactionID   string          `json:"transaction_id" gorm:"type:varchar(100)"`
	Notes           string          `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`
}
