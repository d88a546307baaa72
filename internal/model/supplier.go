package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Supplier represents the supplier profile owned by a user with the supplier role
type Supplier struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	CompanyName     string         `json:"company_name" gorm:"type:varchar(100);not null"`
	CompanyAddress  string         `json:"company_address" gorm:"type:text"`
	TaxNumber       string         `json:"tax_number" gorm:"type:varchar(50)"`
	BusinessLicense string         `json:"business_license" gorm:"type:varchar(100)"`
	Description     string         `json:"description" gorm:"type:text"`
	LogoURL         string         `json:"logo_url" gorm:"type:varchar(255)"`
	Rating          float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalOrders     int            `json:"total_orders" gorm:"default:0"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// Product represents a catalog listing owned by a supplier
type Product struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	SupplierID       uint            `json:"supplier_id" gorm:"index;not null"`
	Name             string          `json:"name" gorm:"type:varchar(100);not null"`
	Description      string          `json:"description" gorm:"type:text"`
	Category         string          `json:"category" gorm:"type:varchar(50);index"`
	Price            decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	StockQuantity    int             `json:"stock_quantity" gorm:"default:0"`
	MinOrderQuantity int             `json:"min_order_quantity" gorm:"default:1"`
	Unit             string          `json:"unit" gorm:"type:varchar(20);default:'piece'"`
	Images           string          `json:"-" gorm:"type:text"`
	IsActive         bool            `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// GetImages decodes the stored image list
func (p *Product) GetImages() []string {
	if p.Images == "" {
		return []string{}
	}
	var images []string
	if err := json.Unmarshal([]byte(p.Images), &images); err != nil {
		return []string{}
	}
	return images
}

// SetImages encodes and stores the image list
func (p *Product) SetImages(images []string) {
	data, err := json.Marshal(images)
	if err != nil {
		return
	}
	p.Images = string(data)
}

// MarshalJSON includes the decoded image list in API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		ImageList []string `json:"images"`
	}{
		alias:     alias(p),
		ImageList: p.GetImages(),
	})
}

// Driver represents a delivery driver managed by a supplier
type Driver struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SupplierID      uint      `json:"supplier_id" gorm:"index;not null"`
	Name            string    `json:"name" gorm:"type:varchar(100);not null"`
	Phone           string    `json:"phone" gorm:"type:varchar(20);not null"`
	Email           string    `json:"email" gorm:"type:varchar(100)"`
	LicenseNumber   string    `json:"license_number" gorm:"type:varchar(50)"`
	VehicleType     string    `json:"vehicle_type" gorm:"type:varchar(50)"`
	VehiclePlate    string    `json:"vehicle_plate" gorm:"type:varchar(20)"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	Rating          float64   `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalDeliveries int       `json:"total_deliveries" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
