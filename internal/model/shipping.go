package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingModel is how a shipping company charges for deliveries
type PricingModel string

const (
	PricingPerKm     PricingModel = "per_km"
	PricingPerWeight PricingModel = "per_weight"
	PricingFixed     PricingModel = "fixed"
)

// ShippingCompany represents the shipping profile owned by a user with the
// shipping role
type ShippingCompany struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	CompanyName     string         `json:"company_name" gorm:"type:varchar(100);not null"`
	LicenseNumber   string         `json:"license_number" gorm:"type:varchar(50);uniqueIndex;not null"`
	ServiceAreas    string         `json:"-" gorm:"type:text"`
	VehicleTypes    string         `json:"-" gorm:"type:text"`
	PricingModel    PricingModel   `json:"pricing_model" gorm:"type:varchar(20);default:'per_km'"`
	BaseRate        float64        `json:"base_rate" gorm:"default:0"`
	MinCharge       float64        `json:"min_charge" gorm:"default:0"`
	MaxWeight       float64        `json:"max_weight" gorm:"default:1000"`
	MaxDistance     float64        `json:"max_distance" gorm:"default:500"`
	Rating          float64        `json:"rating" gorm:"default:0"`
	TotalDeliveries int            `json:"total_deliveries" gorm:"default:0"`
	IsVerified      bool           `json:"is_verified" gorm:"default:false"`
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// GetServiceAreas decodes the stored service area list
func (s *ShippingCompany) GetServiceAreas() []string {
	return decodeStringList(s.ServiceAreas)
}

// SetServiceAreas encodes and stores the service area list
func (s *ShippingCompany) SetServiceAreas(areas []string) {
	s.ServiceAreas = encodeStringList(areas)
}

// GetVehicleTypes decodes the stored vehicle type list
func (s *ShippingCompany) GetVehicleTypes() []string {
	return decodeStringList(s.VehicleTypes)
}

// SetVehicleTypes encodes and stores the vehicle type list
func (s *ShippingCompany) SetVehicleTypes(types []string) {
	s.VehicleTypes = encodeStringList(types)
}

// MarshalJSON includes the decoded lists in API responses
func (s ShippingCompany) MarshalJSON() ([]byte, error) {
	type alias ShippingCompany
	return json.Marshal(struct {
		alias
		ServiceAreaList []string `json:"service_areas"`
		VehicleTypeList []string `json:"vehicle_types"`
	}{
		alias:           alias(s),
		ServiceAreaList: s.GetServiceAreas(),
		VehicleTypeList: s.GetVehicleTypes(),
	})
}

func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []string{}
	}
	return list
}

func encodeStringList(list []string) string {
	data, err := json.Marshal(list)
	if err != nil {
		return ""
	}
	return string(data)
}

// QuotePrice computes a delivery price from the company's pricing model,
// floored at the minimum charge.
func (s *ShippingCompany) QuotePrice(distance, weight float64) decimal.Decimal {
	base := decimal.NewFromFloat(s.BaseRate)

	var price decimal.Decimal
	switch s.PricingModel {
	case PricingPerKm:
		price = base.Mul(decimal.NewFromFloat(distance))
	case PricingPerWeight:
		price = base.Mul(decimal.NewFromFloat(weight))
	default:
		price = base
	}

	min := decimal.NewFromFloat(s.MinCharge)
	if price.LessThan(min) {
		return min.Round(2)
	}
	return price.Round(2)
}

// ShipmentStatus tracks the delivery pipeline of a shipment
type ShipmentStatus string

const (
	ShipmentPending        ShipmentStatus = "pending"
	ShipmentConfirmed      ShipmentStatus = "confirmed"
	ShipmentPickedUp       ShipmentStatus = "picked_up"
	ShipmentInTransit      ShipmentStatus = "in_transit"
	ShipmentOutForDelivery ShipmentStatus = "out_for_delivery"
	ShipmentDelivered      ShipmentStatus = "delivered"
	ShipmentCancelled      ShipmentStatus = "cancelled"
	ShipmentReturned       ShipmentStatus = "returned"
)

// Shipment is a delivery managed by a shipping company for a merchant
type Shipment struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	TrackingNumber    string `json:"tracking_number" gorm:"type:varchar(50);uniqueIndex;not null"`
	ShippingCompanyID uint   `json:"shipping_company_id" gorm:"index;not null"`
	MerchantID        uint   `json:"merchant_id" gorm:"index;not null"`
	OrderID           *uint  `json:"order_id,omitempty"`

	PickupAddress      string    `json:"pickup_address" gorm:"type:text;not null"`
	PickupContactName  string    `json:"pickup_contact_name" gorm:"type:varchar(100);not null"`
	PickupContactPhone string    `json:"pickup_contact_phone" gorm:"type:varchar(20);not null"`
	PickupDate         time.Time `json:"pickup_date" gorm:"not null"`
	PickupTimeSlot     string    `json:"pickup_time_slot" gorm:"type:varchar(20)"`

	DeliveryAddress      string     `json:"delivery_address" gorm:"type:text;not null"`
	DeliveryContactName  string     `json:"delivery_contact_name" gorm:"type:varchar(100);not null"`
	DeliveryContactPhone string     `json:"delivery_contact_phone" gorm:"type:varchar(20);not null"`
	DeliveryDate         *time.Time `json:"delivery_date,omitempty"`
	DeliveryTimeSlot     string     `json:"delivery_time_slot" gorm:"type:varchar(20)"`

	PackageDescription string  `json:"package_description" gorm:"type:text"`
	PackageWeight      float64 `json:"package_weight"`
	PackageDimensions  string  `json:"package_dimensions" gorm:"type:varchar(50)"`
	PackageValue       float64 `json:"package_value"`

	QuotedPrice decimal.Decimal  `json:"quoted_price" gorm:"type:decimal(10,2);not null"`
	ActualPrice *decimal.Decimal `json:"actual_price,omitempty" gorm:"type:decimal(10,2)"`
	Currency    string           `json:"currency" gorm:"type:varchar(3);default:'SAR'"`

	Status              ShipmentStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Notes               string         `json:"notes" gorm:"type:text"`
	SpecialInstructions string         `json:"special_instructions" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ShipmentTracking is one immutable event on a shipment's timeline.
// Rows are only ever inserted, never updated or deleted.
type ShipmentTracking struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ShipmentID  uint           `json:"shipment_id" gorm:"index;not null"`
	Status      ShipmentStatus `json:"status" gorm:"type:varchar(50);not null"`
	Location    string         `json:"location" gorm:"type:varchar(200)"`
	Description string         `json:"description" gorm:"type:text"`
	Timestamp   time.Time      `json:"timestamp"`
	CreatedBy   string         `json:"created_by" gorm:"type:varchar(50)"`
}

// QuoteStatus tracks the lifecycle of a shipping quote
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

// ShippingQuote is a shipping company's price offer for a route.
// ValidUntil is advisory; nothing expires quotes automatically.
type ShippingQuote struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	QuoteNumber       string `json:"quote_number" gorm:"type:varchar(50);uniqueIndex;not null"`
	ShippingCompanyID uint   `json:"shipping_company_id" gorm:"index;not null"`
	MerchantID        uint   `json:"merchant_id" gorm:"index;not null"`

	PickupCity   string  `json:"pickup_city" gorm:"type:varchar(100);not null"`
	DeliveryCity string  `json:"delivery_city" gorm:"type:varchar(100);not null"`
	Distance     float64 `json:"distance"`

	PackageWeight     float64 `json:"package_weight" gorm:"not null"`
	PackageDimensions string  `json:"package_dimensions" gorm:"type:varchar(50)"`
	PackageType       string  `json:"package_type" gorm:"type:varchar(50)"`

	ServiceType  string     `json:"service_type" gorm:"type:varchar(20);default:'standard'"`
	PickupDate   time.Time  `json:"pickup_date" gorm:"not null"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`

	QuotedPrice decimal.Decimal `json:"quoted_price" gorm:"type:decimal(10,2);not null"`
	Currency    string          `json:"currency" gorm:"type:varchar(3);default:'SAR'"`
	ValidUntil  time.Time       `json:"valid_until" gorm:"not null"`

	Status QuoteStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Notes  string      `json:"notes" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// ShippingDriver represents a driver employed by a shipping company
type ShippingDriver struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ShippingCompanyID uint      `json:"shipping_company_id" gorm:"index;not null"`
	DriverName        string    `json:"driver_name" gorm:"type:varchar(100);not null"`
	DriverPhone       string    `json:"driver_phone" gorm:"type:varchar(20);not null"`
	DriverLicense     string    `json:"driver_license" gorm:"type:varchar(50);not null"`
	VehicleType       string    `json:"vehicle_type" gorm:"type:varchar(50);not null"`
	VehiclePlate      string    `json:"vehicle_plate" gorm:"type:varchar(20);not null"`
	VehicleCapacity   float64   `json:"vehicle_capacity"`
	IsActive          bool      `json:"is_active" gorm:"default:true"`
	CurrentLocation   string    `json:"current_location" gorm:"type:varchar(200)"`
	Rating            float64   `json:"rating" gorm:"default:0"`
	TotalDeliveries   int       `json:"total_deliveries" gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
