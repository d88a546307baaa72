package model

import "time"

// Partner is a business contact a supplier works with (a linked merchant,
// shipping company or other counterparty) together with its contract window.
type Partner struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	SupplierID    uint       `json:"supplier_id" gorm:"index;not null"`
	PartnerName   string     `json:"partner_name" gorm:"type:varchar(100);not null"`
	PartnerType   string     `json:"partner_type" gorm:"type:varchar(50);not null"`
	ContactPerson string     `json:"contact_person" gorm:"type:varchar(100)"`
	Phone         string     `json:"phone" gorm:"type:varchar(20)"`
	Email         string     `json:"email" gorm:"type:varchar(100)"`
	Address       string     `json:"address" gorm:"type:text"`
	ContractStart *time.Time `json:"contract_start,omitempty"`
	ContractEnd   *time.Time `json:"contract_end,omitempty"`
	Notes         string     `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
