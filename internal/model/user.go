package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role identifies which side of the marketplace a user acts on.
// A user's role is fixed at registration and never changes.
type Role string

const (
	RoleSupplier Role = "supplier"
	RoleMerchant Role = "merchant"
	RoleShipping Role = "shipping"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSupplier, RoleMerchant, RoleShipping:
		return true
	}
	return false
}

// User represents an account stored in the database
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"`
	FullName     string         `json:"full_name" gorm:"type:varchar(100);not null"`
	Phone        string         `json:"phone" gorm:"type:varchar(20)"`
	Role         Role           `json:"role" gorm:"type:varchar(20);index;not null"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Setting is one per-user preference. String values are stored raw; anything
// else is stored JSON-encoded so types survive the round trip.
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_user_setting;not null"`
	Key       string    `json:"key" gorm:"type:varchar(100);uniqueIndex:idx_user_setting;not null"`
	Value     string    `json:"value" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetPassword hashes and stores the given plaintext password
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// CheckPassword reports whether the given plaintext password matches
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
