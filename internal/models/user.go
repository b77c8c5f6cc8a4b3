package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values known to the application
const (
	RoleAdmin      = "admin"
	RoleSprzedawca = "sprzedawca"
	RoleMonter     = "monter"
)

// UserAccount represents a user in the system
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type UserAccount struct {
	ID          string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username    string     `gorm:"unique;not null" json:"username"`
	Password    string     `gorm:"not null" json:"-"`
	DisplayName string     `json:"displayName,omitempty"`
	Role        string     `gorm:"default:'monter'" json:"role"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for UserAccount model
func (UserAccount) TableName() string {
	return "user_accounts"
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSprzedawca || role == RoleMonter
}
