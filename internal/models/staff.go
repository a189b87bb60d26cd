package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff is an internal operator account (sales associate, warehouse
// staff or admin). Role assignment lives in the authz policy store.
type Staff struct {
	ID           uint           `gorm:"primarykey" json:"id"`               // primary key
	Username     string         `gorm:"uniqueIndex;not null" json:"username"` // login name
	PasswordHash string         `gorm:"not null" json:"-"`                  // bcrypt hash
	DisplayName  string         `gorm:"default:''" json:"display_name"`     // display name
	Status       string         `gorm:"default:'active'" json:"status"`     // account status
	IsSuper      bool           `gorm:"default:false" json:"is_super"`      // bypasses RBAC checks
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`            // last login time
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`            // creation time
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`            // last mutation time
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                     // soft delete
}

// TableName sets the table name.
func (Staff) TableName() string {
	return "staff"
}
