package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is a customer record. Store credit issued by
// return-for-credit accrues here; the expiry date is overwritten (not
// accumulated) by each issuance.
type Profile struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                        // primary key
	FullName          string         `gorm:"type:varchar(200);not null" json:"full_name"`                 // customer name
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`                           // contact email
	Phone             string         `gorm:"type:varchar(30)" json:"phone,omitempty"`                     // contact phone
	StoreCredit       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"store_credit"`   // running store-credit balance
	StoreCreditExpiry *time.Time     `json:"store_credit_expiry,omitempty"`                               // overwritten on every issuance
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                     // creation time
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                     // last mutation time
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                              // soft delete
}

// TableName sets the table name.
func (Profile) TableName() string {
	return "profiles"
}
