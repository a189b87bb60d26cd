package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a custom-garment purchase record with its lifecycle state.
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                        // primary key
	OrderNo             string         `gorm:"uniqueIndex;not null" json:"order_no"`                        // human-readable order number
	UserID              uint           `gorm:"index;not null" json:"user_id"`                               // owning customer profile
	CreatedByID         *uint          `gorm:"index" json:"created_by_id,omitempty"`                        // staff member who captured the order
	Status              string         `gorm:"index;not null" json:"status"`                                // lifecycle status
	OrderType           string         `gorm:"not null;default:'Standard'" json:"order_type"`               // Standard or Custom
	GrandTotal          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"`    // canonical order value
	NetTotal            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"net_total"`      // fallback order value when grand total absent
	DiscountPercent     float64        `gorm:"not null;default:0" json:"discount_percent"`                  // percentage discount applied at capture
	DiscountAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // flat discount applied at capture
	StoreCreditUsed     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"store_credit_used"` // store credit redeemed against this order
	IsGiftCertificate   bool           `gorm:"not null;default:false" json:"is_gift_certificate"`           // order-level gift certificate flag
	DeliveryCountry     string         `gorm:"type:varchar(100)" json:"delivery_country,omitempty"`         // destination country
	AddressLine1        string         `gorm:"type:varchar(255)" json:"address_line1,omitempty"`            // delivery address
	AddressLine2        string         `gorm:"type:varchar(255)" json:"address_line2,omitempty"`            // delivery address
	City                string         `gorm:"type:varchar(100)" json:"city,omitempty"`                     // delivery city
	State               string         `gorm:"type:varchar(100)" json:"state,omitempty"`                    // delivery state
	PostalCode          string         `gorm:"type:varchar(20)" json:"postal_code,omitempty"`               // delivery postal code
	DeliveryDate        *time.Time     `gorm:"index" json:"delivery_date,omitempty"`                        // expected delivery date
	DeliveredAt         *time.Time     `gorm:"index" json:"delivered_at,omitempty"`                         // set exactly once on delivery
	CancellationReason  string         `gorm:"type:varchar(255)" json:"cancellation_reason,omitempty"`      // written by cancel and revoke
	ExchangeReason      string         `gorm:"type:varchar(255)" json:"exchange_reason,omitempty"`          // written by exchange
	ReturnReason        string         `gorm:"type:varchar(255)" json:"return_reason,omitempty"`            // written by return-for-credit
	RefundReason        string         `gorm:"type:varchar(255)" json:"refund_reason,omitempty"`            // written by refund
	RefundStatus        string         `gorm:"type:varchar(50)" json:"refund_status,omitempty"`             // refund processing status
	CancelledAt         *time.Time     `json:"cancelled_at,omitempty"`                                      // cancel timestamp
	RevokedAt           *time.Time     `json:"revoked_at,omitempty"`                                        // revoke timestamp
	ExchangeRequestedAt *time.Time     `json:"exchange_requested_at,omitempty"`                             // shared by exchange, return and refund (historical schema)
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                     // capture time
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                     // last mutation time
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                              // soft delete

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // line items, at least one
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}

// Value returns the canonical monetary value of the order:
// grand_total when positive, otherwise net_total.
func (o *Order) Value() Money {
	if o.GrandTotal.Decimal.IsPositive() {
		return o.GrandTotal
	}
	return o.NetTotal
}

// FirstItem returns the first line item, or nil when none exist.
// Lifecycle eligibility consults only the first item.
func (o *Order) FirstItem() *OrderItem {
	if len(o.Items) == 0 {
		return nil
	}
	return &o.Items[0]
}
