package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Extra is a single add-on customization on a line item (embroidery,
// monogram, contrast piping). Any extra makes the item non-returnable.
type Extra struct {
	Name  string `json:"name"`            // customization name
	Price Money  `json:"price,omitempty"` // optional surcharge
}

// ExtraList is a JSON-encoded slice of extras.
type ExtraList []Extra

// Value implements driver.Valuer.
func (e ExtraList) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *ExtraList) Scan(value interface{}) error {
	if value == nil {
		*e = ExtraList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, e)
}

// OrderItem is a garment line embedded in an order.
type OrderItem struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                     // primary key
	OrderID           uint           `gorm:"index;not null" json:"order_id"`                           // owning order
	ProductName       string         `gorm:"type:varchar(255);not null" json:"product_name"`           // garment name snapshot
	Size              string         `gorm:"type:varchar(50)" json:"size,omitempty"`                   // garment size
	Color             ColorRef       `gorm:"type:json" json:"color,omitempty"`                         // primary color (string or name/hex object)
	LiningColor       ColorRef       `gorm:"type:json" json:"lining_color,omitempty"`                  // lining color (string or name/hex object)
	Measurements      JSON           `gorm:"type:json" json:"measurements,omitempty"`                  // captured measurements
	Extras            ExtraList      `gorm:"type:json" json:"extras,omitempty"`                        // add-on customizations; non-empty implies non-returnable
	IsGiftCertificate bool           `gorm:"not null;default:false" json:"is_gift_certificate"`        // item-level gift certificate flag
	Quantity          int            `gorm:"not null;default:1" json:"quantity"`                       // quantity
	UnitPrice         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // unit price snapshot
	TotalPrice        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // line total
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                  // creation time
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                  // last mutation time
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                           // soft delete
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
