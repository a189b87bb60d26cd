package constants

// Order status constants
const (
	OrderStatusPending           = "pending"
	OrderStatusDelivered         = "delivered"
	OrderStatusCancelled         = "cancelled"
	OrderStatusRevoked           = "revoked"
	OrderStatusExchangeReturn    = "exchange_return"
	OrderStatusReturnStoreCredit = "return_store_credit"
	OrderStatusRefundRequested   = "refund_requested"
)

// Refund processing status constants
const (
	RefundStatusPending   = "pending"
	RefundStatusProcessed = "processed"
	RefundStatusRejected  = "rejected"
)

// Order type constants
const (
	OrderTypeStandard = "Standard"
	OrderTypeCustom   = "Custom"
)

// Lifecycle window constants (hours)
const (
	EditWindowHours         = 36
	CancelWindowHours       = 24
	PostDeliveryWindowHours = 72
)

// StoreCreditExpiryMonths is the validity window applied to every
// store-credit issuance. Each new issuance overwrites the expiry
// outright rather than extending per-tranche.
const StoreCreditExpiryMonths = 12

// RevokeReason is the fixed annotation written by a brand-initiated
// revocation. It lands in cancellation_reason for compatibility with
// historical records.
const RevokeReason = "Brand-Initiated (Pre-Delivery) - Unable to fulfil order"

// DomesticDeliveryCountry is the only delivery country eligible for
// exchange/return; everything else is treated as international.
const DomesticDeliveryCountry = "india"

// Exchange type constants
const (
	ExchangeTypeSize    = "size_exchange"
	ExchangeTypeProduct = "product_exchange"
)

// ReasonOther marks a free-text reason in every reason enum.
const ReasonOther = "other"

// Cancellation reason enum
const (
	CancelReasonNewOrderPlaced      = "new_order_placed"
	CancelReasonChangeInRequirement = "change_in_requirement"
	CancelReasonDeliveryTimeline    = "delivery_timeline_not_suitable"
)

// Product exchange reason enum
const (
	ExchangeReasonFit    = "fit_not_meet_expectations"
	ExchangeReasonStyle  = "style_preference_changed"
	ExchangeReasonFabric = "fabric_or_finish_concern"
	ExchangeReasonColor  = "color_variation"
)

// Return reason enum
const (
	ReturnReasonFit              = "fit_not_meet_expectations"
	ReturnReasonStyle            = "style_preference_changed"
	ReturnReasonFabric           = "fabric_or_finish_concern"
	ReturnReasonDeliveryTimeline = "delivery_timeline_concern"
	ReturnReasonRequirement      = "change_in_requirement"
)

// Refund reason enum
const (
	RefundReasonFaulty           = "product_was_faulty"
	RefundReasonIncorrectProduct = "incorrect_product_delivered"
	RefundReasonDeliveryDelayed  = "delivery_delayed"
)

// Staff status constants
const (
	StaffStatusActive   = "active"
	StaffStatusDisabled = "disabled"
)

// Staff role constants
const (
	RoleSales     = "sales"
	RoleWarehouse = "warehouse"
	RoleAdmin     = "admin"
)

// Queue name constants
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Async task type constants
const (
	TaskOrderStatusNotify = "order:status_notify"
)
