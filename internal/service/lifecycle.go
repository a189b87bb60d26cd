package service

import (
	"strings"
	"time"

	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/models"
)

// Non-returnable reason messages, in evaluation order. The order is part
// of the contract: callers render these verbatim.
const (
	NonReturnableCustomOrder     = "Custom order"
	NonReturnableInternational   = "International delivery"
	NonReturnableDiscountApplied = "Discount applied"
	NonReturnableStoreCredit     = "Paid with store credit"
	NonReturnableGiftCertificate = "Gift certificate"
	NonReturnableExtras          = "Customized with extras"
)

var cancelReasons = map[string]bool{
	constants.CancelReasonNewOrderPlaced:      true,
	constants.CancelReasonChangeInRequirement: true,
	constants.CancelReasonDeliveryTimeline:    true,
	constants.ReasonOther:                     true,
}

var productExchangeReasons = map[string]bool{
	constants.ExchangeReasonFit:    true,
	constants.ExchangeReasonStyle:  true,
	constants.ExchangeReasonFabric: true,
	constants.ExchangeReasonColor:  true,
	constants.ReasonOther:          true,
}

var returnReasons = map[string]bool{
	constants.ReturnReasonFit:              true,
	constants.ReturnReasonStyle:            true,
	constants.ReturnReasonFabric:           true,
	constants.ReturnReasonDeliveryTimeline: true,
	constants.ReturnReasonRequirement:      true,
	constants.ReasonOther:                  true,
}

var refundReasons = map[string]bool{
	constants.RefundReasonFaulty:           true,
	constants.RefundReasonIncorrectProduct: true,
	constants.RefundReasonDeliveryDelayed:  true,
	constants.ReasonOther:                  true,
}

// hoursSince returns the elapsed hours between at and now as a float.
func hoursSince(at time.Time, now time.Time) float64 {
	return now.Sub(at).Hours()
}

// CanEdit reports whether the order's details may still be rewritten:
// within 36 hours of capture and still pending.
func CanEdit(order *models.Order, now time.Time) bool {
	if order == nil || order.Status != constants.OrderStatusPending {
		return false
	}
	return hoursSince(order.CreatedAt, now) <= constants.EditWindowHours
}

// CanCancel reports whether the customer cancellation window is open:
// within 24 hours of capture (inclusive) and still pending.
func CanCancel(order *models.Order, now time.Time) bool {
	if order == nil || order.Status != constants.OrderStatusPending {
		return false
	}
	return hoursSince(order.CreatedAt, now) <= constants.CancelWindowHours
}

// CanRevoke reports whether brand-initiated revocation applies: strictly
// after the 24-hour cancellation window, still pending. The shared strict
// boundary means cancel and revoke never overlap: at exactly 24h cancel
// still holds and revoke does not yet.
func CanRevoke(order *models.Order, now time.Time) bool {
	if order == nil || order.Status != constants.OrderStatusPending {
		return false
	}
	return hoursSince(order.CreatedAt, now) > constants.CancelWindowHours
}

// WithinPostDeliveryWindow reports whether the order is delivered and
// within 72 hours of delivery.
func WithinPostDeliveryWindow(order *models.Order, now time.Time) bool {
	if order == nil || order.Status != constants.OrderStatusDelivered || order.DeliveredAt == nil {
		return false
	}
	return hoursSince(*order.DeliveredAt, now) <= constants.PostDeliveryWindowHours
}

// CanExchange reports whether an exchange may be requested: within the
// post-delivery window and not non-returnable.
func CanExchange(order *models.Order, now time.Time) bool {
	if !WithinPostDeliveryWindow(order, now) {
		return false
	}
	nonReturnable, _ := NonReturnable(order)
	return !nonReturnable
}

// CanReturn reports whether a return for store credit may be requested.
// Same predicate as CanExchange.
func CanReturn(order *models.Order, now time.Time) bool {
	return CanExchange(order, now)
}

// CanRefund reports whether a refund may be requested: within 72 hours of
// delivery. Non-returnability does not apply (brand-fault refunds cover
// non-returnable items), and the current status is deliberately not
// consulted: a refund stays available after an exchange or return request
// as long as the delivery window holds. Only an existing refund request
// blocks a new one, and that is enforced at apply time.
func CanRefund(order *models.Order, now time.Time) bool {
	if order == nil || order.DeliveredAt == nil {
		return false
	}
	return hoursSince(*order.DeliveredAt, now) <= constants.PostDeliveryWindowHours
}

// NonReturnable evaluates the disqualifying conditions for exchange and
// return and reports the matched human-readable reasons in evaluation
// order. Only the first line item is consulted.
func NonReturnable(order *models.Order) (bool, []string) {
	if order == nil {
		return false, nil
	}
	var reasons []string
	if order.OrderType == constants.OrderTypeCustom {
		reasons = append(reasons, NonReturnableCustomOrder)
	}
	country := strings.ToLower(strings.TrimSpace(order.DeliveryCountry))
	if country != "" && country != constants.DomesticDeliveryCountry {
		reasons = append(reasons, NonReturnableInternational)
	}
	if order.DiscountPercent > 0 || order.DiscountAmount.Decimal.IsPositive() {
		reasons = append(reasons, NonReturnableDiscountApplied)
	}
	if order.StoreCreditUsed.Decimal.IsPositive() {
		reasons = append(reasons, NonReturnableStoreCredit)
	}
	item := order.FirstItem()
	if order.IsGiftCertificate || (item != nil && item.IsGiftCertificate) {
		reasons = append(reasons, NonReturnableGiftCertificate)
	}
	if item != nil && len(item.Extras) > 0 {
		reasons = append(reasons, NonReturnableExtras)
	}
	return len(reasons) > 0, reasons
}

// ValidCancelReason reports whether the token is a member of the
// cancellation reason enum.
func ValidCancelReason(reason string) bool {
	return cancelReasons[reason]
}

// ValidProductExchangeReason reports whether the token is a member of the
// product exchange reason enum.
func ValidProductExchangeReason(reason string) bool {
	return productExchangeReasons[reason]
}

// ValidReturnReason reports whether the token is a member of the return
// reason enum.
func ValidReturnReason(reason string) bool {
	return returnReasons[reason]
}

// ValidRefundReason reports whether the token is a member of the refund
// reason enum.
func ValidRefundReason(reason string) bool {
	return refundReasons[reason]
}

// ComposeExchangeReason builds the stored exchange annotation from the
// requested type. Size exchanges carry the fixed label; product exchanges
// carry the selected reason token, with free text only for "other".
func ComposeExchangeReason(exchangeType, reason, otherText string) (string, error) {
	switch exchangeType {
	case constants.ExchangeTypeSize:
		return "Size Exchange", nil
	case constants.ExchangeTypeProduct:
		if reason == "" {
			return "", validationErrorf("exchange reason required for product exchange")
		}
		if !ValidProductExchangeReason(reason) {
			return "", validationErrorf("unknown exchange reason %q", reason)
		}
		if reason == constants.ReasonOther {
			text := strings.TrimSpace(otherText)
			if text == "" {
				return "", validationErrorf("exchange reason text required")
			}
			return "Product Exchange - Other: " + text, nil
		}
		return "Product Exchange - " + reason, nil
	case "":
		return "", validationErrorf("exchange type required")
	default:
		return "", validationErrorf("unknown exchange type %q", exchangeType)
	}
}

// ComposeReturnReason builds the stored return annotation: the reason
// token verbatim, or "Other: {text}" for free text.
func ComposeReturnReason(reason, otherText string) (string, error) {
	if reason == "" {
		return "", validationErrorf("return reason required")
	}
	if !ValidReturnReason(reason) {
		return "", validationErrorf("unknown return reason %q", reason)
	}
	if reason == constants.ReasonOther {
		text := strings.TrimSpace(otherText)
		if text == "" {
			return "", validationErrorf("return reason text required")
		}
		return "Other: " + text, nil
	}
	return reason, nil
}

// ComposeRefundReason builds the stored refund annotation: the reason
// token verbatim, or "Other: {text}" for free text.
func ComposeRefundReason(reason, otherText string) (string, error) {
	if reason == "" {
		return "", validationErrorf("refund reason required")
	}
	if !ValidRefundReason(reason) {
		return "", validationErrorf("unknown refund reason %q", reason)
	}
	if reason == constants.ReasonOther {
		text := strings.TrimSpace(otherText)
		if text == "" {
			return "", validationErrorf("refund reason text required")
		}
		return "Other: " + text, nil
	}
	return reason, nil
}

// ValidateCancelReason checks the cancellation reason token. The token
// is stored verbatim, "other" included.
func ValidateCancelReason(reason string) (string, error) {
	if reason == "" {
		return "", validationErrorf("cancellation reason required")
	}
	if !ValidCancelReason(reason) {
		return "", validationErrorf("unknown cancellation reason %q", reason)
	}
	return reason, nil
}

// OrderPermissions summarises which lifecycle actions are currently
// available on an order, for UI rendering.
type OrderPermissions struct {
	CanEdit              bool     `json:"can_edit"`
	CanCancel            bool     `json:"can_cancel"`
	CanRevoke            bool     `json:"can_revoke"`
	CanExchange          bool     `json:"can_exchange"`
	CanReturn            bool     `json:"can_return"`
	CanRefund            bool     `json:"can_refund"`
	NonReturnable        bool     `json:"non_returnable"`
	NonReturnableReasons []string `json:"non_returnable_reasons,omitempty"`
}

// PermissionsFor evaluates every lifecycle predicate against one order.
func PermissionsFor(order *models.Order, now time.Time) OrderPermissions {
	nonReturnable, reasons := NonReturnable(order)
	return OrderPermissions{
		CanEdit:              CanEdit(order, now),
		CanCancel:            CanCancel(order, now),
		CanRevoke:            CanRevoke(order, now),
		CanExchange:          CanExchange(order, now),
		CanReturn:            CanReturn(order, now),
		CanRefund:            CanRefund(order, now),
		NonReturnable:        nonReturnable,
		NonReturnableReasons: reasons,
	}
}
