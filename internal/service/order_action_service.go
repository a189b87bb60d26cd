package service

import (
	"time"

	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/logger"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/queue"
	"github.com/atelier-next/internal/repository"

	"gorm.io/gorm"
)

// OrderActionService applies lifecycle transitions to orders. Every entry
// point runs its read-decide-write sequence inside a transaction holding a
// row lock on the order, with a status-guarded update as the final write so
// a concurrent transition surfaces as a conflict instead of a double apply.
type OrderActionService struct {
	orderRepo   repository.OrderRepository
	profileRepo repository.ProfileRepository
	queueClient *queue.Client
	clock       Clock
}

// NewOrderActionService creates the lifecycle action service. A nil clock
// falls back to the system clock.
func NewOrderActionService(
	orderRepo repository.OrderRepository,
	profileRepo repository.ProfileRepository,
	queueClient *queue.Client,
	clock Clock,
) *OrderActionService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &OrderActionService{
		orderRepo:   orderRepo,
		profileRepo: profileRepo,
		queueClient: queueClient,
		clock:       clock,
	}
}

// EditOrderInput carries the rewritable subset of an order: first-item
// garment details plus the delivery address. Nil pointers leave the stored
// value untouched.
type EditOrderInput struct {
	Size            *string          // first-item size
	Color           *models.ColorRef // first-item color
	LiningColor     *models.ColorRef // first-item lining color
	Measurements    models.JSON      // first-item measurements, replaced wholesale when non-nil
	AddressLine1    *string
	AddressLine2    *string
	City            *string
	State           *string
	PostalCode      *string
	DeliveryCountry *string
}

// ApplyCancel cancels a pending order inside the customer cancellation
// window and records the supplied reason.
func (s *OrderActionService) ApplyCancel(orderID uint, reason string) (*models.Order, error) {
	now := s.clock.Now()
	var result *models.Order
	var previous string
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := s.lockOrder(repo, orderID)
		if err != nil {
			return err
		}
		if order.Status != constants.OrderStatusPending {
			return stateErrorf("cannot cancel order %s from status %s", order.OrderNo, order.Status)
		}
		if !CanCancel(order, now) {
			return permissionErrorf("cancellation window closed for order %s", order.OrderNo)
		}
		stored, err := ValidateCancelReason(reason)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"cancellation_reason": stored,
			"cancelled_at":        now,
			"updated_at":          now,
		}
		if err := s.transition(repo, order, constants.OrderStatusCancelled, updates); err != nil {
			return err
		}
		previous = constants.OrderStatusPending
		order.CancellationReason = stored
		order.CancelledAt = &now
		order.UpdatedAt = now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatusChange(result, previous)
	return result, nil
}

// ApplyRevoke performs a brand-initiated revocation of a pending order
// after the customer cancellation window has closed. The fixed revocation
// message lands in cancellation_reason, matching historical records.
func (s *OrderActionService) ApplyRevoke(orderID uint) (*models.Order, error) {
	now := s.clock.Now()
	var result *models.Order
	var previous string
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := s.lockOrder(repo, orderID)
		if err != nil {
			return err
		}
		if order.Status != constants.OrderStatusPending {
			return stateErrorf("cannot revoke order %s from status %s", order.OrderNo, order.Status)
		}
		if !CanRevoke(order, now) {
			return permissionErrorf("order %s is still inside the customer cancellation window", order.OrderNo)
		}
		updates := map[string]interface{}{
			"cancellation_reason": constants.RevokeReason,
			"revoked_at":          now,
			"updated_at":          now,
		}
		if err := s.transition(repo, order, constants.OrderStatusRevoked, updates); err != nil {
			return err
		}
		previous = constants.OrderStatusPending
		order.CancellationReason = constants.RevokeReason
		order.RevokedAt = &now
		order.UpdatedAt = now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatusChange(result, previous)
	return result, nil
}

// ApplyExchange requests an exchange on a delivered order inside the
// post-delivery window, provided the order is returnable.
func (s *OrderActionService) ApplyExchange(orderID uint, exchangeType, reason, otherText string) (*models.Order, error) {
	now := s.clock.Now()
	var result *models.Order
	var previous string
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := s.lockOrder(repo, orderID)
		if err != nil {
			return err
		}
		if order.Status != constants.OrderStatusDelivered {
			return stateErrorf("cannot exchange order %s from status %s", order.OrderNo, order.Status)
		}
		if !WithinPostDeliveryWindow(order, now) {
			return permissionErrorf("exchange window closed for order %s", order.OrderNo)
		}
		if nonReturnable, reasons := NonReturnable(order); nonReturnable {
			return permissionErrorf("order %s is not eligible for exchange: %v", order.OrderNo, reasons)
		}
		stored, err := ComposeExchangeReason(exchangeType, reason, otherText)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"exchange_reason":       stored,
			"exchange_requested_at": now,
			"updated_at":            now,
		}
		if err := s.transition(repo, order, constants.OrderStatusExchangeReturn, updates); err != nil {
			return err
		}
		previous = constants.OrderStatusDelivered
		order.ExchangeReason = stored
		order.ExchangeRequestedAt = &now
		order.UpdatedAt = now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatusChange(result, previous)
	return result, nil
}

// ApplyReturn requests a return for store credit on a delivered order and
// credits the owning profile with the order value. The order status write
// commits first; a profile failure after that commit is reported as a
// PartialApplyError so the credit can be reconciled manually instead of
// disappearing into a generic failure.
func (s *OrderActionService) ApplyReturn(orderID uint, reason, otherText string) (*models.Order, error) {
	now := s.clock.Now()
	var result *models.Order
	var previous string
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := s.lockOrder(repo, orderID)
		if err != nil {
			return err
		}
		if order.Status != constants.OrderStatusDelivered {
			return stateErrorf("cannot return order %s from status %s", order.OrderNo, order.Status)
		}
		if !WithinPostDeliveryWindow(order, now) {
			return permissionErrorf("return window closed for order %s", order.OrderNo)
		}
		if nonReturnable, reasons := NonReturnable(order); nonReturnable {
			return permissionErrorf("order %s is not eligible for return: %v", order.OrderNo, reasons)
		}
		stored, err := ComposeReturnReason(reason, otherText)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"return_reason":         stored,
			"exchange_requested_at": now,
			"updated_at":            now,
		}
		if err := s.transition(repo, order, constants.OrderStatusReturnStoreCredit, updates); err != nil {
			return err
		}
		previous = constants.OrderStatusDelivered
		order.ReturnReason = stored
		order.ExchangeRequestedAt = &now
		order.UpdatedAt = now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.creditProfile(result.UserID, result.Value(), now); err != nil {
		return result, &PartialApplyError{
			Action:  "return",
			OrderID: result.ID,
			Stage:   "profile credit",
			Err:     err,
		}
	}
	s.notifyStatusChange(result, previous)
	return result, nil
}

// ApplyRefund requests a refund within 72 hours of delivery. The current
// status is not a gate except for an existing refund request: a refund may
// follow an exchange or return request while the delivery window holds,
// and non-returnability never blocks it.
func (s *OrderActionService) ApplyRefund(orderID uint, reason, otherText string) (*models.Order, error) {
	now := s.clock.Now()
	var result *models.Order
	var previous string
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := s.lockOrder(repo, orderID)
		if err != nil {
			return err
		}
		if order.Status == constants.OrderStatusRefundRequested {
			return stateErrorf("refund already requested for order %s", order.OrderNo)
		}
		if !CanRefund(order, now) {
			return permissionErrorf("refund window closed for order %s", order.OrderNo)
		}
		stored, err := ComposeRefundReason(reason, otherText)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"refund_reason":         stored,
			"refund_status":         constants.RefundStatusPending,
			"exchange_requested_at": now,
			"updated_at":            now,
		}
		previous = order.Status
		if err := s.transition(repo, order, constants.OrderStatusRefundRequested, updates); err != nil {
			return err
		}
		order.RefundReason = stored
		order.RefundStatus = constants.RefundStatusPending
		order.ExchangeRequestedAt = &now
		order.UpdatedAt = now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatusChange(result, previous)
	return result, nil
}

// ApplyEdit rewrites the editable subset of a pending order. Eligibility
// is re-checked at commit time: a form opened inside the window does not
// entitle a stale submission.
func (s *OrderActionService) ApplyEdit(orderID uint, input EditOrderInput) (*models.Order, error) {
	now := s.clock.Now()
	var result *models.Order
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := s.lockOrder(repo, orderID)
		if err != nil {
			return err
		}
		if order.Status != constants.OrderStatusPending {
			return stateErrorf("cannot edit order %s from status %s", order.OrderNo, order.Status)
		}
		if !CanEdit(order, now) {
			return permissionErrorf("edit window closed for order %s", order.OrderNo)
		}

		orderUpdates := map[string]interface{}{"updated_at": now}
		applyStringField(orderUpdates, "address_line1", input.AddressLine1)
		applyStringField(orderUpdates, "address_line2", input.AddressLine2)
		applyStringField(orderUpdates, "city", input.City)
		applyStringField(orderUpdates, "state", input.State)
		applyStringField(orderUpdates, "postal_code", input.PostalCode)
		applyStringField(orderUpdates, "delivery_country", input.DeliveryCountry)
		if err := repo.Updates(order.ID, orderUpdates); err != nil {
			return storeErrorf("update order", err)
		}

		item := order.FirstItem()
		if item != nil {
			itemUpdates := map[string]interface{}{"updated_at": now}
			applyStringField(itemUpdates, "size", input.Size)
			if input.Color != nil {
				itemUpdates["color"] = *input.Color
			}
			if input.LiningColor != nil {
				itemUpdates["lining_color"] = *input.LiningColor
			}
			if input.Measurements != nil {
				itemUpdates["measurements"] = input.Measurements
			}
			if len(itemUpdates) > 1 {
				if err := repo.UpdateItem(item.ID, itemUpdates); err != nil {
					return storeErrorf("update order item", err)
				}
			}
		}

		updated, err := repo.GetByID(order.ID)
		if err != nil {
			return storeErrorf("reload order", err)
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkDelivered records fulfilment of a pending order, setting the
// delivery timestamp exactly once and opening the post-delivery window.
func (s *OrderActionService) MarkDelivered(orderID uint) (*models.Order, error) {
	now := s.clock.Now()
	var result *models.Order
	var previous string
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := s.lockOrder(repo, orderID)
		if err != nil {
			return err
		}
		if order.Status != constants.OrderStatusPending {
			return stateErrorf("cannot deliver order %s from status %s", order.OrderNo, order.Status)
		}
		updates := map[string]interface{}{
			"delivered_at": now,
			"updated_at":   now,
		}
		if err := s.transition(repo, order, constants.OrderStatusDelivered, updates); err != nil {
			return err
		}
		previous = constants.OrderStatusPending
		order.DeliveredAt = &now
		order.UpdatedAt = now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatusChange(result, previous)
	return result, nil
}

// Permissions evaluates every lifecycle predicate for one order.
func (s *OrderActionService) Permissions(orderID uint) (*models.Order, OrderPermissions, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, OrderPermissions{}, storeErrorf("fetch order", err)
	}
	if order == nil {
		return nil, OrderPermissions{}, ErrOrderNotFound
	}
	return order, PermissionsFor(order, s.clock.Now()), nil
}

// lockOrder fetches an order under a row lock, mapping store and
// not-found failures onto the service taxonomy.
func (s *OrderActionService) lockOrder(repo *repository.GormOrderRepository, orderID uint) (*models.Order, error) {
	order, err := repo.GetByIDForUpdate(orderID)
	if err != nil {
		return nil, storeErrorf("fetch order", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// transition performs the status-guarded final write and mutates the
// in-memory order on success. A lost guard means another writer moved the
// order between our read and write.
func (s *OrderActionService) transition(repo *repository.GormOrderRepository, order *models.Order, toStatus string, updates map[string]interface{}) error {
	ok, err := repo.UpdateStatusFrom(order.ID, order.Status, toStatus, updates)
	if err != nil {
		return storeErrorf("update order status", err)
	}
	if !ok {
		return conflictErrorf("order %s was modified concurrently", order.OrderNo)
	}
	order.Status = toStatus
	return nil
}

// creditProfile adds the order value to the customer's store credit and
// resets the expiry to a fresh 12-month horizon. The expiry overwrite is
// absolute: earlier tranches inherit the new date.
func (s *OrderActionService) creditProfile(userID uint, amount models.Money, now time.Time) error {
	expiry := now.AddDate(0, constants.StoreCreditExpiryMonths, 0)
	return s.profileRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.profileRepo.WithTx(tx)
		profile, err := repo.GetByIDForUpdate(userID)
		if err != nil {
			return storeErrorf("fetch profile", err)
		}
		if profile == nil {
			return ErrProfileNotFound
		}
		balance := models.NewMoneyFromDecimal(profile.StoreCredit.Decimal.Add(amount.Decimal))
		affected, err := repo.Updates(profile.ID, map[string]interface{}{
			"store_credit":        balance,
			"store_credit_expiry": expiry,
			"updated_at":          now,
		})
		if err != nil {
			return storeErrorf("update profile", err)
		}
		if affected == 0 {
			return conflictErrorf("profile %d was modified concurrently", profile.ID)
		}
		return nil
	})
}

// notifyStatusChange enqueues the status-change notification. Enqueue
// failures are logged, not surfaced: the transition already committed.
func (s *OrderActionService) notifyStatusChange(order *models.Order, previous string) {
	if order == nil || s.queueClient == nil {
		return
	}
	payload := queue.OrderStatusNotifyPayload{
		OrderID:  order.ID,
		OrderNo:  order.OrderNo,
		Status:   order.Status,
		Previous: previous,
	}
	if err := s.queueClient.EnqueueOrderStatusNotify(payload); err != nil {
		logger.Warnw("enqueue order status notification failed",
			"order_id", order.ID, "status", order.Status, "error", err)
	}
}

func applyStringField(updates map[string]interface{}, column string, value *string) {
	if value == nil {
		return
	}
	updates[column] = *value
}
