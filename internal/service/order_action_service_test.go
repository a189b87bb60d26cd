package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stepClock is a mutable test clock.
type stepClock struct {
	at time.Time
}

func (c *stepClock) Now() time.Time {
	return c.at
}

func setupOrderActionTest(t *testing.T) (*OrderActionService, *stepClock, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_action_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Profile{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	clock := &stepClock{at: mustParseTime(t, "2026-03-10T09:00:00Z")}
	svc := NewOrderActionService(
		repository.NewOrderRepository(db),
		repository.NewProfileRepository(db),
		nil,
		clock,
	)
	return svc, clock, db
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q failed: %v", value, err)
	}
	return at
}

func seedActionProfile(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	profile := models.Profile{
		ID:       id,
		FullName: fmt.Sprintf("Customer %d", id),
		Email:    fmt.Sprintf("customer_%d@example.com", id),
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
}

func seedActionOrder(t *testing.T, db *gorm.DB, order *models.Order) {
	t.Helper()
	if order.Status == "" {
		order.Status = constants.OrderStatusPending
	}
	if order.OrderType == "" {
		order.OrderType = constants.OrderTypeStandard
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := models.OrderItem{
		OrderID:     order.ID,
		ProductName: "Two-piece suit",
		Size:        "40R",
		Quantity:    1,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	order.Items = []models.OrderItem{item}
}

func money(t *testing.T, value string) models.Money {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q failed: %v", value, err)
	}
	return models.NewMoneyFromDecimal(d)
}

func TestApplyCancel(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	order := &models.Order{OrderNo: "AT1001", UserID: 1, CreatedAt: clock.at}
	seedActionOrder(t, db, order)

	clock.at = clock.at.Add(10 * time.Hour)
	updated, err := svc.ApplyCancel(order.ID, constants.CancelReasonChangeInRequirement)
	if err != nil {
		t.Fatalf("apply cancel failed: %v", err)
	}
	if updated.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected status cancelled, got: %s", updated.Status)
	}
	if updated.CancellationReason != constants.CancelReasonChangeInRequirement {
		t.Fatalf("unexpected cancellation reason: %q", updated.CancellationReason)
	}
	if updated.CancelledAt == nil || !updated.CancelledAt.Equal(clock.at) {
		t.Fatalf("expected cancelled_at=%v, got: %v", clock.at, updated.CancelledAt)
	}

	// Re-applying a terminal transition is a state error, not a repeat.
	if _, err := svc.ApplyCancel(order.ID, constants.CancelReasonChangeInRequirement); !errors.Is(err, ErrState) {
		t.Fatalf("expected state error on second cancel, got: %v", err)
	}
}

func TestApplyCancelValidation(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	order := &models.Order{OrderNo: "AT1002", UserID: 1, CreatedAt: clock.at}
	seedActionOrder(t, db, order)

	if _, err := svc.ApplyCancel(order.ID, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing reason, got: %v", err)
	}
	if _, err := svc.ApplyCancel(order.ID, "changed_my_mind"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown reason, got: %v", err)
	}
	if _, err := svc.ApplyCancel(9999, constants.CancelReasonNewOrderPlaced); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got: %v", err)
	}

	// Past the window the reason never gets looked at.
	clock.at = clock.at.Add(25 * time.Hour)
	if _, err := svc.ApplyCancel(order.ID, constants.CancelReasonNewOrderPlaced); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected permission error past 24h, got: %v", err)
	}
}

func TestApplyRevoke(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	order := &models.Order{OrderNo: "AT1003", UserID: 1, CreatedAt: clock.at}
	seedActionOrder(t, db, order)

	// Inside the customer window revocation is premature.
	clock.at = clock.at.Add(10 * time.Hour)
	if _, err := svc.ApplyRevoke(order.ID); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected permission error inside 24h, got: %v", err)
	}

	clock.at = order.CreatedAt.Add(30 * time.Hour)
	updated, err := svc.ApplyRevoke(order.ID)
	if err != nil {
		t.Fatalf("apply revoke failed: %v", err)
	}
	if updated.Status != constants.OrderStatusRevoked {
		t.Fatalf("expected status revoked, got: %s", updated.Status)
	}
	if updated.CancellationReason != constants.RevokeReason {
		t.Fatalf("expected fixed revoke reason, got: %q", updated.CancellationReason)
	}
	if updated.RevokedAt == nil {
		t.Fatalf("expected revoked_at set")
	}
	if _, err := svc.ApplyRevoke(order.ID); !errors.Is(err, ErrState) {
		t.Fatalf("expected state error on second revoke, got: %v", err)
	}
}

func TestMarkDelivered(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	order := &models.Order{OrderNo: "AT1004", UserID: 1, CreatedAt: clock.at}
	seedActionOrder(t, db, order)

	clock.at = clock.at.Add(48 * time.Hour)
	updated, err := svc.MarkDelivered(order.ID)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if updated.Status != constants.OrderStatusDelivered {
		t.Fatalf("expected status delivered, got: %s", updated.Status)
	}
	if updated.DeliveredAt == nil || !updated.DeliveredAt.Equal(clock.at) {
		t.Fatalf("expected delivered_at=%v, got: %v", clock.at, updated.DeliveredAt)
	}

	// delivered_at is written exactly once.
	if _, err := svc.MarkDelivered(order.ID); !errors.Is(err, ErrState) {
		t.Fatalf("expected state error on second delivery, got: %v", err)
	}
}

func TestApplyExchange(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	deliveredAt := clock.at.Add(48 * time.Hour)
	order := &models.Order{
		OrderNo:     "AT1005",
		UserID:      1,
		Status:      constants.OrderStatusDelivered,
		CreatedAt:   clock.at,
		DeliveredAt: &deliveredAt,
	}
	seedActionOrder(t, db, order)

	clock.at = deliveredAt.Add(10 * time.Hour)
	updated, err := svc.ApplyExchange(order.ID, constants.ExchangeTypeSize, "", "")
	if err != nil {
		t.Fatalf("apply exchange failed: %v", err)
	}
	if updated.Status != constants.OrderStatusExchangeReturn {
		t.Fatalf("expected status exchange_return, got: %s", updated.Status)
	}
	if updated.ExchangeReason != "Size Exchange" {
		t.Fatalf("unexpected exchange reason: %q", updated.ExchangeReason)
	}
	if updated.ExchangeRequestedAt == nil {
		t.Fatalf("expected exchange_requested_at set")
	}
}

func TestApplyExchangeNonReturnable(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	deliveredAt := clock.at.Add(48 * time.Hour)
	order := &models.Order{
		OrderNo:     "AT1006",
		UserID:      1,
		Status:      constants.OrderStatusDelivered,
		OrderType:   constants.OrderTypeCustom,
		CreatedAt:   clock.at,
		DeliveredAt: &deliveredAt,
	}
	seedActionOrder(t, db, order)

	clock.at = deliveredAt.Add(10 * time.Hour)
	if _, err := svc.ApplyExchange(order.ID, constants.ExchangeTypeSize, "", ""); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected permission error for non-returnable order, got: %v", err)
	}
	// Same disqualification blocks return, never refund.
	if _, err := svc.ApplyReturn(order.ID, constants.ReturnReasonFit, ""); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected permission error for non-returnable return, got: %v", err)
	}
	if _, err := svc.ApplyRefund(order.ID, constants.RefundReasonFaulty, ""); err != nil {
		t.Fatalf("expected refund to bypass non-returnability, got: %v", err)
	}
}

func TestApplyReturnCreditsProfile(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)

	// Pre-existing balance and an old expiry that must be overwritten.
	oldExpiry := mustParseTime(t, "2026-06-01T00:00:00Z")
	if err := db.Model(&models.Profile{}).Where("id = ?", 1).Updates(map[string]interface{}{
		"store_credit":        money(t, "40.00"),
		"store_credit_expiry": oldExpiry,
	}).Error; err != nil {
		t.Fatalf("seed profile credit failed: %v", err)
	}

	deliveredAt := clock.at.Add(48 * time.Hour)
	order := &models.Order{
		OrderNo:     "AT1007",
		UserID:      1,
		Status:      constants.OrderStatusDelivered,
		GrandTotal:  money(t, "250.00"),
		NetTotal:    money(t, "230.00"),
		CreatedAt:   clock.at,
		DeliveredAt: &deliveredAt,
	}
	seedActionOrder(t, db, order)

	clock.at = deliveredAt.Add(10 * time.Hour)
	updated, err := svc.ApplyReturn(order.ID, constants.ReturnReasonFit, "")
	if err != nil {
		t.Fatalf("apply return failed: %v", err)
	}
	if updated.Status != constants.OrderStatusReturnStoreCredit {
		t.Fatalf("expected status return_store_credit, got: %s", updated.Status)
	}
	if updated.ReturnReason != constants.ReturnReasonFit {
		t.Fatalf("unexpected return reason: %q", updated.ReturnReason)
	}

	var profile models.Profile
	if err := db.First(&profile, 1).Error; err != nil {
		t.Fatalf("load profile failed: %v", err)
	}
	// grand_total wins over net_total; balance accumulates.
	if profile.StoreCredit.StringFixed(2) != "290.00" {
		t.Fatalf("expected store credit 290.00, got: %s", profile.StoreCredit.StringFixed(2))
	}
	// Expiry is an absolute overwrite, a fresh 12-month horizon.
	wantExpiry := clock.at.AddDate(0, constants.StoreCreditExpiryMonths, 0)
	if profile.StoreCreditExpiry == nil || !profile.StoreCreditExpiry.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got: %v", wantExpiry, profile.StoreCreditExpiry)
	}

	// A second return is rejected before any money moves.
	if _, err := svc.ApplyReturn(order.ID, constants.ReturnReasonFit, ""); !errors.Is(err, ErrState) {
		t.Fatalf("expected state error on second return, got: %v", err)
	}
	if err := db.First(&profile, 1).Error; err != nil {
		t.Fatalf("reload profile failed: %v", err)
	}
	if profile.StoreCredit.StringFixed(2) != "290.00" {
		t.Fatalf("store credit applied twice: %s", profile.StoreCredit.StringFixed(2))
	}
}

func TestApplyReturnFallsBackToNetTotal(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	deliveredAt := clock.at.Add(24 * time.Hour)
	order := &models.Order{
		OrderNo:     "AT1008",
		UserID:      1,
		Status:      constants.OrderStatusDelivered,
		NetTotal:    money(t, "180.00"),
		CreatedAt:   clock.at,
		DeliveredAt: &deliveredAt,
	}
	seedActionOrder(t, db, order)

	clock.at = deliveredAt.Add(time.Hour)
	if _, err := svc.ApplyReturn(order.ID, constants.ReturnReasonStyle, ""); err != nil {
		t.Fatalf("apply return failed: %v", err)
	}
	var profile models.Profile
	if err := db.First(&profile, 1).Error; err != nil {
		t.Fatalf("load profile failed: %v", err)
	}
	if profile.StoreCredit.StringFixed(2) != "180.00" {
		t.Fatalf("expected store credit 180.00, got: %s", profile.StoreCredit.StringFixed(2))
	}
}

func TestApplyReturnPartialApply(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	// No profile seeded: the credit write has nowhere to land.
	deliveredAt := clock.at.Add(24 * time.Hour)
	order := &models.Order{
		OrderNo:     "AT1009",
		UserID:      42,
		Status:      constants.OrderStatusDelivered,
		GrandTotal:  money(t, "100.00"),
		CreatedAt:   clock.at,
		DeliveredAt: &deliveredAt,
	}
	seedActionOrder(t, db, order)

	clock.at = deliveredAt.Add(time.Hour)
	updated, err := svc.ApplyReturn(order.ID, constants.ReturnReasonFit, "")
	var partial *PartialApplyError
	if !errors.As(err, &partial) {
		t.Fatalf("expected partial apply error, got: %v", err)
	}
	if partial.OrderID != order.ID || partial.Action != "return" {
		t.Fatalf("unexpected partial apply detail: %+v", partial)
	}
	if updated == nil || updated.Status != constants.OrderStatusReturnStoreCredit {
		t.Fatalf("expected committed status alongside partial apply error, got: %+v", updated)
	}

	// The order write really committed; reconciliation sees the half-applied state.
	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusReturnStoreCredit {
		t.Fatalf("expected stored status return_store_credit, got: %s", stored.Status)
	}
}

func TestApplyRefundAfterReturn(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	deliveredAt := clock.at.Add(24 * time.Hour)
	order := &models.Order{
		OrderNo:     "AT1010",
		UserID:      1,
		Status:      constants.OrderStatusDelivered,
		GrandTotal:  money(t, "90.00"),
		CreatedAt:   clock.at,
		DeliveredAt: &deliveredAt,
	}
	seedActionOrder(t, db, order)

	clock.at = deliveredAt.Add(5 * time.Hour)
	if _, err := svc.ApplyReturn(order.ID, constants.ReturnReasonFit, ""); err != nil {
		t.Fatalf("apply return failed: %v", err)
	}

	// Refund is still available after a return request while the
	// delivery window holds.
	updated, err := svc.ApplyRefund(order.ID, constants.RefundReasonIncorrectProduct, "")
	if err != nil {
		t.Fatalf("apply refund after return failed: %v", err)
	}
	if updated.Status != constants.OrderStatusRefundRequested {
		t.Fatalf("expected status refund_requested, got: %s", updated.Status)
	}
	if updated.RefundStatus != constants.RefundStatusPending {
		t.Fatalf("expected refund_status pending, got: %q", updated.RefundStatus)
	}

	// But only once.
	if _, err := svc.ApplyRefund(order.ID, constants.RefundReasonIncorrectProduct, ""); !errors.Is(err, ErrState) {
		t.Fatalf("expected state error on second refund, got: %v", err)
	}
}

func TestApplyRefundWindow(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	deliveredAt := clock.at.Add(24 * time.Hour)
	order := &models.Order{
		OrderNo:     "AT1011",
		UserID:      1,
		Status:      constants.OrderStatusDelivered,
		CreatedAt:   clock.at,
		DeliveredAt: &deliveredAt,
	}
	seedActionOrder(t, db, order)

	clock.at = deliveredAt.Add(73 * time.Hour)
	if _, err := svc.ApplyRefund(order.ID, constants.RefundReasonDeliveryDelayed, ""); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected permission error past 72h, got: %v", err)
	}

	// Undelivered orders have no refund window at all.
	pending := &models.Order{OrderNo: "AT1012", UserID: 1, CreatedAt: clock.at}
	seedActionOrder(t, db, pending)
	if _, err := svc.ApplyRefund(pending.ID, constants.RefundReasonDeliveryDelayed, ""); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected permission error for undelivered order, got: %v", err)
	}
}

func TestApplyEdit(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	order := &models.Order{
		OrderNo:      "AT1013",
		UserID:       1,
		CreatedAt:    clock.at,
		AddressLine1: "12 Old Lane",
		City:         "Mumbai",
	}
	seedActionOrder(t, db, order)

	clock.at = clock.at.Add(12 * time.Hour)
	newSize := "42L"
	newLine1 := "7 New Crescent"
	color := models.NamedColor("Midnight Navy", "#191970")
	updated, err := svc.ApplyEdit(order.ID, EditOrderInput{
		Size:         &newSize,
		Color:        &color,
		AddressLine1: &newLine1,
	})
	if err != nil {
		t.Fatalf("apply edit failed: %v", err)
	}
	if updated.AddressLine1 != newLine1 {
		t.Fatalf("expected address updated, got: %q", updated.AddressLine1)
	}
	if updated.City != "Mumbai" {
		t.Fatalf("expected untouched city preserved, got: %q", updated.City)
	}
	item := updated.FirstItem()
	if item == nil || item.Size != newSize {
		t.Fatalf("expected item size updated, got: %+v", item)
	}
	if item.Color.Name != "Midnight Navy" {
		t.Fatalf("expected item color updated, got: %+v", item.Color)
	}
}

func TestApplyEditWindowRecheckedAtCommit(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	order := &models.Order{OrderNo: "AT1014", UserID: 1, CreatedAt: clock.at}
	seedActionOrder(t, db, order)

	// However long the form sat open, the commit re-checks the window.
	clock.at = clock.at.Add(37 * time.Hour)
	newSize := "38S"
	if _, err := svc.ApplyEdit(order.ID, EditOrderInput{Size: &newSize}); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected permission error past 36h, got: %v", err)
	}

	var item models.OrderItem
	if err := db.Where("order_id = ?", order.ID).First(&item).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}
	if item.Size == newSize {
		t.Fatalf("stale edit must not land")
	}
}

func TestPermissionsEndpointState(t *testing.T) {
	svc, clock, db := setupOrderActionTest(t)
	seedActionProfile(t, db, 1)
	order := &models.Order{OrderNo: "AT1015", UserID: 1, CreatedAt: clock.at}
	seedActionOrder(t, db, order)

	clock.at = clock.at.Add(2 * time.Hour)
	_, perms, err := svc.Permissions(order.ID)
	if err != nil {
		t.Fatalf("permissions failed: %v", err)
	}
	if !perms.CanEdit || !perms.CanCancel || perms.CanRevoke {
		t.Fatalf("unexpected permissions for fresh order: %+v", perms)
	}
	if _, _, err := svc.Permissions(9999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got: %v", err)
	}
}
