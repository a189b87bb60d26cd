package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *stepClock, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Profile{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	clock := &stepClock{at: mustParseTime(t, "2026-03-10T09:00:00Z")}
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProfileRepository(db),
		"AT",
		clock,
	)
	return svc, clock, db
}

func TestCreateOrder(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	seedActionProfile(t, db, 1)

	staffID := uint(7)
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          1,
		CreatedByID:     &staffID,
		OrderType:       constants.OrderTypeCustom,
		GrandTotal:      money(t, "320.00"),
		DeliveryCountry: "India",
		AddressLine1:    "4 Linen Street",
		City:            "Bengaluru",
		Items: []CreateOrderItemInput{{
			ProductName: "Three-piece suit",
			Size:        "40R",
			Color:       models.NamedColor("Charcoal", "#36454F"),
			Quantity:    2,
			UnitPrice:   money(t, "160.00"),
		}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending order, got: %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNo, "AT") {
		t.Fatalf("unexpected order number: %s", order.OrderNo)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got: %d", len(order.Items))
	}
	if order.Items[0].TotalPrice.StringFixed(2) != "320.00" {
		t.Fatalf("expected line total 320.00, got: %s", order.Items[0].TotalPrice.StringFixed(2))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	seedActionProfile(t, db, 1)

	cases := []CreateOrderInput{
		{UserID: 0, Items: []CreateOrderItemInput{{ProductName: "Blazer", Quantity: 1}}},
		{UserID: 1},
		{UserID: 1, OrderType: "Bespoke", Items: []CreateOrderItemInput{{ProductName: "Blazer", Quantity: 1}}},
		{UserID: 1, Items: []CreateOrderItemInput{{ProductName: "", Quantity: 1}}},
		{UserID: 1, Items: []CreateOrderItemInput{{ProductName: "Blazer", Quantity: 0}}},
		{UserID: 1, DiscountPercent: 120, Items: []CreateOrderItemInput{{ProductName: "Blazer", Quantity: 1}}},
	}
	for i, input := range cases {
		if _, err := svc.CreateOrder(input); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected validation error, got: %v", i, err)
		}
	}

	input := CreateOrderInput{UserID: 99, Items: []CreateOrderItemInput{{ProductName: "Blazer", Quantity: 1}}}
	if _, err := svc.CreateOrder(input); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got: %v", err)
	}
}

func TestCreateOrderDeductsStoreCredit(t *testing.T) {
	svc, clock, db := setupOrderServiceTest(t)
	seedActionProfile(t, db, 1)
	expiry := clock.at.AddDate(0, 6, 0)
	if err := db.Model(&models.Profile{}).Where("id = ?", 1).Updates(map[string]interface{}{
		"store_credit":        money(t, "100.00"),
		"store_credit_expiry": expiry,
	}).Error; err != nil {
		t.Fatalf("seed store credit failed: %v", err)
	}

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:          1,
		StoreCreditUsed: money(t, "60.00"),
		GrandTotal:      money(t, "140.00"),
		Items:           []CreateOrderItemInput{{ProductName: "Overcoat", Quantity: 1, UnitPrice: money(t, "200.00")}},
	})
	if err != nil {
		t.Fatalf("create order with store credit failed: %v", err)
	}

	var profile models.Profile
	if err := db.First(&profile, 1).Error; err != nil {
		t.Fatalf("load profile failed: %v", err)
	}
	if profile.StoreCredit.StringFixed(2) != "40.00" {
		t.Fatalf("expected remaining credit 40.00, got: %s", profile.StoreCredit.StringFixed(2))
	}

	// Balance cannot go negative.
	_, err = svc.CreateOrder(CreateOrderInput{
		UserID:          1,
		StoreCreditUsed: money(t, "60.00"),
		Items:           []CreateOrderItemInput{{ProductName: "Overcoat", Quantity: 1}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for insufficient credit, got: %v", err)
	}

	// Expired credit is unusable however large the balance.
	clock.at = expiry.Add(24 * time.Hour)
	_, err = svc.CreateOrder(CreateOrderInput{
		UserID:          1,
		StoreCreditUsed: money(t, "10.00"),
		Items:           []CreateOrderItemInput{{ProductName: "Overcoat", Quantity: 1}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for expired credit, got: %v", err)
	}
}

func TestListOrders(t *testing.T) {
	svc, clock, db := setupOrderServiceTest(t)
	seedActionProfile(t, db, 1)
	seedActionProfile(t, db, 2)

	for i := 0; i < 3; i++ {
		order := &models.Order{OrderNo: fmt.Sprintf("AT20%d", i), UserID: 1, CreatedAt: clock.at}
		seedActionOrder(t, db, order)
	}
	other := &models.Order{OrderNo: "AT299", UserID: 2, Status: constants.OrderStatusCancelled, CreatedAt: clock.at}
	seedActionOrder(t, db, other)

	orders, total, err := svc.ListOrders(repository.OrderListFilter{UserID: 1, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got: %d", total)
	}
	if len(orders) != 2 {
		t.Fatalf("expected page of 2, got: %d", len(orders))
	}

	orders, total, err = svc.ListOrders(repository.OrderListFilter{Status: constants.OrderStatusCancelled, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 1 || orders[0].OrderNo != "AT299" {
		t.Fatalf("unexpected status filter result: total=%d", total)
	}
}
