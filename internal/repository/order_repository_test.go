package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestUpdateStatusFromGuardsSourceStatus(t *testing.T) {
	db := setupRepoTest(t)
	repo := NewOrderRepository(db)

	order := &models.Order{OrderNo: "AT-1001", UserID: 1, Status: constants.OrderStatusPending}
	if err := repo.Create(order, []models.OrderItem{{ProductName: "Sheath Dress", Quantity: 1}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	applied, err := repo.UpdateStatusFrom(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled, nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !applied {
		t.Fatalf("pending to cancelled should apply")
	}

	// Source status no longer matches, so the write must be a no-op.
	applied, err = repo.UpdateStatusFrom(order.ID, constants.OrderStatusPending, constants.OrderStatusRevoked, nil)
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if applied {
		t.Fatalf("stale transition must not apply")
	}

	stored, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", stored.Status)
	}
}

func TestGetByIDReturnsNilOnMissing(t *testing.T) {
	db := setupRepoTest(t)
	repo := NewOrderRepository(db)

	order, err := repo.GetByID(12345)
	if err != nil {
		t.Fatalf("missing order should not error: %v", err)
	}
	if order != nil {
		t.Fatalf("missing order should be nil, got %+v", order)
	}
}

func TestListFiltersByStatusAndUser(t *testing.T) {
	db := setupRepoTest(t)
	repo := NewOrderRepository(db)

	seeds := []models.Order{
		{OrderNo: "AT-1", UserID: 1, Status: constants.OrderStatusPending},
		{OrderNo: "AT-2", UserID: 1, Status: constants.OrderStatusDelivered},
		{OrderNo: "AT-3", UserID: 2, Status: constants.OrderStatusPending},
	}
	for i := range seeds {
		if err := repo.Create(&seeds[i], nil); err != nil {
			t.Fatalf("seed order failed: %v", err)
		}
	}

	orders, total, err := repo.List(OrderListFilter{Page: 1, PageSize: 10, UserID: 1, Status: constants.OrderStatusPending})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(orders) != 1 || orders[0].OrderNo != "AT-1" {
		t.Fatalf("filtered list mismatch: total=%d orders=%+v", total, orders)
	}
}
