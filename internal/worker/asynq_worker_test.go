package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/atelier-next/internal/config"
	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/provider"
	"github.com/atelier-next/internal/queue"
	"github.com/atelier-next/internal/repository"
	"github.com/atelier-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Profile{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	container := &provider.Container{
		OrderRepo:    repository.NewOrderRepository(db),
		ProfileRepo:  repository.NewProfileRepository(db),
		EmailService: service.NewEmailService(&config.EmailConfig{Enabled: false}),
	}
	return NewConsumer(container), db
}

func notifyTask(t *testing.T, payload queue.OrderStatusNotifyPayload) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(queue.TaskOrderStatusNotify, body)
}

func TestHandleOrderStatusNotifySkipsMissingOrder(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task := notifyTask(t, queue.OrderStatusNotifyPayload{OrderID: 999, Status: constants.OrderStatusDelivered})
	// A vanished order is not a retryable condition.
	if err := consumer.handleOrderStatusNotify(context.Background(), task); err != nil {
		t.Fatalf("expected nil for missing order, got: %v", err)
	}
}

func TestHandleOrderStatusNotifyEmailDisabled(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	profile := models.Profile{ID: 1, FullName: "Asha Rao", Email: "asha@example.com"}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	order := models.Order{OrderNo: "AT3001", UserID: 1, Status: constants.OrderStatusDelivered}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	task := notifyTask(t, queue.OrderStatusNotifyPayload{OrderID: order.ID, Status: constants.OrderStatusDelivered})
	// With email disabled the task completes without retry.
	if err := consumer.handleOrderStatusNotify(context.Background(), task); err != nil {
		t.Fatalf("expected nil with email disabled, got: %v", err)
	}
}

func TestHandleOrderStatusNotifyBadPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task := asynq.NewTask(queue.TaskOrderStatusNotify, []byte("{not json"))
	if err := consumer.handleOrderStatusNotify(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
