package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/atelier-next/internal/logger"
	"github.com/atelier-next/internal/provider"
	"github.com/atelier-next/internal/queue"
	"github.com/atelier-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register wires task handlers onto the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusNotify, c.handleOrderStatusNotify)
}

func (c *Consumer) handleOrderStatusNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_notify_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}

	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_notify_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_notify_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	profile, err := c.ProfileRepo.GetByID(order.UserID)
	if err != nil {
		logger.Warnw("worker_order_status_notify_fetch_profile_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
		return err
	}
	if profile == nil || strings.TrimSpace(profile.Email) == "" {
		logger.Debugw("worker_order_status_notify_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_status_notify_skip_email_service_nil", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}

	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	input := service.OrderStatusEmailInput{
		OrderNo:      order.OrderNo,
		Status:       status,
		Previous:     payload.Previous,
		CustomerName: profile.FullName,
	}
	err = c.EmailService.SendOrderStatusEmail(profile.Email, input)
	if errors.Is(err, service.ErrEmailDisabled) || errors.Is(err, service.ErrEmailNotConfigured) {
		// Notification-by-email is optional; log instead of retrying.
		logger.Infow("worker_order_status_notify_email_skipped",
			"order_id", order.ID, "order_no", order.OrderNo, "status", status, "reason", err.Error())
		return nil
	}
	if err != nil {
		logger.Warnw("worker_order_status_notify_send_failed",
			"order_id", order.ID, "order_no", order.OrderNo, "status", status, "error", err)
		return err
	}
	logger.Infow("worker_order_status_notify_sent",
		"order_id", order.ID, "order_no", order.OrderNo, "status", status)
	return nil
}
