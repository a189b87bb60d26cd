package queue

import (
	"encoding/json"

	"github.com/atelier-next/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskOrderStatusNotify notifies the customer of an order status change.
const TaskOrderStatusNotify = constants.TaskOrderStatusNotify

// OrderStatusNotifyPayload carries the status-change notification task.
type OrderStatusNotifyPayload struct {
	OrderID  uint   `json:"order_id"`
	OrderNo  string `json:"order_no"`
	Status   string `json:"status"`
	Previous string `json:"previous"`
}

// NewOrderStatusNotifyTask builds the status-change notification task.
func NewOrderStatusNotifyTask(payload OrderStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusNotify, body), nil
}
