package portal

import (
	"strconv"
	"strings"

	"github.com/atelier-next/internal/http/response"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/repository"
	"github.com/atelier-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest is one captured garment line.
type OrderItemRequest struct {
	ProductName       string           `json:"product_name" binding:"required"`
	Size              string           `json:"size"`
	Color             models.ColorRef  `json:"color"`
	LiningColor       models.ColorRef  `json:"lining_color"`
	Measurements      models.JSON      `json:"measurements"`
	Extras            models.ExtraList `json:"extras"`
	IsGiftCertificate bool             `json:"is_gift_certificate"`
	Quantity          int              `json:"quantity" binding:"required"`
	UnitPrice         models.Money     `json:"unit_price"`
}

// CreateOrderRequest captures a new order for a customer.
type CreateOrderRequest struct {
	UserID            uint               `json:"user_id" binding:"required"`
	OrderType         string             `json:"order_type" binding:"required"`
	GrandTotal        models.Money       `json:"grand_total"`
	NetTotal          models.Money       `json:"net_total"`
	DiscountPercent   float64            `json:"discount_percent"`
	DiscountAmount    models.Money       `json:"discount_amount"`
	StoreCreditUsed   models.Money       `json:"store_credit_used"`
	IsGiftCertificate bool               `json:"is_gift_certificate"`
	DeliveryCountry   string             `json:"delivery_country"`
	AddressLine1      string             `json:"address_line1"`
	AddressLine2      string             `json:"address_line2"`
	City              string             `json:"city"`
	State             string             `json:"state"`
	PostalCode        string             `json:"postal_code"`
	Items             []OrderItemRequest `json:"items" binding:"required"`
}

// CreateOrder captures a new order.
func (h *Handler) CreateOrder(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	items := make([]service.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItemInput{
			ProductName:       item.ProductName,
			Size:              item.Size,
			Color:             item.Color,
			LiningColor:       item.LiningColor,
			Measurements:      item.Measurements,
			Extras:            item.Extras,
			IsGiftCertificate: item.IsGiftCertificate,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
		})
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:            req.UserID,
		CreatedByID:       &staffID,
		OrderType:         req.OrderType,
		GrandTotal:        req.GrandTotal,
		NetTotal:          req.NetTotal,
		DiscountPercent:   req.DiscountPercent,
		DiscountAmount:    req.DiscountAmount,
		StoreCreditUsed:   req.StoreCreditUsed,
		IsGiftCertificate: req.IsGiftCertificate,
		DeliveryCountry:   req.DeliveryCountry,
		AddressLine1:      req.AddressLine1,
		AddressLine2:      req.AddressLine2,
		City:              req.City,
		State:             req.State,
		PostalCode:        req.PostalCode,
		Items:             items,
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders queries orders.
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "user id invalid", nil)
			return
		}
		userID = uint(parsed)
	}

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    userID,
		Status:    strings.TrimSpace(c.Query("status")),
		OrderNo:   strings.TrimSpace(c.Query("order_no")),
		OrderType: strings.TrimSpace(c.Query("order_type")),
		Search:    strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder fetches one order with its items.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, order)
}

// GetOrderByOrderNo fetches one order by its public number.
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "order no invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrderByNo(orderNo)
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, order)
}

// GetOrderPermissions reports which lifecycle actions the order
// currently allows, with the non-returnable reasons when blocked.
func (h *Handler) GetOrderPermissions(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, perms, err := h.OrderActionService.Permissions(orderID)
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, gin.H{
		"order_id":    order.ID,
		"order_no":    order.OrderNo,
		"status":      order.Status,
		"permissions": perms,
	})
}

// EditOrderRequest updates order details inside the edit window.
// Pointer fields distinguish "leave alone" from "set to empty".
type EditOrderRequest struct {
	Size            *string          `json:"size"`
	Color           *models.ColorRef `json:"color"`
	LiningColor     *models.ColorRef `json:"lining_color"`
	Measurements    models.JSON      `json:"measurements"`
	AddressLine1    *string          `json:"address_line1"`
	AddressLine2    *string          `json:"address_line2"`
	City            *string          `json:"city"`
	State           *string          `json:"state"`
	PostalCode      *string          `json:"postal_code"`
	DeliveryCountry *string          `json:"delivery_country"`
}

// EditOrder updates garment and address details on a pending order.
func (h *Handler) EditOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req EditOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderActionService.ApplyEdit(orderID, service.EditOrderInput{
		Size:            req.Size,
		Color:           req.Color,
		LiningColor:     req.LiningColor,
		Measurements:    req.Measurements,
		AddressLine1:    req.AddressLine1,
		AddressLine2:    req.AddressLine2,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		DeliveryCountry: req.DeliveryCountry,
	})
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, order)
}

// CancelOrderRequest carries the customer cancellation reason token.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder cancels a pending order inside the cancellation window.
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderActionService.ApplyCancel(orderID, req.Reason)
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, order)
}

// ExchangeOrderRequest requests a post-delivery exchange.
type ExchangeOrderRequest struct {
	ExchangeType string `json:"exchange_type"`
	Reason       string `json:"reason"`
	OtherText    string `json:"other_text"`
}

// ExchangeOrder moves a delivered order into exchange processing.
func (h *Handler) ExchangeOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req ExchangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderActionService.ApplyExchange(orderID, req.ExchangeType, req.Reason, req.OtherText)
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, order)
}

// ReturnOrderRequest requests a return for store credit.
type ReturnOrderRequest struct {
	Reason    string `json:"reason"`
	OtherText string `json:"other_text"`
}

// ReturnOrder returns a delivered order for store credit.
func (h *Handler) ReturnOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req ReturnOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderActionService.ApplyReturn(orderID, req.Reason, req.OtherText)
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, order)
}

// RefundOrderRequest requests a monetary refund.
type RefundOrderRequest struct {
	Reason    string `json:"reason"`
	OtherText string `json:"other_text"`
}

// RefundOrder opens a refund request on a delivered order.
func (h *Handler) RefundOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderActionService.ApplyRefund(orderID, req.Reason, req.OtherText)
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, order)
}

// DeliverOrder marks a pending order as delivered. Warehouse side.
func (h *Handler) DeliverOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.OrderActionService.MarkDelivered(orderID)
	if err != nil {
		respondOrderActionError(c, err)
		return
	}

	response.Success(c, order)
}

func parseOrderID(c *gin.Context) (uint, bool) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return 0, false
	}
	return uint(orderID), true
}
