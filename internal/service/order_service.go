package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService captures and queries orders on behalf of sales associates.
type OrderService struct {
	orderRepo   repository.OrderRepository
	profileRepo repository.ProfileRepository
	noPrefix    string
	clock       Clock
}

// NewOrderService creates the order capture service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	profileRepo repository.ProfileRepository,
	noPrefix string,
	clock Clock,
) *OrderService {
	if strings.TrimSpace(noPrefix) == "" {
		noPrefix = "AT"
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &OrderService{
		orderRepo:   orderRepo,
		profileRepo: profileRepo,
		noPrefix:    strings.TrimSpace(noPrefix),
		clock:       clock,
	}
}

// CreateOrderItemInput is one captured line item.
type CreateOrderItemInput struct {
	ProductName       string
	Size              string
	Color             models.ColorRef
	LiningColor       models.ColorRef
	Measurements      models.JSON
	Extras            models.ExtraList
	IsGiftCertificate bool
	Quantity          int
	UnitPrice         models.Money
}

// CreateOrderInput is a captured order.
type CreateOrderInput struct {
	UserID            uint
	CreatedByID       *uint
	OrderType         string
	GrandTotal        models.Money
	NetTotal          models.Money
	DiscountPercent   float64
	DiscountAmount    models.Money
	StoreCreditUsed   models.Money
	IsGiftCertificate bool
	DeliveryCountry   string
	AddressLine1      string
	AddressLine2      string
	City              string
	State             string
	PostalCode        string
	Items             []CreateOrderItemInput
}

// CreateOrder captures a new order for a customer. Store credit redeemed
// against the order is deducted from the profile inside the same
// transaction, so the balance can never go negative under concurrent
// captures.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, validationErrorf("customer required")
	}
	if len(input.Items) == 0 {
		return nil, validationErrorf("at least one item required")
	}
	orderType := strings.TrimSpace(input.OrderType)
	if orderType == "" {
		orderType = constants.OrderTypeStandard
	}
	if orderType != constants.OrderTypeStandard && orderType != constants.OrderTypeCustom {
		return nil, validationErrorf("unknown order type %q", input.OrderType)
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.ProductName) == "" {
			return nil, validationErrorf("item %d: product name required", i+1)
		}
		if item.Quantity < 1 {
			return nil, validationErrorf("item %d: quantity must be at least 1", i+1)
		}
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return nil, validationErrorf("discount percent out of range")
	}
	if input.DiscountAmount.Decimal.IsNegative() || input.StoreCreditUsed.Decimal.IsNegative() {
		return nil, validationErrorf("negative amounts not allowed")
	}

	now := s.clock.Now()
	order := &models.Order{
		OrderNo:           s.generateOrderNo(),
		UserID:            input.UserID,
		CreatedByID:       input.CreatedByID,
		Status:            constants.OrderStatusPending,
		OrderType:         orderType,
		GrandTotal:        input.GrandTotal,
		NetTotal:          input.NetTotal,
		DiscountPercent:   input.DiscountPercent,
		DiscountAmount:    input.DiscountAmount,
		StoreCreditUsed:   input.StoreCreditUsed,
		IsGiftCertificate: input.IsGiftCertificate,
		DeliveryCountry:   strings.TrimSpace(input.DeliveryCountry),
		AddressLine1:      strings.TrimSpace(input.AddressLine1),
		AddressLine2:      strings.TrimSpace(input.AddressLine2),
		City:              strings.TrimSpace(input.City),
		State:             strings.TrimSpace(input.State),
		PostalCode:        strings.TrimSpace(input.PostalCode),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		unit := item.UnitPrice.Decimal
		total := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, models.OrderItem{
			ProductName:       strings.TrimSpace(item.ProductName),
			Size:              strings.TrimSpace(item.Size),
			Color:             item.Color,
			LiningColor:       item.LiningColor,
			Measurements:      item.Measurements,
			Extras:            item.Extras,
			IsGiftCertificate: item.IsGiftCertificate,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			TotalPrice:        models.NewMoneyFromDecimal(total),
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		profileRepo := s.profileRepo.WithTx(tx)
		profile, err := profileRepo.GetByIDForUpdate(input.UserID)
		if err != nil {
			return storeErrorf("fetch profile", err)
		}
		if profile == nil {
			return ErrProfileNotFound
		}
		if input.StoreCreditUsed.Decimal.IsPositive() {
			if profile.StoreCreditExpiry != nil && profile.StoreCreditExpiry.Before(now) {
				return validationErrorf("store credit expired on %s", profile.StoreCreditExpiry.Format("2006-01-02"))
			}
			if profile.StoreCredit.Decimal.LessThan(input.StoreCreditUsed.Decimal) {
				return validationErrorf("insufficient store credit: have %s, need %s",
					profile.StoreCredit.StringFixed(2), input.StoreCreditUsed.StringFixed(2))
			}
			balance := models.NewMoneyFromDecimal(profile.StoreCredit.Decimal.Sub(input.StoreCreditUsed.Decimal))
			if _, err := profileRepo.Updates(profile.ID, map[string]interface{}{
				"store_credit": balance,
				"updated_at":   now,
			}); err != nil {
				return storeErrorf("deduct store credit", err)
			}
		}
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return storeErrorf("create order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder fetches one order with items.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, storeErrorf("fetch order", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNo fetches one order by order number.
func (s *OrderService) GetOrderByNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, storeErrorf("fetch order", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders queries orders with pagination.
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, storeErrorf("list orders", err)
	}
	return orders, total, nil
}

func (s *OrderService) generateOrderNo() string {
	stamp := s.clock.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", s.noPrefix, stamp, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
