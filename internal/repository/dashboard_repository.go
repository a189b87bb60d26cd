package repository

import (
	"time"

	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository aggregates analytics queries. It carries no
// business rules, only raw statistics.
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetStatusCounts(startAt, endAt time.Time) ([]DashboardStatusCountRow, error)
	GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error)
}

// DashboardOverviewRow is the raw overview aggregate.
type DashboardOverviewRow struct {
	OrdersTotal     int64
	PendingOrders   int64
	DeliveredOrders int64
	CancelledOrders int64
	RevokedOrders   int64
	ExchangeOrders  int64
	ReturnOrders    int64
	RefundOrders    int64
	GrossValue      float64
	CreditIssued    float64
	NewProfiles     int64
}

// DashboardStatusCountRow is one status bucket.
type DashboardStatusCountRow struct {
	Status string
	Count  int64
}

// DashboardOrderTrendRow is one day of order volume.
type DashboardOrderTrendRow struct {
	Day         string
	OrdersTotal int64
	Returns     int64
}

// GormDashboardRepository is the GORM implementation.
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a dashboard repository.
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview aggregates order counts and value over a window.
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	var row DashboardOverviewRow

	base := r.db.Model(&models.Order{}).Where("created_at >= ? AND created_at < ?", startAt, endAt)
	if err := base.Session(&gorm.Session{}).Count(&row.OrdersTotal).Error; err != nil {
		return row, err
	}

	counts, err := r.GetStatusCounts(startAt, endAt)
	if err != nil {
		return row, err
	}
	for _, c := range counts {
		switch c.Status {
		case constants.OrderStatusPending:
			row.PendingOrders = c.Count
		case constants.OrderStatusDelivered:
			row.DeliveredOrders = c.Count
		case constants.OrderStatusCancelled:
			row.CancelledOrders = c.Count
		case constants.OrderStatusRevoked:
			row.RevokedOrders = c.Count
		case constants.OrderStatusExchangeReturn:
			row.ExchangeOrders = c.Count
		case constants.OrderStatusReturnStoreCredit:
			row.ReturnOrders = c.Count
		case constants.OrderStatusRefundRequested:
			row.RefundOrders = c.Count
		}
	}

	if err := r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Select("COALESCE(SUM(CASE WHEN grand_total > 0 THEN grand_total ELSE net_total END), 0)").
		Scan(&row.GrossValue).Error; err != nil {
		return row, err
	}

	if err := r.db.Model(&models.Order{}).
		Where("status = ? AND created_at >= ? AND created_at < ?",
			constants.OrderStatusReturnStoreCredit, startAt, endAt).
		Select("COALESCE(SUM(CASE WHEN grand_total > 0 THEN grand_total ELSE net_total END), 0)").
		Scan(&row.CreditIssued).Error; err != nil {
		return row, err
	}

	if err := r.db.Model(&models.Profile{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&row.NewProfiles).Error; err != nil {
		return row, err
	}
	return row, nil
}

// GetStatusCounts returns order counts bucketed by status.
func (r *GormDashboardRepository) GetStatusCounts(startAt, endAt time.Time) ([]DashboardStatusCountRow, error) {
	var rows []DashboardStatusCountRow
	err := r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// GetOrderTrends returns per-day order and return volume.
func (r *GormDashboardRepository) GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error) {
	var rows []DashboardOrderTrendRow
	dayExpr := dayBucketExpr(r.db, "created_at")
	err := r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Select(
			dayExpr + " AS day, " +
				"COUNT(*) AS orders_total, " +
				"SUM(CASE WHEN status IN ('exchange_return', 'return_store_credit') THEN 1 ELSE 0 END) AS returns").
		Group(dayExpr).
		Order("day asc").
		Scan(&rows).Error
	return rows, err
}
