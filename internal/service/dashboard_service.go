package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atelier-next/internal/cache"
	"github.com/atelier-next/internal/logger"
	"github.com/atelier-next/internal/repository"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
)

// DashboardService aggregates order volume, value and return metrics for
// the admin overview. Results are cached briefly in redis; the cache is a
// read-through, never authoritative.
type DashboardService struct {
	repo  repository.DashboardRepository
	clock Clock
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(repo repository.DashboardRepository, clock Clock) *DashboardService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &DashboardService{repo: repo, clock: clock}
}

// DashboardQueryInput selects the reporting window.
type DashboardQueryInput struct {
	Range        string // today / 7d / 30d / custom
	From         *time.Time
	To           *time.Time
	ForceRefresh bool
}

// DashboardOverviewResponse is the admin overview payload.
type DashboardOverviewResponse struct {
	Range        string            `json:"range"`
	From         string            `json:"from"`
	To           string            `json:"to"`
	OrdersTotal  int64             `json:"orders_total"`
	StatusCounts map[string]int64  `json:"status_counts"`
	GrossValue   string            `json:"gross_value"`
	CreditIssued string            `json:"credit_issued"`
	ReturnRate   string            `json:"return_rate"`
	NewProfiles  int64             `json:"new_profiles"`
	Trend        []DashboardDayRow `json:"trend"`
}

// DashboardDayRow is one day of order volume.
type DashboardDayRow struct {
	Day         string `json:"day"`
	OrdersTotal int64  `json:"orders_total"`
	Returns     int64  `json:"returns"`
}

// Overview builds the admin overview for a reporting window.
func (s *DashboardService) Overview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	startAt, endAt, rangeName, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:overview:%s:%d:%d", rangeName, startAt.Unix(), endAt.Unix())
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		hit, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warnw("dashboard cache read failed", "key", cacheKey, "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(startAt, endAt)
	if err != nil {
		return nil, storeErrorf("dashboard overview", err)
	}
	trendRows, err := s.repo.GetOrderTrends(startAt, endAt)
	if err != nil {
		return nil, storeErrorf("dashboard trends", err)
	}

	trend := make([]DashboardDayRow, 0, len(trendRows))
	for _, row := range trendRows {
		trend = append(trend, DashboardDayRow{
			Day:         row.Day,
			OrdersTotal: row.OrdersTotal,
			Returns:     row.Returns,
		})
	}

	resp := &DashboardOverviewResponse{
		Range:       rangeName,
		From:        startAt.Format(time.RFC3339),
		To:          endAt.Format(time.RFC3339),
		OrdersTotal: overview.OrdersTotal,
		StatusCounts: map[string]int64{
			"pending":             overview.PendingOrders,
			"delivered":           overview.DeliveredOrders,
			"cancelled":           overview.CancelledOrders,
			"revoked":             overview.RevokedOrders,
			"exchange_return":     overview.ExchangeOrders,
			"return_store_credit": overview.ReturnOrders,
			"refund_requested":    overview.RefundOrders,
		},
		GrossValue:   formatMetric(overview.GrossValue),
		CreditIssued: formatMetric(overview.CreditIssued),
		ReturnRate:   formatReturnRate(overview),
		NewProfiles:  overview.NewProfiles,
		Trend:        trend,
	}

	if err := cache.SetJSON(ctx, cacheKey, resp, dashboardCacheTTL); err != nil {
		logger.Warnw("dashboard cache write failed", "key", cacheKey, "error", err)
	}
	return resp, nil
}

func (s *DashboardService) resolveWindow(input DashboardQueryInput) (time.Time, time.Time, string, error) {
	now := s.clock.Now()
	rangeName := strings.ToLower(strings.TrimSpace(input.Range))
	switch rangeName {
	case "", "7d":
		return now.AddDate(0, 0, -7), now, "7d", nil
	case "today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start, now, "today", nil
	case "30d":
		return now.AddDate(0, 0, -30), now, "30d", nil
	case "custom":
		if input.From == nil || input.To == nil {
			return time.Time{}, time.Time{}, "", validationErrorf("custom range requires from and to")
		}
		if input.To.Before(*input.From) {
			return time.Time{}, time.Time{}, "", validationErrorf("range end before start")
		}
		if input.To.Sub(*input.From) > dashboardCustomMaxDays*24*time.Hour {
			return time.Time{}, time.Time{}, "", validationErrorf("custom range limited to %d days", dashboardCustomMaxDays)
		}
		return *input.From, *input.To, "custom", nil
	default:
		return time.Time{}, time.Time{}, "", validationErrorf("unknown range %q", input.Range)
	}
}

func formatMetric(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func formatReturnRate(row repository.DashboardOverviewRow) string {
	if row.OrdersTotal == 0 {
		return "0.00"
	}
	returns := row.ExchangeOrders + row.ReturnOrders
	rate := float64(returns) / float64(row.OrdersTotal) * 100
	return strconv.FormatFloat(rate, 'f', 2, 64)
}
