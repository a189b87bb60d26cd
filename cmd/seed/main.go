package main

import (
	"fmt"

	"github.com/atelier-next/internal/config"
	"github.com/atelier-next/internal/constants"
	"github.com/atelier-next/internal/logger"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/provider"
	"github.com/atelier-next/internal/service"

	"github.com/shopspring/decimal"
)

// Seeds a demo data set: staff accounts for each role, a handful of
// customer profiles and a few orders in different lifecycle states.
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns: cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns: cfg.Database.Pool.MaxIdleConns,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}
	if err := models.InitDefaultStaff("admin", "admin123"); err != nil {
		stdLog.Fatalf("default staff init failed: %v", err)
	}

	container := provider.NewContainer(cfg)

	seedStaff(container, stdLog.Printf)
	profiles := seedProfiles(container, stdLog.Printf)
	seedOrders(container, profiles, stdLog.Printf)

	fmt.Println("seed complete")
}

type logf func(format string, args ...interface{})

func seedStaff(container *provider.Container, log logf) {
	accounts := []struct {
		username    string
		displayName string
		role        string
	}{
		{username: "asha.sales", displayName: "Asha (Sales)", role: constants.RoleSales},
		{username: "ravi.warehouse", displayName: "Ravi (Warehouse)", role: constants.RoleWarehouse},
	}

	for _, account := range accounts {
		staff, err := container.AuthService.CreateStaff(service.CreateStaffInput{
			Username:    account.username,
			Password:    "password123",
			DisplayName: account.displayName,
		})
		if err != nil {
			log("seed staff %s skipped: %v", account.username, err)
			continue
		}
		if err := container.AuthzService.SetStaffRoles(staff.ID, []string{account.role}); err != nil {
			log("seed staff %s role failed: %v", account.username, err)
		}
	}
}

func seedProfiles(container *provider.Container, log logf) []*models.Profile {
	inputs := []service.CreateProfileInput{
		{FullName: "Meera Krishnan", Email: "meera@example.com", Phone: "+91 98400 11111"},
		{FullName: "Daniel Obi", Email: "daniel@example.com", Phone: "+44 7700 900222"},
		{FullName: "Sofia Alvarez", Email: "sofia@example.com", Phone: "+34 600 333 444"},
	}

	var profiles []*models.Profile
	for _, input := range inputs {
		profile, err := container.ProfileService.CreateProfile(input)
		if err != nil {
			log("seed profile %s skipped: %v", input.Email, err)
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

func seedOrders(container *provider.Container, profiles []*models.Profile, log logf) {
	if len(profiles) == 0 {
		return
	}

	money := func(v string) models.Money {
		d, _ := decimal.NewFromString(v)
		return models.NewMoneyFromDecimal(d)
	}

	for i, profile := range profiles {
		country := constants.DomesticDeliveryCountry
		orderType := constants.OrderTypeStandard
		if i == 1 {
			country = "united kingdom"
			orderType = constants.OrderTypeCustom
		}

		order, err := container.OrderService.CreateOrder(service.CreateOrderInput{
			UserID:          profile.ID,
			OrderType:       orderType,
			GrandTotal:      money("249.00"),
			NetTotal:        money("249.00"),
			DeliveryCountry: country,
			AddressLine1:    "12 Tailor Row",
			City:            "Chennai",
			State:           "TN",
			PostalCode:      "600001",
			Items: []service.CreateOrderItemInput{
				{
					ProductName: "Two-Piece Linen Suit",
					Size:        "40R",
					Color:       models.NamedColor("Navy", "#1f2a44"),
					Quantity:    1,
					UnitPrice:   money("249.00"),
				},
			},
		})
		if err != nil {
			log("seed order for %s skipped: %v", profile.Email, err)
			continue
		}

		// Mark the first order delivered so the post-delivery flows
		// have something to act on.
		if i == 0 {
			if _, err := container.OrderActionService.MarkDelivered(order.ID); err != nil {
				log("seed deliver order %s failed: %v", order.OrderNo, err)
			}
		}
	}
}
