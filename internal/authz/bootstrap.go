package authz

import (
	"fmt"

	"github.com/atelier-next/internal/constants"
)

// RoleSeed is a built-in role definition.
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds is the seeded staff role matrix: sales associates
// operate the customer-facing order lifecycle, warehouse staff record
// fulfilment, admins get everything.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleSales,
			Policies: []Policy{
				{Object: "/profiles", Action: "*"},
				{Object: "/profiles/:id", Action: "GET"},
				{Object: "/orders", Action: "*"},
				{Object: "/orders/by-order-no/:order_no", Action: "GET"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/orders/:id", Action: "PUT"},
				{Object: "/orders/:id/permissions", Action: "GET"},
				{Object: "/orders/:id/cancel", Action: "POST"},
				{Object: "/orders/:id/exchange", Action: "POST"},
				{Object: "/orders/:id/return", Action: "POST"},
				{Object: "/orders/:id/refund", Action: "POST"},
			},
		},
		{
			Role: constants.RoleWarehouse,
			Policies: []Policy{
				{Object: "/orders", Action: "GET"},
				{Object: "/orders/by-order-no/:order_no", Action: "GET"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/orders/:id/permissions", Action: "GET"},
				{Object: "/orders/:id/deliver", Action: "POST"},
			},
		},
		{
			Role: constants.RoleAdmin,
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles seeds the built-in roles and their policies.
// Existing rules are left alone, so operator-added grants survive.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
