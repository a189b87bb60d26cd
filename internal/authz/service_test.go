package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/atelier-next/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceStaffWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("fitting_room", "/orders/:id/permissions", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetStaffRoles(1, []string{"fitting_room"}); err != nil {
		t.Fatalf("set staff roles failed: %v", err)
	}

	allow, err := svc.EnforceStaff(1, "/api/v1/orders/42/permissions", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceStaff(1, "/api/v1/orders/42/cancel", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetStaffRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	if err := svc.SetStaffRoles(2, []string{constants.RoleSales}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetStaffRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:sales" {
		t.Fatalf("roles want [role:sales], got=%v", roles)
	}

	if err := svc.SetStaffRoles(2, []string{constants.RoleWarehouse}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetStaffRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:warehouse" {
		t.Fatalf("roles want [role:warehouse], got=%v", roles)
	}

	// The old role's grants no longer apply, the new role's do.
	allow, err := svc.EnforceStaff(2, "/orders/7/cancel", "POST")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected sales grant removed")
	}
	allow, err = svc.EnforceStaff(2, "/orders/7/deliver", "POST")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected warehouse grant applied")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/orders/:id", want: "/orders/:id"},
		{in: "/orders/:id", want: "/orders/:id"},
		{in: "orders", want: "/orders"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:sales":     true,
		"role:warehouse": true,
		"role:admin":     true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	// Sales operate the lifecycle but never record fulfilment.
	if err := svc.SetStaffRoles(3, []string{constants.RoleSales}); err != nil {
		t.Fatalf("set staff roles failed: %v", err)
	}
	allow, err := svc.EnforceStaff(3, "/orders/5/return", "POST")
	if err != nil {
		t.Fatalf("enforce sales return failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected sales to request returns")
	}
	allow, err = svc.EnforceStaff(3, "/orders/5/deliver", "POST")
	if err != nil {
		t.Fatalf("enforce sales deliver failed: %v", err)
	}
	if allow {
		t.Fatalf("expected sales denied fulfilment")
	}

	// Admin wildcard covers the admin surface.
	if err := svc.SetStaffRoles(4, []string{constants.RoleAdmin}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	allow, err = svc.EnforceStaff(4, "/admin/orders/5/revoke", "POST")
	if err != nil {
		t.Fatalf("enforce admin revoke failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected admin allowed to revoke")
	}
}
