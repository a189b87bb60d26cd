package admin

import (
	"errors"
	"strconv"

	"github.com/atelier-next/internal/authz"
	"github.com/atelier-next/internal/http/response"
	"github.com/atelier-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateStaffRequest registers a staff account.
type CreateStaffRequest struct {
	Username    string   `json:"username" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

// CreateStaff registers a staff account and assigns its roles.
func (h *Handler) CreateStaff(c *gin.Context) {
	actorID, ok := getStaffID(c)
	if !ok {
		return
	}

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	staff, err := h.AuthService.CreateStaff(service.CreateStaffInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "staff create failed", err)
		return
	}

	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetStaffRoles(staff.ID, req.Roles); err != nil {
			requestLog(c).Errorw("staff_role_assign_failed", "staff_id", staff.ID, "error", err)
			respondError(c, response.CodeInternal, "staff created but role assignment failed", err)
			return
		}
	}

	requestLog(c).Infow("staff_created", "staff_id", staff.ID, "created_by", actorID, "roles", req.Roles)
	response.Success(c, staff)
}

// ListStaff returns all staff accounts.
func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.AuthService.ListStaff()
	if err != nil {
		respondError(c, response.CodeInternal, "staff fetch failed", err)
		return
	}
	response.Success(c, staff)
}

// GetStaffRoles returns the roles assigned to a staff member.
func (h *Handler) GetStaffRoles(c *gin.Context) {
	staffID, ok := parseStaffID(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetStaffRoles(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	response.Success(c, gin.H{"staff_id": staffID, "roles": roles})
}

// SetStaffRolesRequest replaces a staff member's role set.
type SetStaffRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetStaffRoles replaces the role assignment of a staff member.
func (h *Handler) SetStaffRoles(c *gin.Context) {
	staffID, ok := parseStaffID(c)
	if !ok {
		return
	}

	var req SetStaffRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthzService.SetStaffRoles(staffID, req.Roles); err != nil {
		respondError(c, response.CodeInternal, "role assignment failed", err)
		return
	}
	response.Success(c, gin.H{"staff_id": staffID, "roles": req.Roles})
}

// ListRoles returns every known role.
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	response.Success(c, roles)
}

// GetRolePolicies returns the policies attached to a role.
func (h *Handler) GetRolePolicies(c *gin.Context) {
	role := c.Param("role")
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "policy fetch failed", err)
		return
	}
	response.Success(c, policies)
}

// RolePolicyRequest grants or revokes one role policy.
type RolePolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GrantRolePolicy attaches a policy to a role.
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy grant failed", err)
		return
	}
	response.Success(c, authz.Policy{Object: req.Object, Action: req.Action})
}

// RevokeRolePolicy detaches a policy from a role.
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy revoke failed", err)
		return
	}
	response.Success(c, nil)
}

func parseStaffID(c *gin.Context) (uint, bool) {
	staffID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || staffID == 0 {
		respondError(c, response.CodeBadRequest, "staff id invalid", nil)
		return 0, false
	}
	return uint(staffID), true
}
