package portal

import (
	"errors"
	"time"

	"github.com/atelier-next/internal/http/response"
	"github.com/atelier-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the staff login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	StaffID   uint      `json:"staff_id"`
	Username  string    `json:"username"`
	IsSuper   bool      `json:"is_super"`
}

// Login authenticates a staff member and issues a session token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	staff, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			respondError(c, response.CodeUnauthorized, "invalid username or password", nil)
			return
		}
		if errors.Is(err, service.ErrStaffDisabled) {
			respondError(c, response.CodeForbidden, "account disabled", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}

	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		StaffID:   staff.ID,
		Username:  staff.Username,
		IsSuper:   staff.IsSuper,
	})
}

// Me returns the authenticated staff member and its roles.
func (h *Handler) Me(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}

	staff, err := h.AuthService.GetStaff(staffID)
	if err != nil {
		if errors.Is(err, service.ErrStaffNotFound) {
			respondError(c, response.CodeNotFound, "staff not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "staff fetch failed", err)
		return
	}

	roles := []string{}
	if h.AuthzService != nil {
		if loaded, rolesErr := h.AuthzService.GetStaffRoles(staffID); rolesErr == nil {
			roles = loaded
		} else {
			requestLog(c).Warnw("staff_roles_fetch_failed", "staff_id", staffID, "error", rolesErr)
		}
	}

	response.Success(c, gin.H{
		"staff": staff,
		"roles": roles,
	})
}
