package portal

import (
	"strconv"
	"strings"

	"github.com/atelier-next/internal/http/response"
	"github.com/atelier-next/internal/repository"
	"github.com/atelier-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateProfileRequest registers a customer.
type CreateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
}

// CreateProfile registers a customer profile.
func (h *Handler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	profile, err := h.ProfileService.CreateProfile(service.CreateProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		respondWithMappedError(c, err, lifecycleClassErrorRules, response.CodeInternal, "profile create failed")
		return
	}

	response.Success(c, profile)
}

// ListProfiles queries customer profiles.
func (h *Handler) ListProfiles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	profiles, total, err := h.ProfileService.ListProfiles(repository.ProfileListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "profile fetch failed", err)
		return
	}

	response.SuccessWithPage(c, profiles, response.BuildPagination(page, pageSize, total))
}

// GetProfile fetches one customer profile.
func (h *Handler) GetProfile(c *gin.Context) {
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || profileID == 0 {
		respondError(c, response.CodeBadRequest, "profile id invalid", nil)
		return
	}

	profile, err := h.ProfileService.GetProfile(uint(profileID))
	if err != nil {
		respondWithMappedError(c, err, concatMappedHandlerErrors(orderLookupErrorRules, lifecycleClassErrorRules), response.CodeInternal, "profile fetch failed")
		return
	}

	response.Success(c, profile)
}
