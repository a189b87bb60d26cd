package admin

import (
	"errors"
	"strconv"

	"github.com/atelier-next/internal/http/response"
	"github.com/atelier-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RevokeOrder is the brand-initiated pre-delivery revocation. It only
// becomes available once the customer cancellation window has lapsed.
func (h *Handler) RevokeOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, actionErr := h.OrderActionService.ApplyRevoke(uint(orderID))
	if actionErr != nil {
		switch {
		case errors.Is(actionErr, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(actionErr, service.ErrPermission):
			respondError(c, response.CodeForbidden, actionErr.Error(), nil)
		case errors.Is(actionErr, service.ErrState), errors.Is(actionErr, service.ErrConflict):
			respondError(c, response.CodeConflict, actionErr.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "order revoke failed", actionErr)
		}
		return
	}

	response.Success(c, order)
}
