package portal

import (
	"errors"

	handlershared "github.com/atelier-next/internal/http/handlers/shared"
	"github.com/atelier-next/internal/http/response"
	"github.com/atelier-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a service error to an API error response.
// An empty msg surfaces the service error text as-is.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			msg := rule.msg
			if msg == "" {
				msg = err.Error()
			}
			respondError(c, rule.code, msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// Named errors resolve before their class sentinel so that "order not
// found" maps to 404 instead of the generic validation 400.
var orderLookupErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrProfileNotFound, code: response.CodeNotFound, msg: "profile not found"},
}

var lifecycleClassErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest},
	{target: service.ErrPermission, code: response.CodeForbidden},
	{target: service.ErrState, code: response.CodeConflict},
	{target: service.ErrConflict, code: response.CodeConflict},
	{target: service.ErrStoreUnavailable, code: response.CodeInternal, msg: "store unavailable"},
}

// respondOrderActionError maps lifecycle action failures. A partial
// apply (order committed, side effect failed) keeps the committed
// order in the response payload.
func respondOrderActionError(c *gin.Context, err error) {
	var partial *service.PartialApplyError
	if errors.As(err, &partial) {
		handlershared.RespondErrorWithData(c, response.CodeInternal, "order updated but side effect failed", gin.H{
			"action":   partial.Action,
			"order_id": partial.OrderID,
			"stage":    partial.Stage,
		}, err)
		return
	}
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderLookupErrorRules, lifecycleClassErrorRules), response.CodeInternal, "order action failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderLookupErrorRules, lifecycleClassErrorRules), response.CodeInternal, "order create failed")
}
