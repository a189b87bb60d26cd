package service

import (
	"errors"
	"fmt"
)

// Category sentinels. Callers match with errors.Is; handlers map each
// category onto an HTTP status and message key.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrPermission marks an action outside its allowed time window or role.
	ErrPermission = errors.New("permission error")
	// ErrState marks an action incompatible with the order's current status.
	ErrState = errors.New("state error")
	// ErrConflict marks a concurrent update that invalidated this one.
	ErrConflict = errors.New("conflict error")
	// ErrStoreUnavailable marks a backing-store failure.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrOrderNotFound   = fmt.Errorf("%w: order not found", ErrValidation)
	ErrProfileNotFound = fmt.Errorf("%w: profile not found", ErrValidation)
	ErrStaffNotFound   = fmt.Errorf("%w: staff not found", ErrValidation)
	ErrStaffDisabled   = fmt.Errorf("%w: staff disabled", ErrPermission)
	ErrBadCredentials  = fmt.Errorf("%w: invalid username or password", ErrPermission)

	ErrEmailDisabled      = errors.New("email sending disabled")
	ErrEmailNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email address", ErrValidation)
)

// PartialApplyError reports an action that committed its primary write but
// failed a follow-up write, leaving the system in a detectable half-applied
// state that needs manual reconciliation.
type PartialApplyError struct {
	Action  string // action that partially applied
	OrderID uint   // order whose primary write committed
	Stage   string // follow-up stage that failed
	Err     error  // underlying failure
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("partial apply: %s on order %d failed at %s: %v", e.Action, e.OrderID, e.Stage, e.Err)
}

func (e *PartialApplyError) Unwrap() error {
	return e.Err
}

// validationErrorf wraps ErrValidation with a formatted detail.
func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// permissionErrorf wraps ErrPermission with a formatted detail.
func permissionErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPermission, fmt.Sprintf(format, args...))
}

// stateErrorf wraps ErrState with a formatted detail.
func stateErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

// conflictErrorf wraps ErrConflict with a formatted detail.
func conflictErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// storeErrorf wraps ErrStoreUnavailable around a backing-store failure.
func storeErrorf(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
