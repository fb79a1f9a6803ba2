package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an easypass error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrGroupProtected    ErrorCode = "GROUP_PROTECTED"     // 403
	ErrForbidden         ErrorCode = "FORBIDDEN"           // 403
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrNameAlreadyExists ErrorCode = "NAME_ALREADY_EXISTS" // 409
	ErrGroupInUse        ErrorCode = "GROUP_IN_USE"        // 409
	ErrInternal          ErrorCode = "INTERNAL"            // 500

	// Auto-type subsystem. None of these ever reach a user as a dialog;
	// they are logged and the trigger silently does nothing.
	ErrHookInstallFailed ErrorCode = "HOOK_INSTALL_FAILED" // 503
	ErrStoreAccessFailed ErrorCode = "STORE_ACCESS_FAILED" // 503
	ErrInjectionFailed   ErrorCode = "INJECTION_FAILED"    // 500
	ErrHookCallbackFault ErrorCode = "HOOK_CALLBACK_FAULT" // 500
)

// EasyPassError represents a structured error with code, status, and details.
type EasyPassError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *EasyPassError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *EasyPassError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *EasyPassError {
	return &EasyPassError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a credential or group cannot be found.
func NewNotFound(identifier string) *EasyPassError {
	return &EasyPassError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewNameAlreadyExists creates a 409 error for (group, name) collisions.
func NewNameAlreadyExists(group, name string) *EasyPassError {
	return &EasyPassError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("credential %q already exists in group %q", name, group),
		Details: map[string]any{"group": group, "name": name},
	}
}

// NewGroupAlreadyExists creates a 409 error for duplicate group names.
func NewGroupAlreadyExists(group string) *EasyPassError {
	return &EasyPassError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("group %q already exists", group),
		Details: map[string]any{"group": group},
	}
}

// NewGroupInUse creates a 409 error when deleting a group that still holds credentials.
func NewGroupInUse(group string, count int) *EasyPassError {
	return &EasyPassError{
		Code:    ErrGroupInUse,
		Status:  409,
		Message: fmt.Sprintf("group %q still holds %d credential(s)", group, count),
		Details: map[string]any{"group": group, "count": count},
	}
}

// NewGroupProtected creates a 403 error for attempts to delete the unassigned group.
func NewGroupProtected(group string) *EasyPassError {
	return &EasyPassError{
		Code:    ErrGroupProtected,
		Status:  403,
		Message: fmt.Sprintf("group %q cannot be deleted", group),
		Details: map[string]any{"group": group},
	}
}

// NewForbidden creates a 403 error for requests refused before routing.
func NewForbidden(msg string) *EasyPassError {
	return &EasyPassError{
		Code:    ErrForbidden,
		Status:  403,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The original error is kept in Details for logging.
func NewInternal(err error) *EasyPassError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &EasyPassError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// NewHookInstallFailed reports that the system-wide input hook could not be installed.
func NewHookInstallFailed(err error) *EasyPassError {
	return &EasyPassError{
		Code:    ErrHookInstallFailed,
		Status:  503,
		Message: fmt.Sprintf("input hook install failed: %v", err),
		cause:   err,
	}
}

// NewStoreAccessFailed reports that the credential store could not be read for a trigger.
func NewStoreAccessFailed(err error) *EasyPassError {
	return &EasyPassError{
		Code:    ErrStoreAccessFailed,
		Status:  503,
		Message: fmt.Sprintf("credential store access failed: %v", err),
		cause:   err,
	}
}

// NewInjectionFailed reports a keystroke injection failure after step completed steps.
func NewInjectionFailed(step int, err error) *EasyPassError {
	return &EasyPassError{
		Code:    ErrInjectionFailed,
		Status:  500,
		Message: fmt.Sprintf("keystroke injection failed at step %d: %v", step, err),
		Details: map[string]any{"step": step},
		cause:   err,
	}
}

// NewHookCallbackFault wraps a value recovered inside the input hook callback.
func NewHookCallbackFault(recovered any) *EasyPassError {
	return &EasyPassError{
		Code:    ErrHookCallbackFault,
		Status:  500,
		Message: fmt.Sprintf("input hook callback fault: %v", recovered),
	}
}

// Is checks if err (or anything it wraps) is an EasyPassError with the given code.
func Is(err error, code ErrorCode) bool {
	var eErr *EasyPassError
	if stderrors.As(err, &eErr) {
		return eErr.Code == code
	}
	return false
}
