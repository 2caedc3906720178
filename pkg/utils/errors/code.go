package errors

import "net/http"

// Category codes (the BB segment of an error code).
const (
	CategorySuccess  = 0
	CategoryRequest  = 1
	CategoryAuth     = 2
	CategoryForbid   = 3
	CategoryNotFound = 4
	CategoryConflict = 5
	CategoryInternal = 7
	CategoryDatabase = 8
	CategoryCache    = 9
)

// ServiceGatekeeper is the service code (the AA segment) for this service.
const ServiceGatekeeper = 6

// MakeCode builds a 7-digit error code from service, category and sequence.
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}

// GetService extracts the service code from an error code.
func GetService(code int) int {
	return code / 100000
}

// GetCategory extracts the category code from an error code.
func GetCategory(code int) int {
	return (code / 1000) % 100
}

// Predefined errors shared across the service.
var (
	// ErrBadRequest indicates a malformed or invalid request.
	ErrBadRequest = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryRequest, 1),
		HTTP:    http.StatusBadRequest,
		Message: "Invalid request",
	}

	// ErrValidation indicates a restriction rule failed boundary validation.
	ErrValidation = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryRequest, 2),
		HTTP:    http.StatusBadRequest,
		Message: "Validation failed",
	}

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryAuth, 1),
		HTTP:    http.StatusUnauthorized,
		Message: "Unauthorized",
	}

	// ErrAccessDenied indicates the access decision engine denied the request.
	ErrAccessDenied = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryForbid, 1),
		HTTP:    http.StatusForbidden,
		Message: "Access denied",
	}

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryNotFound, 1),
		HTTP:    http.StatusNotFound,
		Message: "Resource not found",
	}

	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryConflict, 1),
		HTTP:    http.StatusConflict,
		Message: "Resource already exists",
	}

	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryInternal, 1),
		HTTP:    http.StatusInternalServerError,
		Message: "Internal server error",
	}

	// ErrDatabase indicates the backing rule store is unreachable or a
	// query failed. Access checks treat this as a fail-closed condition.
	ErrDatabase = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryDatabase, 1),
		HTTP:    http.StatusInternalServerError,
		Message: "Database error",
	}

	// ErrCache indicates a cache backend failure.
	ErrCache = &Errno{
		Code:    MakeCode(ServiceGatekeeper, CategoryCache, 1),
		HTTP:    http.StatusInternalServerError,
		Message: "Cache error",
	}
)
