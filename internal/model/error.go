package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Field         string         `json:"field,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeProductInUse      = "PRODUCT_IN_USE"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeUserExists        = "USER_EXISTS"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeDuplicateRequest  = "DUPLICATE_REQUEST"
	ErrCodeStorageFailure    = "STORAGE_FAILURE"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors. The typed errors below match these with errors.Is.
var (
	ErrValidation        = NewDomainError(ErrCodeValidation, "Request is invalid")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrProductInUse      = NewDomainError(ErrCodeProductInUse, "Product is referenced by existing orders")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound      = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrUserExists        = NewDomainError(ErrCodeUserExists, "Username or email already exists")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrConflict          = NewDomainError(ErrCodeConflict, "Concurrent modification detected, please retry")
	ErrDuplicateRequest  = NewDomainError(ErrCodeDuplicateRequest, "A request with this idempotency key is already in progress")
	ErrStorageFailure    = NewDomainError(ErrCodeStorageFailure, "Storage is temporarily unavailable")
)

// ValidationError reports a malformed request field. It never involves storage.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ProductNotFoundError reports a product id that does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// Is matches ErrProductNotFound.
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// InsufficientStockError reports a line item whose quantity exceeds the
// available stock of its product.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Shortfall returns how many units are missing.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// Is matches ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StorageError wraps a persistence failure. The underlying cause stays
// reachable through errors.Is / errors.As.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches ErrStorageFailure.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}
