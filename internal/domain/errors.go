package domain

import "fmt"

// ErrorCode identifies a distinct failure mode surfaced to API clients
type ErrorCode string

// Failure modes, ordered roughly by where they occur in a request
const (
	CodeMissingFields         ErrorCode = "MissingFields"         // Required request fields absent
	CodeInvalidAmount         ErrorCode = "InvalidAmount"         // Amount non-positive or below the route minimum
	CodeInvalidCurrency       ErrorCode = "InvalidCurrency"       // Currency code malformed or unsupported
	CodeInvalidRoute          ErrorCode = "InvalidRoute"          // Route type not in the configured profiles
	CodeAmountOutOfRange      ErrorCode = "AmountOutOfRange"      // Amount outside the transfer limits
	CodeRecipientNotFound     ErrorCode = "RecipientNotFound"     // Recipient missing or owned by another sender
	CodePaymentMethodNotFound ErrorCode = "PaymentMethodNotFound" // Payment method missing or owned by another sender
	CodeTransactionNotFound   ErrorCode = "TransactionNotFound"   // Transaction missing or owned by another sender
)

// ValidationError reports invalid or missing input; maps to HTTP 400
type ValidationError struct {
	Code    ErrorCode // Which validation rule failed
	Message string    // Human readable reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError builds a ValidationError for the given code
func NewValidationError(code ErrorCode, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// NotFoundError reports an unresolvable or unowned reference; maps to HTTP 404
type NotFoundError struct {
	Code    ErrorCode // Which reference failed to resolve
	Message string    // Human readable reason
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError builds a NotFoundError for the given code
func NewNotFoundError(code ErrorCode, message string) *NotFoundError {
	return &NotFoundError{Code: code, Message: message}
}

// StateTransitionError reports an illegal status change and carries the
// status the transaction was actually in; maps to HTTP 400
type StateTransitionError struct {
	Current TransactionStatus // Status at the time the transition was refused
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("InvalidStateTransition: transaction is %s", e.Current)
}
