// Package apperrors defines the error taxonomy shared by services and
// handlers. Services return (or wrap) one of these sentinels; the HTTP
// layer maps them to a status code and a uniform JSON envelope.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrInvalidInput covers malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound covers unknown and malformed resource ids alike.
	ErrNotFound = errors.New("not found")
	// ErrInvalidAmount rejects non-positive payment amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrMissingFields rejects a verify request lacking any of the
	// provider order id, payment id or signature.
	ErrMissingFields = errors.New("missing payment details")
	// ErrInvalidSignature is the non-retryable verification failure.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrPaymentNotCaptured means the signature checked out but the
	// provider did not report captured funds for the payment.
	ErrPaymentNotCaptured = errors.New("payment not captured")
	// ErrGatewayUnavailable means the provider is unreachable or the
	// adapter is unconfigured. Distinct from validation errors so the
	// client can tell "your input is wrong" from "try again later".
	ErrGatewayUnavailable = errors.New("payment service unavailable")
	// ErrInsufficientStock rejects an order line exceeding stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInsufficientFunds rejects a wallet debit below zero.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	// ErrInvalidTransition rejects a non-monotonic order status move.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrUnauthorized covers missing or wrong credentials/sessions.
	ErrUnauthorized = errors.New("unauthorized")
)

// Status maps a taxonomy error to its HTTP status code. Anything not in
// the taxonomy is an internal error.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrPaymentNotCaptured),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidTransition):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrGatewayUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the client-facing message for err, hiding internals
// behind a generic line for anything outside the taxonomy.
func Message(err error) string {
	if Status(err) == fiber.StatusInternalServerError {
		return "something went wrong, please try again"
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e {
		case ErrInvalidInput, ErrNotFound, ErrInvalidAmount, ErrMissingFields,
			ErrInvalidSignature, ErrPaymentNotCaptured, ErrGatewayUnavailable,
			ErrInsufficientStock, ErrInsufficientFunds, ErrInvalidTransition,
			ErrUnauthorized:
			return e.Error()
		}
	}
	return err.Error()
}
