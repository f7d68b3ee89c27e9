package errors

import (
	"errors"
	"fmt"
)

// Startup errors — the only ones allowed to be fatal.

var (
	// ErrInvalidConfig indicates required configuration is missing or malformed
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Feed pipeline errors — always recoverable, never allowed past the
// subscriber's boundary.

var (
	// ErrCatalogUnavailable indicates the symbol catalog endpoint could not be reached or parsed
	ErrCatalogUnavailable = errors.New("symbol catalog unavailable")

	// ErrWSNotConnected indicates the feed WebSocket is not connected
	ErrWSNotConnected = errors.New("websocket not connected")

	// ErrWSSubscriptionFailed indicates the feed subscription request failed
	ErrWSSubscriptionFailed = errors.New("websocket subscription failed")

	// ErrMalformedPayload indicates a feed frame matched no known payload shape
	ErrMalformedPayload = errors.New("malformed event payload")
)

// Subscriber-facing errors.

var (
	// ErrInvalidInput indicates user input that cannot be parsed for the current conversation phase
	ErrInvalidInput = errors.New("invalid input")

	// ErrDeliveryFailure indicates a notification could not be delivered to a subscriber
	ErrDeliveryFailure = errors.New("notification delivery failed")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")
)

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
