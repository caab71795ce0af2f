package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	stripeutil "github.com/loganlanou/chsn-merch/internal/stripe"
)

type ErrorKind int

const (
	// ClientInput errors are the caller's fault; the message is safe to show.
	ClientInput ErrorKind = iota
	// Configuration errors need an operator to fix the deployment.
	Configuration
	// Upstream errors come from the payment provider.
	Upstream
	// FeatureDisabled means checkout was switched off on purpose.
	FeatureDisabled
)

func (k ErrorKind) String() string {
	switch k {
	case ClientInput:
		return "client_input"
	case Configuration:
		return "configuration"
	case Upstream:
		return "upstream"
	case FeatureDisabled:
		return "feature_disabled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CheckoutError is an error with a status and a body-safe message.
type CheckoutError struct {
	Kind    ErrorKind
	Status  int
	Message string

	// Type and Code carry the provider's own classification, if any.
	Type string
	Code string

	Err error
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

func clientError(status int, message string) *CheckoutError {
	return &CheckoutError{Kind: ClientInput, Status: status, Message: message}
}

func configError(message string, err error) *CheckoutError {
	return &CheckoutError{Kind: Configuration, Status: http.StatusInternalServerError, Message: message, Err: err}
}

func disabledError(message string) *CheckoutError {
	return &CheckoutError{Kind: FeatureDisabled, Status: http.StatusServiceUnavailable, Message: message}
}

// upstreamError wraps err with message, copying Stripe's type and code when
// err came from the Stripe API.
func upstreamError(message string, err error) *CheckoutError {
	ce := &CheckoutError{Kind: Upstream, Status: http.StatusInternalServerError, Message: message, Err: err}
	if errType, code, ok := stripeutil.ErrorDetails(err); ok {
		ce.Type = errType
		ce.Code = code
	}
	return ce
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
	Code  string `json:"code,omitempty"`
}

// HTTPErrorHandler renders every error as {"error": ...}. Internal details
// are logged, never returned.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errorResponse{Error: http.StatusText(http.StatusInternalServerError)}

	var ce *CheckoutError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ce):
		status = ce.Status
		body = errorResponse{Error: ce.Message, Type: ce.Type, Code: ce.Code}

		attrs := []any{"error", err, "kind", ce.Kind.String(), "status", status, "path", c.Request().URL.Path}
		if ce.Kind == ClientInput {
			slog.Warn("request rejected", attrs...)
		} else {
			slog.Error("request failed", attrs...)
		}
	case errors.As(err, &he):
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			body.Error = msg
		} else {
			body.Error = http.StatusText(he.Code)
		}
	default:
		slog.Error("unhandled error", "error", err, "path", c.Request().URL.Path)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
