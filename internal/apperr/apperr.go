// Package apperr carries the error taxonomy shared by services and handlers.
//
// Every error leaving the service layer is either an *Error or an unexpected
// failure that handlers render as INTERNAL_ERROR. Two *Error values match under
// errors.Is when their codes match, so sentinels below can be compared against
// copies that carry a cause.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuth          Kind = "auth"
	KindAuthorization Kind = "authorization"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindExternal      Kind = "external"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	// Action and RedirectTo are client hints for authorization failures.
	Action     string
	RedirectTo string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Code + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithMessage returns a copy of e with a different client message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

func newError(kind Kind, status int, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, HTTPStatus: status}
}

func Validation(msg string) *Error {
	return newError(KindValidation, http.StatusBadRequest, "VALIDATION_ERROR", msg)
}

func NotFound(resource string) *Error {
	return newError(KindNotFound, http.StatusNotFound, "NOT_FOUND", resource+" not found")
}

func Forbidden(msg string) *Error {
	return newError(KindAuthorization, http.StatusForbidden, "FORBIDDEN", msg)
}

func Internal(cause error) *Error {
	e := newError(KindInternal, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
	e.Cause = cause
	return e
}

var (
	ErrInvalidCredentials = newError(KindAuth, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountInactive    = newError(KindAuth, http.StatusUnauthorized, "ACCOUNT_INACTIVE", "account is deactivated")
	ErrEmailNotVerified   = newError(KindAuth, http.StatusUnauthorized, "EMAIL_NOT_VERIFIED", "email not verified")
	ErrSessionRevoked     = newError(KindAuth, http.StatusUnauthorized, "SESSION_REVOKED", "session is no longer active")
	ErrNotAuthenticated   = newError(KindAuth, http.StatusUnauthorized, "NOT_AUTHENTICATED", "not authenticated")
	ErrTokenExpired       = newError(KindAuth, http.StatusUnauthorized, "TOKEN_EXPIRED", "token has expired")
	ErrTokenMalformed     = newError(KindAuth, http.StatusUnauthorized, "TOKEN_INVALID", "token is invalid")
	ErrTokenTypeMismatch  = newError(KindAuth, http.StatusUnauthorized, "TOKEN_TYPE_MISMATCH", "token is invalid")
	ErrTokenUsed          = newError(KindAuth, http.StatusUnauthorized, "TOKEN_USED", "token has already been used")

	ErrCorruptCredential = newError(KindInternal, http.StatusInternalServerError, "CORRUPT_CREDENTIAL", "stored credential is unreadable")

	ErrEmailAlreadyExists = newError(KindConflict, http.StatusConflict, "EMAIL_EXISTS", "email already registered")
	ErrAlreadyPremium     = newError(KindConflict, http.StatusConflict, "ALREADY_PREMIUM", "account already has premium access")

	ErrRateLimited     = newError(KindValidation, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later")
	ErrPayloadTooLarge = newError(KindValidation, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body is too large")

	ErrAdminRequired   = newError(KindAuthorization, http.StatusForbidden, "FORBIDDEN", "admin access required")
	ErrPremiumRequired = &Error{
		Kind:       KindAuthorization,
		Code:       "PREMIUM_REQUIRED",
		Message:    "premium access required",
		HTTPStatus: http.StatusPaymentRequired,
		Action:     "upgrade_required",
		RedirectTo: "/payment",
	}

	ErrSessionNotFound = newError(KindNotFound, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found")
	ErrUserNotFound    = newError(KindNotFound, http.StatusNotFound, "USER_NOT_FOUND", "user not found")

	ErrPaymentPending  = newError(KindExternal, http.StatusAccepted, "PAYMENT_PENDING", "payment is still processing, retry later")
	ErrPaymentFailed   = newError(KindExternal, http.StatusPaymentRequired, "PAYMENT_FAILED", "payment was not completed")
	ErrCheckoutMissing = newError(KindNotFound, http.StatusNotFound, "CHECKOUT_NOT_FOUND", "checkout session not found")
	ErrProviderFailure = newError(KindExternal, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR", "payment provider is unavailable")
	ErrWebhookInvalid  = newError(KindValidation, http.StatusBadRequest, "WEBHOOK_INVALID", "webhook signature verification failed")
)
