package services

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicate          = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("not authorized")
)

// storeTimeout bounds every single store call made by a service.
const storeTimeout = 5 * time.Second

// DetailError carries a client-facing message for one of the sentinels above.
type DetailError struct {
	Kind    error
	Message string
}

func (e *DetailError) Error() string { return e.Message }
func (e *DetailError) Unwrap() error { return e.Kind }

func invalid(err error) error {
	return &DetailError{Kind: ErrValidation, Message: err.Error()}
}

func invalidf(msg string) error {
	return &DetailError{Kind: ErrValidation, Message: msg}
}

func duplicate(msg string) error {
	return &DetailError{Kind: ErrDuplicate, Message: msg}
}

func notFound(msg string) error {
	return &DetailError{Kind: ErrNotFound, Message: msg}
}

// translate maps store and guard errors onto the service sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, authz.ErrNotFound):
		return notFound(what + " not found")
	case errors.Is(err, store.ErrDuplicate):
		return duplicate(what + " already exists")
	case errors.Is(err, authz.ErrUnauthorized):
		return ErrUnauthorized
	}
	return err
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}
