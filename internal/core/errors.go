package core

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/controltower/internal/ingest"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("not found")

// Kind classifies service errors so transports can pick a status code.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindBusy:
		return "busy"
	default:
		return "internal"
	}
}

// Error is a service error whose message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports how err should be surfaced. Upload rejections and
// validation failures are KindInvalid; anything unrecognized is internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	if IsValidation(err) {
		return KindInvalid
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	if errors.Is(err, ErrTooManyUploads) {
		return KindBusy
	}
	return KindInternal
}

// IsValidation reports whether err rejects caller input before any write.
func IsValidation(err error) bool {
	if ingest.IsRejection(err) {
		return true
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var ves validator.ValidationErrors
	return errors.As(err, &ves)
}
