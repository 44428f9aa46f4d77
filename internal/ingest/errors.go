package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// InputError reports a problem with the uploaded file that the uploader can
// fix. Nothing has been written when one is returned.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Invalid builds an InputError.
func Invalid(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// ScopeError rejects an upload whose customers do not match the caller's
// active customer view.
type ScopeError struct {
	Active string
	Found  []string
}

func (e *ScopeError) Error() string {
	if len(e.Found) == 0 {
		return fmt.Sprintf("This file does not contain any customerName values, but you are currently viewing '%s'. "+
			"Please upload a file filtered for this customer or go back to the customer selection page and choose the correct customer.",
			e.Active)
	}
	return fmt.Sprintf("This Excel looks to be for customer(s): %s, but you are currently viewing '%s'. "+
		"Please go back to the customer selection page and choose the matching customer before uploading.",
		strings.Join(e.Found, ", "), e.Active)
}

// IsRejection reports whether err rejects an upload before any mutation.
func IsRejection(err error) bool {
	var inputErr *InputError
	var scopeErr *ScopeError
	return errors.As(err, &inputErr) || errors.As(err, &scopeErr)
}
