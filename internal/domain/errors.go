package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrDuplicateListing       = errors.New("listing id already exists")
	ErrListingNotFound        = errors.New("listing not found")
	ErrSessionNotFound        = errors.New("session not found")
	ErrSessionLimit           = errors.New("too many active sessions")
	ErrSessionEnded           = errors.New("session has ended")
	ErrShuttingDown           = errors.New("service is shutting down")
	ErrStepBlocked            = errors.New("cannot proceed")
	ErrRegistrationIncomplete = errors.New("registration is not complete")
)

// ValidationErrors maps a field name to a user-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid listing: " + strings.Join(parts, "; ")
}
