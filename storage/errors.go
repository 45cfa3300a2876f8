// Error classification for the row stores.
//
// Information Hiding:
// - Which driver codes and message shapes mean "schema missing"

package storage

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// ErrUnprovisioned reports that the backing tables or collections have
// not been created yet (EnsureSchema never ran). Callers that want to
// distinguish a missing-setup condition from a generic read failure
// check for it with IsUnprovisioned.
var ErrUnprovisioned = errors.New("storage schema not provisioned")

// pgUndefinedTable is the Postgres error code for a missing relation.
const pgUndefinedTable = "42P01"

// unprovisionedMessages are the known provider message fragments that
// mean a relation or collection is absent. They are the fallback for
// drivers that do not surface a structured code; the structured checks
// in IsUnprovisioned run first.
var unprovisionedMessages = []string{
	"no such table",
	"does not exist",
	"could not find the table",
}

// IsUnprovisioned reports whether err means the store's schema is
// missing rather than the store having failed.
func IsUnprovisioned(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnprovisioned) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUndefinedTable
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range unprovisionedMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// unprovisionedError tags a driver error as the missing-schema
// condition while keeping the original error in the chain.
type unprovisionedError struct {
	cause error
}

func (e *unprovisionedError) Error() string {
	return "storage schema not provisioned: " + e.cause.Error()
}

func (e *unprovisionedError) Is(target error) bool {
	return target == ErrUnprovisioned
}

func (e *unprovisionedError) Unwrap() error {
	return e.cause
}

// markUnprovisioned wraps a raw driver error so that errors.Is(err,
// ErrUnprovisioned) holds. Drivers call it when they recognize their
// own missing-relation signature.
func markUnprovisioned(err error) error {
	return &unprovisionedError{cause: err}
}
