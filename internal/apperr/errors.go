// Package apperr holds the error kinds shared across the relay.
package apperr

import "github.com/cockroachdb/errors"

var (
	// ErrEmptyInput is returned when a chat request carries no message text.
	ErrEmptyInput = errors.New("empty message")

	// ErrCompletion marks any failure of the upstream completion call.
	ErrCompletion = errors.New("completion failed")

	// ErrCompletionTimeout is a completion failure caused by the per-call deadline.
	ErrCompletionTimeout = errors.Wrap(ErrCompletion, "timed out")

	// ErrNoChoices is returned when the completion response has no choices.
	ErrNoChoices = errors.Wrap(ErrCompletion, "no choices returned")

	// ErrConfigMissing is returned at startup when required settings are absent.
	ErrConfigMissing = errors.New("required configuration missing")
)

// Wrap reports cause as an error of the given kind. The kind stays on the
// Unwrap chain; cause is kept as secondary detail for logs.
func Wrap(kind, cause error, msg string) error {
	return errors.WithSecondaryError(errors.Wrapf(kind, "%s: %v", msg, cause), cause)
}
