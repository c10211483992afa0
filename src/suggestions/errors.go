// Package suggestions implements the suggestion lifecycle core: per-guild
// configuration, content moderation, the suggestion/vote repository, the
// vote aggregator and the lifecycle engine. Callers (the Discord bot and the
// HTTP API) translate the sentinel errors below into user-facing replies.
package suggestions

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfigured is returned when a guild has no suggestion channel set.
	ErrNotConfigured = errors.New("suggestion channel not configured")

	// ErrRateLimited is returned when the author reached the daily
	// submission cap inside the rolling 24h window.
	ErrRateLimited = errors.New("daily suggestion limit reached")

	// ErrContentRejected is the sentinel behind ContentRejectedError.
	ErrContentRejected = errors.New("suggestion content rejected")

	// ErrForbidden is returned when the guild requires a role the author
	// does not hold.
	ErrForbidden = errors.New("missing required role")

	// ErrCooldownActive is the sentinel behind CooldownError.
	ErrCooldownActive = errors.New("suggestion cooldown active")

	// ErrNotFound is returned for lookups of unknown suggestion ids.
	ErrNotFound = errors.New("suggestion not found")

	// ErrArchived is returned when a transition targets an archived
	// suggestion. Archived is terminal.
	ErrArchived = errors.New("suggestion is archived")

	ErrInvalidStatus   = errors.New("invalid suggestion status")
	ErrInvalidCategory = errors.New("invalid suggestion category")
	ErrInvalidVote     = errors.New("invalid vote kind")
	ErrInvalidConfig   = errors.New("invalid guild configuration")

	// ErrStorage wraps persistence failures. It is the only kind that
	// should surface as a hard failure of the requested operation.
	ErrStorage = errors.New("storage failure")
)

// ContentRejectedError carries the moderation rule that fired.
type ContentRejectedError struct {
	Reason string
}

func (e *ContentRejectedError) Error() string {
	return "suggestion content rejected: " + e.Reason
}

func (e *ContentRejectedError) Is(target error) bool { return target == ErrContentRejected }

// CooldownError carries the time left until the author may submit again.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("suggestion cooldown active: %d seconds remaining", e.SecondsRemaining())
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }

func (e *CooldownError) SecondsRemaining() int64 {
	secs := int64(e.Remaining / time.Second)
	if e.Remaining%time.Second != 0 {
		secs++
	}
	return secs
}

// ConfigError carries the reason a configuration update was refused.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "invalid guild configuration: " + e.Reason }

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// StorageError wraps a driver error with the failing operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage failure: " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error { return &StorageError{Op: op, Err: err} }
