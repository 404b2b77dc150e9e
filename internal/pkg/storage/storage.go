package storage

import "errors"

// KeyValueStore holds small string secrets such as tokens. Implementations
// must be safe for concurrent use.
type KeyValueStore interface {
	// Get returns ok=false when the key is absent
	Get(key string) (value string, ok bool, err error)

	// Set writes all values at once
	Set(values map[string]string) error

	// Delete removes keys; missing keys are ignored
	Delete(keys ...string) error
}

var (
	ErrCorrupted     = errors.New("storage file is corrupted or the key is wrong")
	ErrEmptyPassword = errors.New("storage passphrase must not be empty")
)
