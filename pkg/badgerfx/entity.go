package badgerfx

import "errors"

var ErrNotFound = errors.New("entity not found")

// Entity is a value stored under a single key.
type Entity interface {
	StorageKey() string
	MarshalStorage() ([]byte, error)
	UnmarshalStorage(data []byte) error
}
