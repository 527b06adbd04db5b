// Package storage provides the object stores used for client photos and backups.
package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrObjectNotFound is returned by Get when the key does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for empty keys or keys that try to leave the store root.
	ErrInvalidKey = errors.New("invalid object key")
)

// ObjectStore is a flat key/value blob store.
// Delete of a missing key is not an error.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}
