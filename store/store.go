// Package store persists collections of records. A collection is a JSON array
// addressed by name; drivers decide where the array lives.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a record key is absent from a collection.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidName is returned for collection names that cannot be stored.
	ErrInvalidName = errors.New("invalid collection name")
)

// UpdateFunc receives the current JSON array of a collection and returns the
// array to persist. Returning an error aborts the update.
type UpdateFunc func(current []byte) ([]byte, error)

// Driver is a backend holding whole collections.
type Driver interface {
	// Load returns the JSON array stored under name, "[]" when absent.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save overwrites the collection.
	Save(ctx context.Context, name string, data []byte) error
	// Update runs fn as one atomic read-modify-write of the collection.
	Update(ctx context.Context, name string, fn UpdateFunc) error
	Close() error
}

var emptyArray = []byte("[]")

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

func checkName(name string) error {
	if !namePattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

// normalize turns empty input into an empty array and rejects anything that is
// not a JSON array.
func normalize(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return emptyArray, nil
	}
	if trimmed[0] != '[' || !json.Valid(trimmed) {
		return nil, errors.New("collection is not a JSON array")
	}
	return trimmed, nil
}
