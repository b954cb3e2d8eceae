package store

import (
	"context"
	"encoding/json"
	"reflect"

	"ClinicDesk/models"

	"github.com/pkg/errors"
)

// Collection is a typed view of one named collection. T is a pointer type
// such as *models.Patient. Every mutating method is a single Driver.Update,
// so it is atomic with respect to other writers of the same collection.
type Collection[T models.Record] struct {
	name   string
	driver Driver
}

func NewCollection[T models.Record](driver Driver, name string) *Collection[T] {
	return &Collection[T]{name: name, driver: driver}
}

func (c *Collection[T]) Name() string { return c.name }

// Load returns every record of the collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := c.driver.Load(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return c.decode(raw)
}

// Save replaces the whole collection with items.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	raw, err := c.encode(items)
	if err != nil {
		return err
	}
	return c.driver.Save(ctx, c.name, raw)
}

// All returns the records for which keep is true. A nil keep returns all.
func (c *Collection[T]) All(ctx context.Context, keep func(T) bool) ([]T, error) {
	items, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	if keep == nil {
		return items, nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Find returns the record stored under key or ErrNotFound.
func (c *Collection[T]) Find(ctx context.Context, key string) (T, error) {
	var zero T
	items, err := c.Load(ctx)
	if err != nil {
		return zero, err
	}
	if i := indexOf(items, key); i >= 0 {
		return items[i], nil
	}
	return zero, ErrNotFound
}

// Insert appends the record returned by build. build sees the current
// contents, which is where ids and codes are derived from.
func (c *Collection[T]) Insert(ctx context.Context, build func(existing []T) (T, error)) (T, error) {
	var created T
	err := c.Mutate(ctx, func(items []T) ([]T, error) {
		item, err := build(items)
		if err != nil {
			return nil, err
		}
		created = item
		return append(items, item), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return created, nil
}

// Replace hands the record under key to apply and stores what it returns.
// ErrNotFound leaves the collection untouched.
func (c *Collection[T]) Replace(ctx context.Context, key string, apply func(current T) (T, error)) (T, error) {
	var updated T
	err := c.Mutate(ctx, func(items []T) ([]T, error) {
		i := indexOf(items, key)
		if i < 0 {
			return nil, ErrNotFound
		}
		item, err := apply(items[i])
		if err != nil {
			return nil, err
		}
		items[i] = item
		updated = item
		return items, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Remove deletes the record under key and returns it.
func (c *Collection[T]) Remove(ctx context.Context, key string) (T, error) {
	var removed T
	err := c.Mutate(ctx, func(items []T) ([]T, error) {
		i := indexOf(items, key)
		if i < 0 {
			return nil, ErrNotFound
		}
		removed = items[i]
		return append(items[:i], items[i+1:]...), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return removed, nil
}

// Mutate runs fn over the decoded collection and persists the result.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	return c.driver.Update(ctx, c.name, func(current []byte) ([]byte, error) {
		items, err := c.decode(current)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return c.encode(next)
	})
}

func (c *Collection[T]) decode(raw []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", c.name)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !isNil(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *Collection[T]) encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s", c.name)
	}
	return raw, nil
}

func indexOf[T models.Record](items []T, key string) int {
	for i, item := range items {
		if item.RecordKey() == key {
			return i
		}
	}
	return -1
}

// isNil catches null elements of the array, which decode to nil pointers.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil())
}
