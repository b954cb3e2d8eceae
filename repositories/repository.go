package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/store"

	"github.com/samber/lo"
)

// ErrInvalidFilter is returned for a list filter whose value cannot match
// the field, such as a non-numeric id.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter maps a field name to the canonical value it must equal. "null"
// matches an absent reference.
type Filter map[string]string

// Match reports whether e satisfies every filter field it knows about.
func (f Filter) Match(e models.Entity) bool {
	for field, want := range f {
		got, ok := e.FilterValue(field)
		if !ok {
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

// Repository is the read-modify-write access to one entity collection.
type Repository[T models.Entity] struct {
	coll    *store.Collection[T]
	newItem func() T
	now     func() time.Time
}

// NewRepository binds a collection name to a constructor for its records.
func NewRepository[T models.Entity](driver store.Driver, name string, newItem func() T) *Repository[T] {
	return &Repository[T]{
		coll:    store.NewCollection[T](driver, name),
		newItem: newItem,
		now:     time.Now,
	}
}

// New returns an empty record of the repository's type.
func (r *Repository[T]) New() T { return r.newItem() }

func (r *Repository[T]) Name() string { return r.coll.Name() }

// ParseFilter keeps the query parameters this entity can be filtered on.
// Fields ending in "Id" must be numeric or "null".
func (r *Repository[T]) ParseFilter(query map[string][]string) (Filter, error) {
	sample := r.newItem()
	filter := Filter{}
	for field, values := range query {
		if len(values) == 0 {
			continue
		}
		if _, ok := sample.FilterValue(field); !ok {
			continue
		}
		value := strings.TrimSpace(values[0])
		if strings.HasSuffix(field, "Id") && value != "null" {
			id, err := models.ParseID(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s=%q", ErrInvalidFilter, field, value)
			}
			value = id.String()
		}
		filter[field] = value
	}
	return filter, nil
}

func (r *Repository[T]) List(ctx context.Context, filter Filter) ([]T, error) {
	items, err := r.coll.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		return items, nil
	}
	return lo.Filter(items, func(item T, _ int) bool {
		return filter.Match(item)
	}), nil
}

func (r *Repository[T]) GetByID(ctx context.Context, id models.ID) (T, error) {
	return r.coll.Find(ctx, id.String())
}

// Create assigns the next id (and code for coded entities) and appends item.
// checks run against the current contents inside the same update and can
// veto the insert.
func (r *Repository[T]) Create(ctx context.Context, item T, checks ...func(existing []T) error) (T, error) {
	return r.coll.Insert(ctx, func(existing []T) (T, error) {
		for _, check := range checks {
			if err := check(existing); err != nil {
				var zero T
				return zero, err
			}
		}
		item.SetID(store.NextID(existing))
		if coded, ok := any(item).(models.Coded); ok {
			store.AssignCode(coded, existing, r.now())
		}
		return item, nil
	})
}

// Update hands the stored record to apply. The id and code of the record
// survive whatever apply does.
func (r *Repository[T]) Update(ctx context.Context, id models.ID, apply func(current T) (T, error)) (T, error) {
	return r.coll.Replace(ctx, id.String(), func(current T) (T, error) {
		var code string
		if coded, ok := any(current).(models.Coded); ok {
			code = coded.GetCode()
		}
		next, err := apply(current)
		if err != nil {
			var zero T
			return zero, err
		}
		next.SetID(id)
		if coded, ok := any(next).(models.Coded); ok {
			coded.SetCode(code)
		}
		return next, nil
	})
}

func (r *Repository[T]) Delete(ctx context.Context, id models.ID) (T, error) {
	return r.coll.Remove(ctx, id.String())
}

// Mutate exposes a whole-collection update for multi-record changes.
func (r *Repository[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	return r.coll.Mutate(ctx, fn)
}
