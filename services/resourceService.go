package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// ResourceService implements list/get/create/update/delete for one entity.
// Entity specific rules plug in through prepare and afterWrite.
type ResourceService[T models.Entity] struct {
	repo     *repositories.Repository[T]
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time

	// prepare fills defaults and derived fields before validation. created
	// is true on create.
	prepare func(item T, created bool, now time.Time)
	// afterWrite runs once a change is persisted.
	afterWrite func(ctx context.Context, action string, item T) error

	// serverOwned fields are maintained by the service and ignored in
	// request bodies.
	serverOwned []string
	// aliases maps alternative body field names onto the stored ones. The
	// stored name wins when a body carries both.
	aliases map[string]string
}

func NewResourceService[T models.Entity](repo *repositories.Repository[T], notifier Notifier, log zerolog.Logger) *ResourceService[T] {
	return &ResourceService[T]{repo: repo, notifier: notifier, log: log, now: time.Now}
}

// Collection is the name change events are published under.
func (s *ResourceService[T]) Collection() string { return s.repo.Name() }

// List returns the records matching the query parameters the entity can be
// filtered on.
func (s *ResourceService[T]) List(ctx context.Context, query map[string][]string) ([]T, error) {
	filter, err := s.repo.ParseFilter(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.repo.List(ctx, filter)
}

// ListWhere lists with an already canonical filter.
func (s *ResourceService[T]) ListWhere(ctx context.Context, filter repositories.Filter) ([]T, error) {
	return s.repo.List(ctx, filter)
}

func (s *ResourceService[T]) Get(ctx context.Context, id models.ID) (T, error) {
	return s.repo.GetByID(ctx, id)
}

// Create decodes body into a new record, fills defaults, validates and stores
// it with the next id.
func (s *ResourceService[T]) Create(ctx context.Context, body []byte) (T, error) {
	return s.CreateWith(ctx, body, nil)
}

// CreateWith is Create with fix applied to the decoded record, used by nested
// routes to pin parent references.
func (s *ResourceService[T]) CreateWith(ctx context.Context, body []byte, fix func(item T)) (T, error) {
	var zero T
	item, err := s.decode(body)
	if err != nil {
		return zero, err
	}
	if fix != nil {
		fix(item)
	}
	return s.CreateRecord(ctx, item)
}

// CreateRecord stores an already built record.
func (s *ResourceService[T]) CreateRecord(ctx context.Context, item T) (T, error) {
	var zero T
	if s.prepare != nil {
		s.prepare(item, true, s.now())
	}
	if err := validate(item); err != nil {
		return zero, err
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return zero, err
	}
	return created, s.written(ctx, ActionCreated, created)
}

// Update shallow merges body onto the stored record. Fields absent from body
// keep their value and null clears an optional reference.
func (s *ResourceService[T]) Update(ctx context.Context, id models.ID, body []byte) (T, error) {
	return s.UpdateWith(ctx, id, body, nil)
}

// Scope guards and pins an update made through a nested route. Owns reports
// whether the stored record belongs to the parent; Fix re-applies the parent
// references after the merge.
type Scope[T models.Entity] struct {
	Owns func(current T) bool
	Fix  func(item T)
}

// UpdateWith is Update restricted to records the scope owns. A record outside
// the scope reads as not found.
func (s *ResourceService[T]) UpdateWith(ctx context.Context, id models.ID, body []byte, scope *Scope[T]) (T, error) {
	var zero T
	patch, err := s.bodyFields(body)
	if err != nil {
		return zero, err
	}
	updated, err := s.repo.Update(ctx, id, func(current T) (T, error) {
		if scope != nil && scope.Owns != nil && !scope.Owns(current) {
			return zero, ErrNotFound
		}
		next, err := s.merge(current, patch)
		if err != nil {
			return zero, err
		}
		next.SetID(id)
		if scope != nil && scope.Fix != nil {
			scope.Fix(next)
		}
		if s.prepare != nil {
			s.prepare(next, false, s.now())
		}
		if err := validate(next); err != nil {
			return zero, err
		}
		return next, nil
	})
	if err != nil {
		return zero, err
	}
	return updated, s.written(ctx, ActionUpdated, updated)
}

// Modify applies a programmatic change to the stored record.
func (s *ResourceService[T]) Modify(ctx context.Context, id models.ID, apply func(item T)) (T, error) {
	var zero T
	updated, err := s.repo.Update(ctx, id, func(current T) (T, error) {
		apply(current)
		if s.prepare != nil {
			s.prepare(current, false, s.now())
		}
		return current, nil
	})
	if err != nil {
		return zero, err
	}
	return updated, s.written(ctx, ActionUpdated, updated)
}

func (s *ResourceService[T]) Delete(ctx context.Context, id models.ID) (T, error) {
	var zero T
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return zero, err
	}
	return removed, s.written(ctx, ActionDeleted, removed)
}

// written publishes the change and runs the follow-up hook. The primary
// write is kept when the hook fails; the error is logged and returned.
func (s *ResourceService[T]) written(ctx context.Context, action string, item T) error {
	publish(s.notifier, s.repo.Name(), action, item.GetID())
	if s.afterWrite == nil {
		return nil
	}
	if err := s.afterWrite(ctx, action, item); err != nil {
		s.log.Error().Err(err).
			Str("collection", s.repo.Name()).
			Str("action", action).
			Int64("id", int64(item.GetID())).
			Msg("follow-up update failed")
		return fmt.Errorf("%s %d %s but follow-up failed: %w", s.repo.Name(), item.GetID(), action, err)
	}
	return nil
}

func (s *ResourceService[T]) decode(body []byte) (T, error) {
	var zero T
	fields, err := s.bodyFields(body)
	if err != nil {
		return zero, err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return zero, err
	}
	item := s.repo.New()
	if err := json.Unmarshal(raw, item); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return item, nil
}

// bodyFields splits body into its fields with aliases resolved and server
// owned fields removed.
func (s *ResourceService[T]) bodyFields(body []byte) (map[string]json.RawMessage, error) {
	fields, err := objectFields(body)
	if err != nil {
		return nil, err
	}
	for alias, name := range s.aliases {
		v, ok := fields[alias]
		if !ok {
			continue
		}
		delete(fields, alias)
		if _, set := fields[name]; !set {
			fields[name] = v
		}
	}
	for _, name := range s.serverOwned {
		delete(fields, name)
	}
	return fields, nil
}

func (s *ResourceService[T]) merge(current T, patch map[string]json.RawMessage) (T, error) {
	var zero T
	base, err := json.Marshal(current)
	if err != nil {
		return zero, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return zero, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, err
	}
	next := s.repo.New()
	if err := json.Unmarshal(merged, next); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return next, nil
}

// objectFields splits a JSON object body into its top level fields.
func objectFields(body []byte) (map[string]json.RawMessage, error) {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidInput)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fields, nil
}

func validate(item any) error {
	v, ok := item.(validation.Validatable)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return err
	}
	return nil
}
