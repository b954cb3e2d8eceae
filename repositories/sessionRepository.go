package repositories

import (
	"context"
	"errors"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/store"
)

// SessionRepository keeps login sessions in the sessions collection.
type SessionRepository struct {
	sessions *store.Collection[*models.Session]
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionRepository(driver store.Driver, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		sessions: store.NewCollection[*models.Session](driver, models.SessionsCollection),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL is how long a session lives after its last Set or Touch.
func (r *SessionRepository) TTL() time.Duration { return r.ttl }

// Get returns the live session for sid or store.ErrNotFound. Finding an
// expired session triggers a purge of every expired one.
func (r *SessionRepository) Get(ctx context.Context, sid string) (*models.Session, error) {
	s, err := r.sessions.Find(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s.Expired(r.now()) {
		if _, err := r.PurgeExpired(ctx); err != nil {
			return nil, err
		}
		return nil, store.ErrNotFound
	}
	return s, nil
}

// Set creates the session or replaces its payload.
func (r *SessionRepository) Set(ctx context.Context, sid string, data models.SessionData) (*models.Session, error) {
	now := r.now()
	var saved *models.Session
	err := r.sessions.Mutate(ctx, func(items []*models.Session) ([]*models.Session, error) {
		for _, s := range items {
			if s.SID == sid {
				s.Data = data
				s.UpdatedAt = now
				s.ExpiresAt = now.Add(r.ttl)
				saved = s
				return items, nil
			}
		}
		saved = &models.Session{
			SID:       sid,
			Data:      data,
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(r.ttl),
		}
		return append(items, saved), nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Touch refreshes an existing session and extends its expiry. An unknown sid
// is left alone.
func (r *SessionRepository) Touch(ctx context.Context, sid string, data models.SessionData) error {
	now := r.now()
	_, err := r.sessions.Replace(ctx, sid, func(s *models.Session) (*models.Session, error) {
		s.Data = data
		s.UpdatedAt = now
		s.ExpiresAt = now.Add(r.ttl)
		return s, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// Destroy removes sid. Destroying an unknown session is not an error.
func (r *SessionRepository) Destroy(ctx context.Context, sid string) error {
	_, err := r.sessions.Remove(ctx, sid)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// PurgeExpired drops every expired session and returns how many went.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int, error) {
	now := r.now()
	purged := 0
	err := r.sessions.Mutate(ctx, func(items []*models.Session) ([]*models.Session, error) {
		kept := items[:0]
		for _, s := range items {
			if s.Expired(now) {
				purged++
				continue
			}
			kept = append(kept, s)
		}
		return kept, nil
	})
	return purged, err
}
