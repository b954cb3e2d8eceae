package repositories

import (
	"context"
	"testing"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newSessions(t *testing.T) (*SessionRepository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository(newDriver(t), time.Hour)
	repo.now = clock.now
	return repo, clock
}

func TestSessionSetAndGet(t *testing.T) {
	ctx := context.Background()
	repo, clock := newSessions(t)

	created, err := repo.Set(ctx, "sid-1", models.SessionData{Identity: models.GuestIdentity{ID: "guest-1"}})
	require.NoError(t, err)
	assert.Equal(t, clock.t, created.CreatedAt)
	assert.Equal(t, clock.t.Add(time.Hour), created.ExpiresAt)

	clock.t = clock.t.Add(10 * time.Minute)
	_, err = repo.Set(ctx, "sid-1", models.SessionData{Identity: models.UserIdentity{UserID: 4}})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, models.UserIdentity{UserID: 4}, got.Data.Identity)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Equal(t, clock.t, got.UpdatedAt)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	repo, clock := newSessions(t)
	_, err := repo.Set(ctx, "old", models.SessionData{Identity: models.GuestIdentity{ID: "g"}})
	require.NoError(t, err)

	clock.t = clock.t.Add(30 * time.Minute)
	_, err = repo.Set(ctx, "fresh", models.SessionData{Identity: models.GuestIdentity{ID: "h"}})
	require.NoError(t, err)

	clock.t = clock.t.Add(45 * time.Minute)
	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// the purge triggered above removed only the expired session
	_, err = repo.Get(ctx, "fresh")
	assert.NoError(t, err)
	n, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionTouch(t *testing.T) {
	ctx := context.Background()
	repo, clock := newSessions(t)
	data := models.SessionData{Identity: models.UserIdentity{UserID: 1}}
	_, err := repo.Set(ctx, "sid", data)
	require.NoError(t, err)

	clock.t = clock.t.Add(50 * time.Minute)
	require.NoError(t, repo.Touch(ctx, "sid", data))
	clock.t = clock.t.Add(50 * time.Minute)
	_, err = repo.Get(ctx, "sid")
	assert.NoError(t, err, "touch should have extended the expiry")

	require.NoError(t, repo.Touch(ctx, "unknown", data))
	_, err = repo.Get(ctx, "unknown")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionDestroy(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSessions(t)
	_, err := repo.Set(ctx, "sid", models.SessionData{Identity: models.GuestIdentity{ID: "g"}})
	require.NoError(t, err)

	require.NoError(t, repo.Destroy(ctx, "sid"))
	_, err = repo.Get(ctx, "sid")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, repo.Destroy(ctx, "sid"))
}
