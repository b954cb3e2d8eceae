package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ClinicDesk/repositories"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMediaService(t *testing.T, maxBytes int64) (*MediaService, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	svc, err := NewMediaService(repositories.NewMediaRepository(newDriver(t)), dir, maxBytes, nil, zerolog.Nop())
	require.NoError(t, err)
	return svc, dir
}

func TestUploadStoresFileAndMetadata(t *testing.T) {
	ctx := context.Background()
	svc, dir := newMediaService(t, 1024)

	m, err := svc.Upload(ctx, Upload{
		OriginalName: "../../x-ray.png",
		ContentType:  "image/png",
		Size:         5,
		Body:         strings.NewReader("image"),
		PatientID:    "4",
		TreatmentID:  "",
	})
	require.NoError(t, err)
	assert.Equal(t, "x-ray.png", m.OriginalName)
	assert.True(t, strings.HasSuffix(m.Filename, "-x-ray.png"))
	assert.Equal(t, MediaPathPrefix+m.Filename, m.Path)
	assert.Equal(t, int64(5), m.Size)
	assert.True(t, m.PatientID.Is(4))
	assert.False(t, m.TreatmentID.Valid)

	data, err := os.ReadFile(filepath.Join(dir, m.Filename))
	require.NoError(t, err)
	assert.Equal(t, "image", string(data))

	path, err := svc.FilePath(m.Filename)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, m.Filename), path)

	_, err = svc.Remove(ctx, m.ID)
	require.NoError(t, err)
	_, err = svc.FilePath(m.Filename)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadTooLarge(t *testing.T) {
	ctx := context.Background()
	svc, dir := newMediaService(t, 4)

	_, err := svc.Upload(ctx, Upload{OriginalName: "a.txt", Size: 10, Body: strings.NewReader("0123456789")})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// a lying size is caught while copying
	_, err = svc.Upload(ctx, Upload{OriginalName: "a.txt", Size: 1, Body: strings.NewReader("0123456789")})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadRejectsBadReference(t *testing.T) {
	svc, _ := newMediaService(t, 1024)
	_, err := svc.Upload(context.Background(), Upload{OriginalName: "a.txt", Size: 1, Body: strings.NewReader("a"), PatientID: "abc"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFilePathRejectsTraversal(t *testing.T) {
	svc, _ := newMediaService(t, 1024)
	for _, name := range []string{"", "..", "../secret", ".env", "a/b"} {
		_, err := svc.FilePath(name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
}

func TestRemoveToleratesMissingFile(t *testing.T) {
	ctx := context.Background()
	svc, dir := newMediaService(t, 1024)
	m, err := svc.Upload(ctx, Upload{OriginalName: "note.txt", Size: 2, Body: strings.NewReader("hi")})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, m.Filename)))

	_, err = svc.Remove(ctx, m.ID)
	assert.NoError(t, err)
}
