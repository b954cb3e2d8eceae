package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ClinicDesk/models"
	"ClinicDesk/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MediaPathPrefix is where uploaded files are served from.
const MediaPathPrefix = "/api/media/"

// Upload is one file received from a multipart form.
type Upload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader

	PatientID   string
	TreatmentID string
	CasesheetID string
}

// MediaService stores uploaded files on disk and their metadata in the media
// collection.
type MediaService struct {
	*ResourceService[*models.Media]
	dir      string
	maxBytes int64
}

func NewMediaService(repo *repositories.MediaRepository, dir string, maxBytes int64, notifier Notifier, log zerolog.Logger) (*MediaService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &MediaService{
		ResourceService: NewResourceService(repo, notifier, log),
		dir:             dir,
		maxBytes:        maxBytes,
	}, nil
}

// MaxBytes is the upload size limit.
func (s *MediaService) MaxBytes() int64 { return s.maxBytes }

func parseFormRef(field, value string) (models.Ref, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "null" {
		return models.Ref{}, nil
	}
	id, err := models.ParseID(value)
	if err != nil {
		return models.Ref{}, fmt.Errorf("%w: %s: %v", ErrInvalidInput, field, err)
	}
	return models.NewRef(id), nil
}

// cleanName keeps the last path element of a client supplied file name.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

// Upload writes the file as <uuid>-<original name> and records it.
func (s *MediaService) Upload(ctx context.Context, up Upload) (*models.Media, error) {
	if up.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	patientID, err := parseFormRef("patientId", up.PatientID)
	if err != nil {
		return nil, err
	}
	treatmentID, err := parseFormRef("treatmentId", up.TreatmentID)
	if err != nil {
		return nil, err
	}
	casesheetID, err := parseFormRef("casesheetId", up.CasesheetID)
	if err != nil {
		return nil, err
	}

	original := cleanName(up.OriginalName)
	filename := uuid.New().String() + "-" + original
	path := filepath.Join(s.dir, filename)

	size, err := s.writeFile(path, up.Body)
	if err != nil {
		return nil, err
	}

	media := &models.Media{
		Filename:     filename,
		OriginalName: original,
		Path:         MediaPathPrefix + filename,
		ContentType:  up.ContentType,
		Size:         size,
		PatientID:    patientID,
		TreatmentID:  treatmentID,
		CasesheetID:  casesheetID,
		UploadedAt:   s.now(),
	}
	created, err := s.CreateRecord(ctx, media)
	if err != nil && created == nil {
		os.Remove(path)
		return nil, err
	}
	return created, err
}

func (s *MediaService) writeFile(path string, body io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	if n > s.maxBytes {
		os.Remove(path)
		return 0, ErrFileTooLarge
	}
	return n, nil
}

// FilePath resolves a stored file name. Names that are not a single path
// element, and files that do not exist, are not found.
func (s *MediaService) FilePath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

// Remove deletes the metadata and then the file. A file that is already gone
// is not an error.
func (s *MediaService) Remove(ctx context.Context, id models.ID) (*models.Media, error) {
	removed, err := s.Delete(ctx, id)
	if err != nil {
		return removed, err
	}
	if err := os.Remove(filepath.Join(s.dir, cleanName(removed.Filename))); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Error().Err(err).Str("filename", removed.Filename).Msg("failed to delete media file")
		return removed, fmt.Errorf("media %d deleted but its file remains: %w", id, err)
	}
	return removed, nil
}
