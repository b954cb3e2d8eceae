package handlers

import (
	"errors"
	"net/http"

	"ClinicDesk/middlewares"
	"ClinicDesk/models"
	"ClinicDesk/services"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file limit for the other form
// parts and boundaries.
const multipartOverhead = 1 << 20

type MediaHandler struct {
	*ResourceHandler[*models.Media]
	media *services.MediaService
}

func NewMediaHandler(service *services.MediaService) *MediaHandler {
	return &MediaHandler{
		ResourceHandler: NewResourceHandler(service.ResourceService, "Media"),
		media:           service,
	}
}

// Upload stores the "file" part of a multipart form together with the
// optional patientId, treatmentId and casesheetId fields.
func (h *MediaHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.media.MaxBytes()+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			middlewares.HTTPError(c, services.ErrFileTooLarge)
			return
		}
		middlewares.RespondJSON(c, gin.H{"error": "No file uploaded"}, http.StatusBadRequest)
		return
	}
	f, err := fh.Open()
	if err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	defer f.Close()

	media, err := h.media.Upload(c.Request.Context(), services.Upload{
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Body:         f,
		PatientID:    c.PostForm("patientId"),
		TreatmentID:  c.PostForm("treatmentId"),
		CasesheetID:  c.PostForm("casesheetId"),
	})
	if err != nil {
		fail(c, "Media", err)
		return
	}
	middlewares.RespondJSON(c, media, http.StatusCreated)
}

// Serve streams a stored file by name.
func (h *MediaHandler) Serve(c *gin.Context) {
	path, err := h.media.FilePath(c.Param("filename"))
	if err != nil {
		fail(c, "File", err)
		return
	}
	c.File(path)
}

// Delete removes the metadata and the file.
func (h *MediaHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "Media")
	if !ok {
		return
	}
	if _, err := h.media.Remove(c.Request.Context(), id); err != nil {
		fail(c, "Media", err)
		return
	}
	middlewares.RespondJSON(c, gin.H{"message": "Media deleted"}, http.StatusOK)
}
