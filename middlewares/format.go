package middlewares

import (
	"errors"
	"net/http"

	"ClinicDesk/repositories"
	"ClinicDesk/services"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// StatusOf classifies err into the HTTP status it is reported with.
func StatusOf(err error) int {
	var verrs validation.Errors
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, repositories.ErrInvalidFilter),
		errors.Is(err, services.ErrEmailExists),
		errors.Is(err, services.ErrNoGuestSession),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidResetCode):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrResetUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// HTTPError writes {"error": message} with the status err classifies as and
// attaches err to the context for the request log.
func HTTPError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(StatusOf(err), gin.H{"error": err.Error()})
}

// AbortWithError stops the chain with {"error": message}.
func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
