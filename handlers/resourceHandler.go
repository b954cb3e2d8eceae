package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"ClinicDesk/middlewares"
	"ClinicDesk/models"
	"ClinicDesk/services"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// ResourceHandler serves the list/get/create/update/delete routes of one
// entity.
type ResourceHandler[T models.Entity] struct {
	service *services.ResourceService[T]
	entity  string
}

func NewResourceHandler[T models.Entity](service *services.ResourceService[T], entity string) *ResourceHandler[T] {
	return &ResourceHandler[T]{service: service, entity: entity}
}

// readBody returns the request body with a {"formData": {...}} wrapper
// removed.
func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", services.ErrInvalidInput, err)
	}
	if inner := gjson.GetBytes(body, "formData"); inner.IsObject() {
		return []byte(inner.Raw), nil
	}
	return body, nil
}

// pathID parses an id path parameter. A malformed id answers 404 since no
// record can have it.
func pathID(c *gin.Context, param, entity string) (models.ID, bool) {
	id, err := models.ParseID(c.Param(param))
	if err != nil {
		notFound(c, entity)
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context, entity string) {
	middlewares.RespondJSON(c, gin.H{"error": entity + " not found"}, http.StatusNotFound)
}

// fail reports err, naming the entity when it was not found.
func fail(c *gin.Context, entity string, err error) {
	if errors.Is(err, services.ErrNotFound) {
		_ = c.Error(err)
		notFound(c, entity)
		return
	}
	middlewares.HTTPError(c, err)
}

func (h *ResourceHandler[T]) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, h.entity, err)
		return
	}
	middlewares.RespondJSON(c, items, http.StatusOK)
}

func (h *ResourceHandler[T]) Get(c *gin.Context) {
	id, ok := pathID(c, "id", h.entity)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.entity, err)
		return
	}
	middlewares.RespondJSON(c, item, http.StatusOK)
}

func (h *ResourceHandler[T]) Create(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		fail(c, h.entity, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), body)
	if err != nil {
		fail(c, h.entity, err)
		return
	}
	middlewares.RespondJSON(c, item, http.StatusCreated)
}

func (h *ResourceHandler[T]) Update(c *gin.Context) {
	id, ok := pathID(c, "id", h.entity)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		fail(c, h.entity, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, body)
	if err != nil {
		fail(c, h.entity, err)
		return
	}
	middlewares.RespondJSON(c, item, http.StatusOK)
}

func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", h.entity)
	if !ok {
		return
	}
	if _, err := h.service.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.entity, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{"message": h.entity + " deleted"}, http.StatusOK)
}
