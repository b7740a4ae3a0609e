package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/universal-yoga/yoga-admin-api/internal/service"
	appErrors "github.com/universal-yoga/yoga-admin-api/pkg/errors"
	"github.com/universal-yoga/yoga-admin-api/pkg/response"
)

// OccurrenceHandler wires occurrence services to HTTP routes.
type OccurrenceHandler struct {
	occurrences *service.OccurrenceService
}

// NewOccurrenceHandler constructs a new OccurrenceHandler.
func NewOccurrenceHandler(occurrences *service.OccurrenceService) *OccurrenceHandler {
	return &OccurrenceHandler{occurrences: occurrences}
}

// ListByClass godoc
// @Summary List occurrences of a class, soonest first
// @Tags Occurrences
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/occurrences [get]
func (h *OccurrenceHandler) ListByClass(c *gin.Context) {
	classID, ok := pathID(c)
	if !ok {
		return
	}
	occs, err := h.occurrences.ListByClass(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occs, nil)
}

// Create godoc
// @Summary Schedule an occurrence for a class
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path int true "Class ID"
// @Param payload body service.CreateOccurrenceRequest true "Occurrence payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/occurrences [post]
func (h *OccurrenceHandler) Create(c *gin.Context) {
	classID, ok := pathID(c)
	if !ok {
		return
	}
	var req service.CreateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid occurrence payload"))
		return
	}
	occ, warning, err := h.occurrences.Create(c.Request.Context(), classID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, occ, nil, warningMeta(warning))
}

// Get godoc
// @Summary Get occurrence detail
// @Tags Occurrences
// @Produce json
// @Param id path int true "Occurrence ID"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id} [get]
func (h *OccurrenceHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	occ, err := h.occurrences.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occ, nil)
}

// Update godoc
// @Summary Update an occurrence
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path int true "Occurrence ID"
// @Param payload body service.UpdateOccurrenceRequest true "Occurrence payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id} [put]
func (h *OccurrenceHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid occurrence payload"))
		return
	}
	occ, warning, err := h.occurrences.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occ, nil, warningMeta(warning))
}

// Delete godoc
// @Summary Delete an occurrence
// @Tags Occurrences
// @Param id path int true "Occurrence ID"
// @Success 204
// @Router /occurrences/{id} [delete]
func (h *OccurrenceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.occurrences.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteByClass godoc
// @Summary Delete every occurrence of a class
// @Tags Occurrences
// @Param id path int true "Class ID"
// @Success 204
// @Router /classes/{id}/occurrences [delete]
func (h *OccurrenceHandler) DeleteByClass(c *gin.Context) {
	classID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.occurrences.DeleteByClass(c.Request.Context(), classID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func warningMeta(warning string) map[string]interface{} {
	if warning == "" {
		return nil
	}
	return map[string]interface{}{"warning": warning}
}
