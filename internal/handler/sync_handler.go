package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
	"github.com/universal-yoga/yoga-admin-api/internal/service"
	appErrors "github.com/universal-yoga/yoga-admin-api/pkg/errors"
	"github.com/universal-yoga/yoga-admin-api/pkg/netcheck"
	"github.com/universal-yoga/yoga-admin-api/pkg/response"
)

// Upload modes accepted by the sync endpoint.
const (
	ModeAppend  = "append"
	ModeReplace = "replace"
)

// syncCatalogSource reads the full local catalog for snapshotting.
type syncCatalogSource interface {
	GetAll(ctx context.Context) ([]models.ClassDefinition, error)
}

// syncOccurrenceSource reads occurrences for a definition.
type syncOccurrenceSource interface {
	GetByClassID(ctx context.Context, classID int64) ([]models.ClassOccurrence, error)
}

// UploadRequest selects the sync mode for a run.
type UploadRequest struct {
	Mode string `json:"mode"`
}

// UploadResult is the aggregate outcome of one sync run.
type UploadResult struct {
	Mode    string `json:"mode"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// SyncStatus describes current connectivity as seen by the probe.
type SyncStatus struct {
	Available bool   `json:"available"`
	Online    bool   `json:"online"`
	Quality   string `json:"quality"`
}

// SyncHandler drives the bulk upload engine over HTTP.
type SyncHandler struct {
	uploads     *service.UploadService
	classes     syncCatalogSource
	occurrences syncOccurrenceSource
	checker     *netcheck.Checker
	waitTimeout time.Duration
}

// NewSyncHandler constructs a new SyncHandler.
func NewSyncHandler(uploads *service.UploadService, classes syncCatalogSource, occurrences syncOccurrenceSource, checker *netcheck.Checker, waitTimeout time.Duration) *SyncHandler {
	if waitTimeout <= 0 {
		waitTimeout = 2 * time.Minute
	}
	return &SyncHandler{
		uploads:     uploads,
		classes:     classes,
		occurrences: occurrences,
		checker:     checker,
		waitTimeout: waitTimeout,
	}
}

// Upload godoc
// @Summary Upload the local catalog to the remote store
// @Tags Sync
// @Accept json
// @Produce json
// @Param payload body handler.UploadRequest true "Sync mode: append or replace"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sync/upload [post]
func (h *SyncHandler) Upload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sync payload"))
		return
	}
	if req.Mode == "" {
		req.Mode = ModeAppend
	}
	if req.Mode != ModeAppend && req.Mode != ModeReplace {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "mode must be append or replace"))
		return
	}

	records, err := h.snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	type outcome struct {
		ok     bool
		detail string
	}
	done := make(chan outcome, 1)
	cb := service.CallbackFuncs{
		Success: func() { done <- outcome{ok: true} },
		Failure: func(detail string) { done <- outcome{detail: detail} },
	}

	ctx := context.WithoutCancel(c.Request.Context())
	if req.Mode == ModeReplace {
		h.uploads.ClearAndUpload(ctx, records, cb)
	} else {
		h.uploads.Upload(ctx, records, cb)
	}

	select {
	case out := <-done:
		if !out.ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUpload, out.detail))
			return
		}
		response.JSON(c, http.StatusOK, UploadResult{
			Mode:    req.Mode,
			Total:   len(records),
			Message: "Upload completed successfully",
		}, nil)
	case <-time.After(h.waitTimeout):
		response.Error(c, appErrors.Clone(appErrors.ErrUpload, "upload timed out"))
	}
}

// Status godoc
// @Summary Report connectivity as seen by the sync engine
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, SyncStatus{
		Available: h.checker.Available(),
		Online:    h.checker.Online(),
		Quality:   h.checker.Quality(),
	}, nil)
}

func (h *SyncHandler) snapshot(ctx context.Context) ([]models.RemoteRecord, error) {
	defs, err := h.classes.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read local catalog")
	}
	records := make([]models.RemoteRecord, 0, len(defs))
	for _, def := range defs {
		occs, err := h.occurrences.GetByClassID(ctx, def.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read occurrences")
		}
		records = append(records, models.NewRemoteRecord(def, occs))
	}
	return records, nil
}
