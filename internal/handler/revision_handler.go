package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quillcms/quill-backend/internal/common"
	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/quillcms/quill-backend/internal/middleware"
	"github.com/quillcms/quill-backend/internal/repository"
	"github.com/quillcms/quill-backend/internal/service"
)

const (
	defaultRevisionLimit = 20
	maxRevisionLimit     = 100
)

// RevisionHandler exposes the revision engine over HTTP
type RevisionHandler struct {
	revisions service.RevisionService
	autosave  service.AutosaveService
	restore   service.RestoreService
	compare   service.CompareService
	stats     service.StatsService
	store     repository.ContentStore
}

// NewRevisionHandler creates a new RevisionHandler
func NewRevisionHandler(
	revisions service.RevisionService,
	autosave service.AutosaveService,
	restore service.RestoreService,
	compare service.CompareService,
	stats service.StatsService,
	store repository.ContentStore,
) *RevisionHandler {
	return &RevisionHandler{
		revisions: revisions,
		autosave:  autosave,
		restore:   restore,
		compare:   compare,
		stats:     stats,
		store:     store,
	}
}

// CreateRevision handles POST /api/v1/:entityType/:id/revisions
func (h *RevisionHandler) CreateRevision(c *gin.Context) {
	entityType, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	var req struct {
		RevisionType      string `json:"revision_type"`
		ChangeDescription string `json:"change_description"`
		IsRestorePoint    bool   `json:"is_restore_point"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	revisionType := domain.RevisionType(req.RevisionType)
	if req.RevisionType == "" {
		revisionType = domain.RevisionTypeManual
	}
	if !revisionType.Valid() {
		common.ErrorResponse(c, http.StatusBadRequest, "Unknown revision type", nil)
		return
	}

	entity, err := h.loadEntity(entityType, entityID)
	if err != nil {
		h.mapError(c, err, "Failed to load entity")
		return
	}

	revision, err := h.revisions.CreateRevision(entity, domain.CreateRevisionData{
		AuthorID:          middleware.GetUserID(c),
		RevisionType:      revisionType,
		ChangeDescription: req.ChangeDescription,
		IsRestorePoint:    req.IsRestorePoint,
		IPAddress:         c.ClientIP(),
		UserAgent:         c.Request.UserAgent(),
	})
	if err != nil {
		h.mapError(c, err, "Failed to create revision")
		return
	}
	common.CreatedResponse(c, revision)
}

// ListRevisions handles GET /api/v1/:entityType/:id/revisions
func (h *RevisionHandler) ListRevisions(c *gin.Context) {
	entityType, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	limit := defaultRevisionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}
	if limit > maxRevisionLimit {
		limit = maxRevisionLimit
	}

	if _, err := h.loadEntity(entityType, entityID); err != nil {
		h.mapError(c, err, "Failed to load entity")
		return
	}

	revisions, err := h.revisions.GetRevisions(entityType, entityID, limit)
	if err != nil {
		h.mapError(c, err, "Failed to list revisions")
		return
	}
	common.SuccessResponse(c, revisions, &common.Meta{
		EntityType: string(entityType),
		EntityID:   entityID,
		Limit:      limit,
		Total:      int64(len(revisions)),
	})
}

// RestoreRevision handles POST /api/v1/:entityType/:id/revisions/:revisionId/restore
func (h *RevisionHandler) RestoreRevision(c *gin.Context) {
	entityType, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}
	revisionID := c.Param("revisionId")

	entity, err := h.restore.Restore(entityType, entityID, revisionID, middleware.GetUserID(c))
	if err != nil {
		h.mapError(c, err, "Failed to restore revision")
		return
	}
	common.SuccessResponse(c, entity, nil)
}

// AutoSave handles POST /api/v1/:entityType/:id/autosave
func (h *RevisionHandler) AutoSave(c *gin.Context) {
	entityType, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.autosave.AutoSave(entityType, entityID, req.Content, middleware.GetUserID(c))
	if err != nil {
		h.mapError(c, err, "Failed to autosave")
		return
	}
	common.SuccessResponse(c, result, nil)
}

// CompareRevisions handles GET /api/v1/:entityType/:id/revisions/compare
func (h *RevisionHandler) CompareRevisions(c *gin.Context) {
	entityType, _, ok := h.entityParams(c)
	if !ok {
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "Both from and to revision ids are required", nil)
		return
	}

	result, err := h.compare.Compare(entityType, from, to)
	if err != nil {
		h.mapError(c, err, "Failed to compare revisions")
		return
	}
	common.SuccessResponse(c, result, nil)
}

// RevisionStats handles GET /api/v1/:entityType/:id/revisions/stats
func (h *RevisionHandler) RevisionStats(c *gin.Context) {
	entityType, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	stats, err := h.stats.Stats(entityType, entityID)
	if err != nil {
		h.mapError(c, err, "Failed to aggregate revision stats")
		return
	}
	common.SuccessResponse(c, stats, nil)
}

func (h *RevisionHandler) entityParams(c *gin.Context) (domain.EntityType, uint64, bool) {
	entityType := domain.EntityType(c.Param("entityType"))
	if !entityType.Valid() {
		common.ErrorResponse(c, http.StatusBadRequest, "Unknown entity type", nil)
		return "", 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid entity id", err)
		return "", 0, false
	}
	return entityType, id, true
}

func (h *RevisionHandler) loadEntity(entityType domain.EntityType, entityID uint64) (domain.Versioned, error) {
	switch entityType {
	case domain.EntityTypePost:
		post, err := h.store.LoadPost(entityID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, common.ErrEntityNotFound
		}
		return post, nil
	case domain.EntityTypePage:
		page, err := h.store.LoadPage(entityID)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return nil, common.ErrEntityNotFound
		}
		return page, nil
	}
	return nil, common.ErrInvalidEntityType
}

func (h *RevisionHandler) mapError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, common.ErrEntityNotFound), errors.Is(err, common.ErrRevisionNotFound):
		common.ErrorResponse(c, http.StatusNotFound, message, err)
	case errors.Is(err, common.ErrInvalidEntityType), errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, message, err)
	case errors.Is(err, common.ErrRevisionConflict):
		common.ErrorResponse(c, http.StatusConflict, message, err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}
