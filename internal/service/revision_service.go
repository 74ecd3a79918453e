package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quillcms/quill-backend/internal/common"
	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/quillcms/quill-backend/internal/repository"
	"github.com/quillcms/quill-backend/pkg/cache"
	"github.com/quillcms/quill-backend/pkg/logger"
	"github.com/quillcms/quill-backend/pkg/similarity"
)

// allocation retries before giving up on a heavily contended chain
const maxAllocAttempts = 3

// RevisionService extends an entity's revision chain and reads it back
type RevisionService interface {
	// CreateRevision snapshots the entity's current state as the next
	// numbered revision and triggers retention for the chain.
	CreateRevision(entity domain.Versioned, data domain.CreateRevisionData) (*domain.Revision, error)
	// GetRevisions returns an entity's revisions, newest first
	GetRevisions(entityType domain.EntityType, entityID uint64, limit int) ([]*domain.Revision, error)
}

type revisionService struct {
	repo      repository.RevisionRepository
	retention *RetentionPolicy
	cache     cache.Service
}

// NewRevisionService creates a RevisionService. cacheService may be nil to
// disable read caching.
func NewRevisionService(repo repository.RevisionRepository, retention *RetentionPolicy, cacheService cache.Service) RevisionService {
	return &revisionService{repo: repo, retention: retention, cache: cacheService}
}

// CreateRevision appends exactly one revision row and never mutates
// existing ones. Numbering reads the chain head and writes head+1; the
// unique index on (entity_type, entity_id, revision_number) rejects a
// concurrent writer that claimed the same number, and the loser re-reads
// and retries.
func (s *revisionService) CreateRevision(entity domain.Versioned, data domain.CreateRevisionData) (*domain.Revision, error) {
	entityType := entity.EntityKind()
	entityID := entity.EntityID()
	if !entityType.Valid() {
		return nil, common.ErrInvalidEntityType
	}

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		prev, err := s.repo.FindLatest(entityType, entityID)
		if err != nil {
			return nil, fmt.Errorf("lookup latest revision: %w", err)
		}

		number := uint(1)
		if prev != nil {
			number = prev.RevisionNumber + 1
		}

		revision := &domain.Revision{
			ID:                uuid.NewString(),
			EntityType:        entityType,
			EntityID:          entityID,
			RevisionNumber:    number,
			AuthorID:          data.AuthorID,
			RevisionType:      data.RevisionType,
			ChangeDescription: data.ChangeDescription,
			IsRestorePoint:    data.IsRestorePoint,
			WordCount:         similarity.WordCount(entity.RawContent()),
			IPAddress:         data.IPAddress,
			UserAgent:         data.UserAgent,
		}
		if err := captureSnapshot(revision, entity); err != nil {
			return nil, err
		}
		if prev != nil {
			revision.Changes = CalculateChanges(prev, revision)
		}

		if err := s.repo.Save(revision); err != nil {
			if errors.Is(err, common.ErrRevisionConflict) {
				continue
			}
			return nil, fmt.Errorf("save revision: %w", err)
		}

		// Retention and cache invalidation are best-effort; the revision is
		// already durable and the next write retries cleanup.
		if err := s.retention.Enforce(entityType, entityID); err != nil {
			logger.WithEntity(string(entityType), entityID).Warn().
				Err(err).Msg("revision retention enforcement failed")
		}
		s.invalidate(entityType, entityID)

		return revision, nil
	}

	return nil, fmt.Errorf("allocate revision number for %s %d: %w",
		entityType, entityID, common.ErrRevisionConflict)
}

func (s *revisionService) GetRevisions(entityType domain.EntityType, entityID uint64, limit int) ([]*domain.Revision, error) {
	if !entityType.Valid() {
		return nil, common.ErrInvalidEntityType
	}
	if limit <= 0 {
		limit = DefaultMaxRevisions
	}

	key := cache.RevisionListKey(string(entityType), entityID, limit)
	if s.cache != nil {
		var cached []*domain.Revision
		if err := s.cache.Get(context.Background(), key, &cached); err == nil {
			return cached, nil
		}
	}

	revisions, err := s.repo.FindOrdered(entityType, entityID, repository.SortDesc, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(context.Background(), key, revisions, cache.TTLRevisionList); err != nil {
			logger.WithEntity(string(entityType), entityID).Warn().
				Err(err).Msg("revision list cache write failed")
		}
	}
	return revisions, nil
}

func (s *revisionService) invalidate(entityType domain.EntityType, entityID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEntity(context.Background(), string(entityType), entityID); err != nil {
		logger.WithEntity(string(entityType), entityID).Warn().
			Err(err).Msg("revision cache invalidation failed")
	}
}

func captureSnapshot(revision *domain.Revision, entity domain.Versioned) error {
	switch e := entity.(type) {
	case *domain.Post:
		revision.PostSnapshot = e.Snapshot()
	case *domain.Page:
		revision.PageSnapshot = e.Snapshot()
	default:
		return common.ErrInvalidEntityType
	}
	return nil
}
