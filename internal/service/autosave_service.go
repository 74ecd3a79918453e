package service

import (
	"encoding/json"
	"reflect"

	"github.com/quillcms/quill-backend/internal/common"
	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/quillcms/quill-backend/internal/repository"
	"github.com/quillcms/quill-backend/pkg/logger"
)

// AutosaveService turns real content changes into autosave revisions and
// deduplicates no-op saves
type AutosaveService interface {
	// AutoSave persists new content and records an autosave revision, or
	// does nothing when the content is unchanged. A missing entity is a
	// caller error and propagates; any other failure degrades to
	// Success=false so an editing session is never interrupted.
	AutoSave(entityType domain.EntityType, entityID uint64, content, authorID string) (*domain.AutoSaveResult, error)
}

type autosaveService struct {
	store     repository.ContentStore
	revisions RevisionService
}

// NewAutosaveService creates a new AutosaveService
func NewAutosaveService(store repository.ContentStore, revisions RevisionService) AutosaveService {
	return &autosaveService{store: store, revisions: revisions}
}

func (s *autosaveService) AutoSave(entityType domain.EntityType, entityID uint64, content, authorID string) (*domain.AutoSaveResult, error) {
	switch entityType {
	case domain.EntityTypePost:
		post, err := s.store.LoadPost(entityID)
		if err != nil {
			return s.degrade(entityType, entityID, err)
		}
		if post == nil {
			return nil, common.ErrEntityNotFound
		}
		if contentEqual(post.Content, content) {
			return &domain.AutoSaveResult{Success: true}, nil
		}
		post.Content = content
		post.LastEditedBy = authorID
		if err := s.store.SavePost(post); err != nil {
			return s.degrade(entityType, entityID, err)
		}
		return s.record(post, authorID)

	case domain.EntityTypePage:
		page, err := s.store.LoadPage(entityID)
		if err != nil {
			return s.degrade(entityType, entityID, err)
		}
		if page == nil {
			return nil, common.ErrEntityNotFound
		}
		if contentEqual(page.Content, content) {
			return &domain.AutoSaveResult{Success: true}, nil
		}
		page.Content = content
		page.LastEditedBy = authorID
		if err := s.store.SavePage(page); err != nil {
			return s.degrade(entityType, entityID, err)
		}
		return s.record(page, authorID)
	}

	return nil, common.ErrInvalidEntityType
}

func (s *autosaveService) record(entity domain.Versioned, authorID string) (*domain.AutoSaveResult, error) {
	revision, err := s.revisions.CreateRevision(entity, domain.CreateRevisionData{
		AuthorID:          authorID,
		RevisionType:      domain.RevisionTypeAutosave,
		ChangeDescription: "Auto-saved content",
		IsRestorePoint:    false,
	})
	if err != nil {
		return s.degrade(entity.EntityKind(), entity.EntityID(), err)
	}
	return &domain.AutoSaveResult{Success: true, RevisionID: revision.ID}, nil
}

func (s *autosaveService) degrade(entityType domain.EntityType, entityID uint64, err error) (*domain.AutoSaveResult, error) {
	logger.WithEntity(string(entityType), entityID).Warn().
		Err(err).Msg("autosave degraded")
	return &domain.AutoSaveResult{Success: false}, nil
}

// contentEqual compares two content payloads structurally: JSON documents
// by parsed value so formatting differences do not count as edits, anything
// else byte for byte.
func contentEqual(stored, incoming string) bool {
	var a, b interface{}
	if json.Unmarshal([]byte(stored), &a) == nil && json.Unmarshal([]byte(incoming), &b) == nil {
		return reflect.DeepEqual(a, b)
	}
	return stored == incoming
}
