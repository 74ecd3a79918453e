package repository

import (
	"errors"
	"fmt"

	"github.com/quillcms/quill-backend/internal/common"
	"github.com/quillcms/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// SortOrder controls revision enumeration direction
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// RevisionRepository handles revision record persistence. Absence is
// reported as (nil, nil) from the finders; gorm error types never cross
// this boundary.
type RevisionRepository interface {
	// FindLatest returns the highest-numbered revision for an entity, or nil
	FindLatest(entityType domain.EntityType, entityID uint64) (*domain.Revision, error)
	// Count returns the total number of revisions for an entity
	Count(entityType domain.EntityType, entityID uint64) (int64, error)
	// FindOrdered returns an entity's revisions ordered by revision number.
	// limit <= 0 returns all of them.
	FindOrdered(entityType domain.EntityType, entityID uint64, order SortOrder, limit int) ([]*domain.Revision, error)
	// FindByID returns a revision by id, constrained to the given entity
	FindByID(entityType domain.EntityType, entityID uint64, revisionID string) (*domain.Revision, error)
	// FindByRevisionID returns a revision by id within an entity kind
	FindByRevisionID(entityType domain.EntityType, revisionID string) (*domain.Revision, error)
	// Save persists a new revision. A concurrent writer that already claimed
	// the same revision number surfaces as common.ErrRevisionConflict.
	Save(revision *domain.Revision) error
	// Delete removes the given revisions
	Delete(revisions []*domain.Revision) error
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) FindLatest(entityType domain.EntityType, entityID uint64) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("revision_number DESC").
		First(&revision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) Count(entityType domain.EntityType, entityID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Revision{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Count(&count).Error
	return count, err
}

func (r *revisionRepository) FindOrdered(entityType domain.EntityType, entityID uint64, order SortOrder, limit int) ([]*domain.Revision, error) {
	var revisions []*domain.Revision
	query := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order(fmt.Sprintf("revision_number %s", order))
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&revisions).Error
	if err != nil {
		return nil, err
	}
	return revisions, nil
}

func (r *revisionRepository) FindByID(entityType domain.EntityType, entityID uint64, revisionID string) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.Where("id = ? AND entity_type = ? AND entity_id = ?", revisionID, entityType, entityID).
		First(&revision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) FindByRevisionID(entityType domain.EntityType, revisionID string) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.Where("id = ? AND entity_type = ?", revisionID, entityType).
		First(&revision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) Save(revision *domain.Revision) error {
	err := r.db.Create(revision).Error
	if err != nil {
		// Requires TranslateError on the gorm session; the unique index on
		// (entity_type, entity_id, revision_number) rejects the loser of a
		// concurrent allocation race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("revision %d for %s %d: %w",
				revision.RevisionNumber, revision.EntityType, revision.EntityID, common.ErrRevisionConflict)
		}
		return err
	}
	return nil
}

func (r *revisionRepository) Delete(revisions []*domain.Revision) error {
	if len(revisions) == 0 {
		return nil
	}
	ids := make([]string, len(revisions))
	for i, rev := range revisions {
		ids[i] = rev.ID
	}
	return r.db.Where("id IN ?", ids).Delete(&domain.Revision{}).Error
}
