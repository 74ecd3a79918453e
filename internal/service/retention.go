package service

import (
	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/quillcms/quill-backend/internal/repository"
)

// DefaultMaxRevisions caps the non-pinned revision history per entity
const DefaultMaxRevisions = 20

// RetentionPolicy evicts the oldest non-pinned revisions once an entity's
// history exceeds the cap. Restore points never count as evictable, so the
// cap is a soft target over non-pinned history, not a hard ceiling.
type RetentionPolicy struct {
	repo         repository.RevisionRepository
	maxRevisions int
}

// NewRetentionPolicy creates a retention policy. max <= 0 falls back to
// DefaultMaxRevisions.
func NewRetentionPolicy(repo repository.RevisionRepository, max int) *RetentionPolicy {
	if max <= 0 {
		max = DefaultMaxRevisions
	}
	return &RetentionPolicy{repo: repo, maxRevisions: max}
}

// MaxRevisions returns the configured cap
func (p *RetentionPolicy) MaxRevisions() int {
	return p.maxRevisions
}

// Enforce deletes the oldest non-restore-point revisions above the cap.
// Best-effort: callers log failures and carry on, the next write retries.
func (p *RetentionPolicy) Enforce(entityType domain.EntityType, entityID uint64) error {
	count, err := p.repo.Count(entityType, entityID)
	if err != nil {
		return err
	}
	if count <= int64(p.maxRevisions) {
		return nil
	}
	excess := int(count) - p.maxRevisions

	revisions, err := p.repo.FindOrdered(entityType, entityID, repository.SortAsc, 0)
	if err != nil {
		return err
	}

	evictable := make([]*domain.Revision, 0, excess)
	for _, rev := range revisions {
		if rev.IsRestorePoint {
			continue
		}
		evictable = append(evictable, rev)
		if len(evictable) == excess {
			break
		}
	}
	if len(evictable) == 0 {
		return nil
	}

	return p.repo.Delete(evictable)
}
