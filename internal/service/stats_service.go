package service

import (
	"context"

	"github.com/quillcms/quill-backend/internal/common"
	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/quillcms/quill-backend/internal/repository"
	"github.com/quillcms/quill-backend/pkg/cache"
	"github.com/quillcms/quill-backend/pkg/logger"
)

// StatsService aggregates analytics over an entity's revision history
type StatsService interface {
	Stats(entityType domain.EntityType, entityID uint64) (*domain.RevisionStats, error)
}

type statsService struct {
	repo  repository.RevisionRepository
	cache cache.Service
}

// NewStatsService creates a StatsService. cacheService may be nil to
// disable caching.
func NewStatsService(repo repository.RevisionRepository, cacheService cache.Service) StatsService {
	return &statsService{repo: repo, cache: cacheService}
}

func (s *statsService) Stats(entityType domain.EntityType, entityID uint64) (*domain.RevisionStats, error) {
	if !entityType.Valid() {
		return nil, common.ErrInvalidEntityType
	}

	key := cache.StatsKey(string(entityType), entityID)
	if s.cache != nil {
		var cached domain.RevisionStats
		if err := s.cache.Get(context.Background(), key, &cached); err == nil {
			return &cached, nil
		}
	}

	revisions, err := s.repo.FindOrdered(entityType, entityID, repository.SortAsc, 0)
	if err != nil {
		return nil, err
	}

	stats := aggregate(revisions)

	if s.cache != nil {
		if err := s.cache.Set(context.Background(), key, stats, cache.TTLStats); err != nil {
			logger.WithEntity(string(entityType), entityID).Warn().
				Err(err).Msg("revision stats cache write failed")
		}
	}
	return stats, nil
}

func aggregate(revisions []*domain.Revision) *domain.RevisionStats {
	stats := &domain.RevisionStats{TotalRevisions: len(revisions)}

	authorCounts := make(map[string]int)
	for _, rev := range revisions {
		switch rev.RevisionType {
		case domain.RevisionTypeManual:
			stats.ManualRevisions++
		case domain.RevisionTypeAutosave:
			stats.AutosaveRevisions++
		}
		if rev.IsRestorePoint {
			stats.RestorePoints++
		}
		authorCounts[rev.AuthorID]++
	}

	if len(revisions) >= 2 {
		var totalMinutes float64
		for i := 1; i < len(revisions); i++ {
			totalMinutes += revisions[i].CreatedAt.Sub(revisions[i-1].CreatedAt).Minutes()
		}
		stats.AverageMinutesBetween = totalMinutes / float64(len(revisions)-1)
	}

	// Ties break to the lexicographically smallest author id so the result
	// is stable across runs.
	best, bestCount := "", 0
	for author, count := range authorCounts {
		if count > bestCount || (count == bestCount && (best == "" || author < best)) {
			best, bestCount = author, count
		}
	}
	stats.MostActiveAuthor = best

	return stats
}
