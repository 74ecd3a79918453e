package service

import (
	"fmt"
	"strings"

	"github.com/quillcms/quill-backend/internal/common"
	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/quillcms/quill-backend/internal/repository"
	"github.com/quillcms/quill-backend/pkg/similarity"
)

// comparison field order, also the order fields appear in the summary
var compareFields = []string{"title", "content", "status", "excerpt"}

// CompareService computes a structured diff and a similarity score between
// two arbitrary revisions of the same entity kind
type CompareService interface {
	Compare(entityType domain.EntityType, revisionID1, revisionID2 string) (*domain.ComparisonResult, error)
}

type compareService struct {
	repo repository.RevisionRepository
}

// NewCompareService creates a new CompareService
func NewCompareService(repo repository.RevisionRepository) CompareService {
	return &compareService{repo: repo}
}

func (s *compareService) Compare(entityType domain.EntityType, revisionID1, revisionID2 string) (*domain.ComparisonResult, error) {
	if !entityType.Valid() {
		return nil, common.ErrInvalidEntityType
	}

	r1, err := s.repo.FindByRevisionID(entityType, revisionID1)
	if err != nil {
		return nil, err
	}
	if r1 == nil {
		return nil, fmt.Errorf("revision %s: %w", revisionID1, common.ErrRevisionNotFound)
	}
	r2, err := s.repo.FindByRevisionID(entityType, revisionID2)
	if err != nil {
		return nil, err
	}
	if r2 == nil {
		return nil, fmt.Errorf("revision %s: %w", revisionID2, common.ErrRevisionNotFound)
	}

	title1, content1, excerpt1, status1 := r1.CoreFields()
	title2, content2, excerpt2, status2 := r2.CoreFields()
	values := map[string][2]string{
		"title":   {title1, title2},
		"content": {content1, content2},
		"status":  {status1, status2},
		"excerpt": {excerpt1, excerpt2},
	}

	changes := make(map[string]domain.FieldDiff)
	var summaryParts []string
	for _, field := range compareFields {
		from, to := values[field][0], values[field][1]
		if from == to {
			continue
		}
		diff := domain.FieldDiff{From: from, To: to, Type: diffType(from, to)}
		changes[field] = diff
		summaryParts = append(summaryParts, fmt.Sprintf("%s %s", field, diff.Type))
	}

	summary := "No changes detected"
	if len(summaryParts) > 0 {
		summary = strings.Join(summaryParts, ", ")
	}

	return &domain.ComparisonResult{
		Changes: changes,
		Summary: summary,
		Similarity: similarity.Score(
			similarity.ExtractText(content1),
			similarity.ExtractText(content2),
		),
	}, nil
}

func diffType(from, to string) string {
	switch {
	case from == "" && to != "":
		return domain.DiffAdded
	case from != "" && to == "":
		return domain.DiffRemoved
	default:
		return domain.DiffModified
	}
}
