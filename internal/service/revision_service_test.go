package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/quillcms/quill-backend/internal/common"
	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/quillcms/quill-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestRevisionService(repo *mockRevisionRepo) RevisionService {
	return NewRevisionService(repo, NewRetentionPolicy(repo, 20), nil)
}

func TestCreateRevision_FirstRevision(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := newTestRevisionService(repo)

	repo.On("FindLatest", domain.EntityTypePost, uint64(1)).Return(nil, nil)
	var saved *domain.Revision
	repo.On("Save", mock.AnythingOfType("*domain.Revision")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*domain.Revision) }).
		Return(nil)
	repo.On("Count", domain.EntityTypePost, uint64(1)).Return(int64(1), nil)

	post := &domain.Post{ID: 1, Title: "Hello", Content: "<p>one two three</p>", Status: "draft"}
	revision, err := svc.CreateRevision(post, domain.CreateRevisionData{
		AuthorID:       "alice",
		RevisionType:   domain.RevisionTypeManual,
		IsRestorePoint: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, saved, revision)
	assert.NotEmpty(t, revision.ID)
	assert.Equal(t, uint(1), revision.RevisionNumber)
	assert.Equal(t, domain.EntityTypePost, revision.EntityType)
	assert.Equal(t, "alice", revision.AuthorID)
	assert.True(t, revision.IsRestorePoint)
	assert.Nil(t, revision.Changes, "first revision has no delta")
	assert.Equal(t, 3, revision.WordCount)
	assert.NotNil(t, revision.PostSnapshot)
	assert.Equal(t, "Hello", revision.PostSnapshot.Title)
	repo.AssertExpectations(t)
}

func TestCreateRevision_ComputesChangesAgainstLatest(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := newTestRevisionService(repo)

	prev := &domain.Revision{
		EntityType:     domain.EntityTypePost,
		EntityID:       1,
		RevisionNumber: 4,
		PostSnapshot:   &domain.PostSnapshot{Title: "A", Content: "same", Status: "draft"},
	}
	repo.On("FindLatest", domain.EntityTypePost, uint64(1)).Return(prev, nil)
	var saved *domain.Revision
	repo.On("Save", mock.AnythingOfType("*domain.Revision")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*domain.Revision) }).
		Return(nil)
	repo.On("Count", domain.EntityTypePost, uint64(1)).Return(int64(5), nil)

	post := &domain.Post{ID: 1, Title: "B", Content: "same", Status: "draft"}
	revision, err := svc.CreateRevision(post, domain.CreateRevisionData{
		AuthorID:     "alice",
		RevisionType: domain.RevisionTypeManual,
	})

	assert.NoError(t, err)
	assert.Equal(t, uint(5), revision.RevisionNumber)
	assert.NotNil(t, saved.Changes)
	assert.Equal(t, "A", saved.Changes.Post.Title.From)
	assert.Equal(t, "B", saved.Changes.Post.Title.To)
	assert.Nil(t, saved.Changes.Post.Content)
}

func TestCreateRevision_RetriesOnNumberConflict(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := newTestRevisionService(repo)

	// a concurrent writer claims number 2 between our read and write
	repo.On("FindLatest", domain.EntityTypePost, uint64(1)).
		Return(&domain.Revision{RevisionNumber: 1, PostSnapshot: &domain.PostSnapshot{}}, nil).Once()
	repo.On("Save", mock.AnythingOfType("*domain.Revision")).
		Return(fmt.Errorf("revision 2: %w", common.ErrRevisionConflict)).Once()

	repo.On("FindLatest", domain.EntityTypePost, uint64(1)).
		Return(&domain.Revision{RevisionNumber: 2, PostSnapshot: &domain.PostSnapshot{}}, nil).Once()
	repo.On("Save", mock.AnythingOfType("*domain.Revision")).Return(nil).Once()
	repo.On("Count", domain.EntityTypePost, uint64(1)).Return(int64(3), nil)

	post := &domain.Post{ID: 1, Title: "T"}
	revision, err := svc.CreateRevision(post, domain.CreateRevisionData{RevisionType: domain.RevisionTypeManual})

	assert.NoError(t, err)
	assert.Equal(t, uint(3), revision.RevisionNumber)
	repo.AssertExpectations(t)
}

func TestCreateRevision_GivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := newTestRevisionService(repo)

	repo.On("FindLatest", domain.EntityTypePost, uint64(1)).
		Return(&domain.Revision{RevisionNumber: 1, PostSnapshot: &domain.PostSnapshot{}}, nil)
	repo.On("Save", mock.AnythingOfType("*domain.Revision")).
		Return(fmt.Errorf("revision 2: %w", common.ErrRevisionConflict))

	post := &domain.Post{ID: 1}
	_, err := svc.CreateRevision(post, domain.CreateRevisionData{RevisionType: domain.RevisionTypeManual})

	assert.ErrorIs(t, err, common.ErrRevisionConflict)
}

func TestCreateRevision_RetentionFailureDoesNotFailCreate(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := newTestRevisionService(repo)

	repo.On("FindLatest", domain.EntityTypePost, uint64(1)).Return(nil, nil)
	repo.On("Save", mock.AnythingOfType("*domain.Revision")).Return(nil)
	repo.On("Count", domain.EntityTypePost, uint64(1)).Return(int64(0), errors.New("cleanup backend down"))

	post := &domain.Post{ID: 1}
	revision, err := svc.CreateRevision(post, domain.CreateRevisionData{RevisionType: domain.RevisionTypeManual})

	assert.NoError(t, err)
	assert.NotNil(t, revision)
}

func TestCreateRevision_UnknownEntityKind(t *testing.T) {
	svc := newTestRevisionService(new(mockRevisionRepo))

	_, err := svc.CreateRevision(unknownEntity{}, domain.CreateRevisionData{})

	assert.ErrorIs(t, err, common.ErrInvalidEntityType)
}

type unknownEntity struct{}

func (unknownEntity) EntityKind() domain.EntityType { return "widget" }
func (unknownEntity) EntityID() uint64              { return 1 }
func (unknownEntity) RawContent() string            { return "" }

func TestGetRevisions_NewestFirst(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := newTestRevisionService(repo)

	revs := []*domain.Revision{
		{RevisionNumber: 3},
		{RevisionNumber: 2},
	}
	repo.On("FindOrdered", domain.EntityTypePost, uint64(1), repository.SortDesc, 2).Return(revs, nil)

	result, err := svc.GetRevisions(domain.EntityTypePost, 1, 2)

	assert.NoError(t, err)
	assert.Equal(t, revs, result)
	repo.AssertExpectations(t)
}

func TestGetRevisions_DefaultLimit(t *testing.T) {
	repo := new(mockRevisionRepo)
	svc := newTestRevisionService(repo)

	repo.On("FindOrdered", domain.EntityTypePost, uint64(1), repository.SortDesc, DefaultMaxRevisions).
		Return([]*domain.Revision{}, nil)

	_, err := svc.GetRevisions(domain.EntityTypePost, 1, 0)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
