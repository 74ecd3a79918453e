package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quillcms/quill-backend/internal/common"
	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/quillcms/quill-backend/internal/repository"
	"github.com/stretchr/testify/mock"
)

// --- Mock RevisionRepository ---

type mockRevisionRepo struct {
	mock.Mock
}

func (m *mockRevisionRepo) FindLatest(entityType domain.EntityType, entityID uint64) (*domain.Revision, error) {
	args := m.Called(entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision), args.Error(1)
}

func (m *mockRevisionRepo) Count(entityType domain.EntityType, entityID uint64) (int64, error) {
	args := m.Called(entityType, entityID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRevisionRepo) FindOrdered(entityType domain.EntityType, entityID uint64, order repository.SortOrder, limit int) ([]*domain.Revision, error) {
	args := m.Called(entityType, entityID, order, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Revision), args.Error(1)
}

func (m *mockRevisionRepo) FindByID(entityType domain.EntityType, entityID uint64, revisionID string) (*domain.Revision, error) {
	args := m.Called(entityType, entityID, revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision), args.Error(1)
}

func (m *mockRevisionRepo) FindByRevisionID(entityType domain.EntityType, revisionID string) (*domain.Revision, error) {
	args := m.Called(entityType, revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision), args.Error(1)
}

func (m *mockRevisionRepo) Save(revision *domain.Revision) error {
	return m.Called(revision).Error(0)
}

func (m *mockRevisionRepo) Delete(revisions []*domain.Revision) error {
	return m.Called(revisions).Error(0)
}

// --- Mock ContentStore ---

type mockContentStore struct {
	mock.Mock
}

func (m *mockContentStore) LoadPost(id uint64) (*domain.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockContentStore) SavePost(post *domain.Post) error {
	return m.Called(post).Error(0)
}

func (m *mockContentStore) LoadPage(id uint64) (*domain.Page, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

func (m *mockContentStore) SavePage(page *domain.Page) error {
	return m.Called(page).Error(0)
}

// --- Mock RevisionService ---

type mockRevisionService struct {
	mock.Mock
}

func (m *mockRevisionService) CreateRevision(entity domain.Versioned, data domain.CreateRevisionData) (*domain.Revision, error) {
	args := m.Called(entity, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision), args.Error(1)
}

func (m *mockRevisionService) GetRevisions(entityType domain.EntityType, entityID uint64, limit int) ([]*domain.Revision, error) {
	args := m.Called(entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Revision), args.Error(1)
}

// --- In-memory fakes ---
//
// The fakes back the flow tests where real chain semantics and call
// ordering matter. An optional shared op log records the write sequence.

type memRevisionRepo struct {
	mu        sync.Mutex
	revisions []*domain.Revision
	oplog     *[]string
	failSaves bool
	clock     time.Time
}

func newMemRevisionRepo(oplog *[]string) *memRevisionRepo {
	return &memRevisionRepo{oplog: oplog, clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *memRevisionRepo) logOp(op string) {
	if r.oplog != nil {
		*r.oplog = append(*r.oplog, op)
	}
}

func (r *memRevisionRepo) forEntity(entityType domain.EntityType, entityID uint64) []*domain.Revision {
	var out []*domain.Revision
	for _, rev := range r.revisions {
		if rev.EntityType == entityType && rev.EntityID == entityID {
			out = append(out, rev)
		}
	}
	return out
}

func (r *memRevisionRepo) FindLatest(entityType domain.EntityType, entityID uint64) (*domain.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Revision
	for _, rev := range r.forEntity(entityType, entityID) {
		if latest == nil || rev.RevisionNumber > latest.RevisionNumber {
			latest = rev
		}
	}
	return latest, nil
}

func (r *memRevisionRepo) Count(entityType domain.EntityType, entityID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.forEntity(entityType, entityID))), nil
}

func (r *memRevisionRepo) FindOrdered(entityType domain.EntityType, entityID uint64, order repository.SortOrder, limit int) ([]*domain.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	revs := r.forEntity(entityType, entityID)
	sort.Slice(revs, func(i, j int) bool {
		if order == repository.SortDesc {
			return revs[i].RevisionNumber > revs[j].RevisionNumber
		}
		return revs[i].RevisionNumber < revs[j].RevisionNumber
	})
	if limit > 0 && len(revs) > limit {
		revs = revs[:limit]
	}
	return revs, nil
}

func (r *memRevisionRepo) FindByID(entityType domain.EntityType, entityID uint64, revisionID string) (*domain.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.forEntity(entityType, entityID) {
		if rev.ID == revisionID {
			return rev, nil
		}
	}
	return nil, nil
}

func (r *memRevisionRepo) FindByRevisionID(entityType domain.EntityType, revisionID string) (*domain.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.revisions {
		if rev.EntityType == entityType && rev.ID == revisionID {
			return rev, nil
		}
	}
	return nil, nil
}

func (r *memRevisionRepo) Save(revision *domain.Revision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSaves {
		return fmt.Errorf("storage unavailable")
	}
	for _, rev := range r.revisions {
		if rev.EntityType == revision.EntityType &&
			rev.EntityID == revision.EntityID &&
			rev.RevisionNumber == revision.RevisionNumber {
			return fmt.Errorf("revision %d: %w", revision.RevisionNumber, common.ErrRevisionConflict)
		}
	}
	if revision.CreatedAt.IsZero() {
		r.clock = r.clock.Add(time.Minute)
		revision.CreatedAt = r.clock
	}
	r.revisions = append(r.revisions, revision)
	r.logOp("SaveRevision")
	return nil
}

func (r *memRevisionRepo) Delete(revisions []*domain.Revision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doomed := make(map[string]bool, len(revisions))
	for _, rev := range revisions {
		doomed[rev.ID] = true
	}
	var kept []*domain.Revision
	for _, rev := range r.revisions {
		if !doomed[rev.ID] {
			kept = append(kept, rev)
		}
	}
	r.revisions = kept
	r.logOp("DeleteRevisions")
	return nil
}

type memContentStore struct {
	mu    sync.Mutex
	posts map[uint64]*domain.Post
	pages map[uint64]*domain.Page
	oplog *[]string
}

func newMemContentStore(oplog *[]string) *memContentStore {
	return &memContentStore{
		posts: make(map[uint64]*domain.Post),
		pages: make(map[uint64]*domain.Page),
		oplog: oplog,
	}
}

func (s *memContentStore) logOp(op string) {
	if s.oplog != nil {
		*s.oplog = append(*s.oplog, op)
	}
}

func (s *memContentStore) LoadPost(id uint64) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (s *memContentStore) SavePost(post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *post
	s.posts[post.ID] = &copied
	s.logOp("SavePost")
	return nil
}

func (s *memContentStore) LoadPage(id uint64) (*domain.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[id]
	if !ok {
		return nil, nil
	}
	copied := *page
	return &copied, nil
}

func (s *memContentStore) SavePage(page *domain.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *page
	s.pages[page.ID] = &copied
	s.logOp("SavePage")
	return nil
}
