package repository

import (
	"errors"

	"github.com/quillcms/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// ContentStore loads and saves the live content entities that own revision
// chains. The entities themselves belong to the host application; the
// revision engine only reads them for snapshots and writes them back on
// autosave and restore.
type ContentStore interface {
	LoadPost(id uint64) (*domain.Post, error)
	SavePost(post *domain.Post) error
	LoadPage(id uint64) (*domain.Page, error)
	SavePage(page *domain.Page) error
}

type contentStore struct {
	db *gorm.DB
}

// NewContentStore creates a gorm-backed ContentStore
func NewContentStore(db *gorm.DB) ContentStore {
	return &contentStore{db: db}
}

func (s *contentStore) LoadPost(id uint64) (*domain.Post, error) {
	var post domain.Post
	err := s.db.First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *contentStore) SavePost(post *domain.Post) error {
	return s.db.Save(post).Error
}

func (s *contentStore) LoadPage(id uint64) (*domain.Page, error) {
	var page domain.Page
	err := s.db.First(&page, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

func (s *contentStore) SavePage(page *domain.Page) error {
	return s.db.Save(page).Error
}
