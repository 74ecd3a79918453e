package migration

import (
	"github.com/quillcms/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// Run creates the content and revision tables via AutoMigrate.
// Safe to run multiple times (AutoMigrate is idempotent). The revision
// table's composite unique index (entity_type, entity_id, revision_number)
// is declared on the model; it is the constraint that serializes revision
// number allocation under concurrent writers.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Post{},
		&domain.Page{},
		&domain.Revision{},
	)
}
