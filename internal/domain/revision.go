package domain

import "time"

// RevisionType describes what kind of checkpoint produced a revision.
// It is descriptive only: statistics group by it, but no behavior branches
// on it except retention eligibility of restore points.
type RevisionType string

const (
	RevisionTypeManual   RevisionType = "manual"
	RevisionTypeAutosave RevisionType = "autosave"
	RevisionTypePublish  RevisionType = "publish"
	RevisionTypeRestore  RevisionType = "restore"
)

// Valid reports whether the revision type is a known checkpoint kind.
func (t RevisionType) Valid() bool {
	switch t {
	case RevisionTypeManual, RevisionTypeAutosave, RevisionTypePublish, RevisionTypeRestore:
		return true
	}
	return false
}

// Revision is an immutable, numbered snapshot of a content entity's
// versioned fields. Revisions are append-only: once saved, a row is never
// updated, and it is deleted only by retention eviction of non restore
// points. The composite unique index on (entity_type, entity_id,
// revision_number) is what makes concurrent number allocation safe; writers
// that lose the race get a duplicate-key error and re-read the chain head.
type Revision struct {
	ID                string           `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	EntityType        EntityType       `gorm:"column:entity_type;type:varchar(10);uniqueIndex:idx_revision_chain,priority:1" json:"entity_type"`
	EntityID          uint64           `gorm:"column:entity_id;uniqueIndex:idx_revision_chain,priority:2" json:"entity_id"`
	RevisionNumber    uint             `gorm:"column:revision_number;uniqueIndex:idx_revision_chain,priority:3" json:"revision_number"`
	AuthorID          string           `gorm:"column:author_id;type:varchar(50);index" json:"author_id"`
	RevisionType      RevisionType     `gorm:"column:revision_type;type:varchar(10)" json:"revision_type"`
	PostSnapshot      *PostSnapshot    `gorm:"column:post_snapshot;type:json;serializer:json" json:"post_snapshot,omitempty"`
	PageSnapshot      *PageSnapshot    `gorm:"column:page_snapshot;type:json;serializer:json" json:"page_snapshot,omitempty"`
	Changes           *RevisionChanges `gorm:"column:changes;type:json;serializer:json" json:"changes,omitempty"`
	ChangeDescription string           `gorm:"column:change_description;type:varchar(500)" json:"change_description,omitempty"`
	IsRestorePoint    bool             `gorm:"column:is_restore_point;default:false" json:"is_restore_point"`
	WordCount         int              `gorm:"column:word_count;default:0" json:"word_count"`
	IPAddress         string           `gorm:"column:ip_address;type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent         string           `gorm:"column:user_agent;type:varchar(255)" json:"user_agent,omitempty"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Revision) TableName() string { return "content_revisions" }

// CoreFields returns the comparison field set shared by both entity kinds.
func (r *Revision) CoreFields() (title, content, excerpt, status string) {
	switch {
	case r.PostSnapshot != nil:
		s := r.PostSnapshot
		return s.Title, s.Content, s.Excerpt, s.Status
	case r.PageSnapshot != nil:
		s := r.PageSnapshot
		return s.Title, s.Content, s.Excerpt, s.Status
	}
	return "", "", "", ""
}

// SnapshotContent returns the raw content captured in the revision's snapshot.
func (r *Revision) SnapshotContent() string {
	_, content, _, _ := r.CoreFields()
	return content
}

// Change records a whole-value field transition between two successive
// revisions. Values are opaque pairs; there is no recursive diffing inside
// a field.
type Change[T any] struct {
	From T `json:"from"`
	To   T `json:"to"`
}

// PostChanges is the field delta for a post revision. A nil field means
// unchanged; only changed fields are serialized.
type PostChanges struct {
	Title   *Change[string]            `json:"title,omitempty"`
	Content *Change[string]            `json:"content,omitempty"`
	Excerpt *Change[string]            `json:"excerpt,omitempty"`
	Status  *Change[string]            `json:"status,omitempty"`
	SEO     *Change[SEOMeta]           `json:"seo,omitempty"`
	Meta    *Change[map[string]string] `json:"meta,omitempty"`
	Tags    *Change[[]string]          `json:"tags,omitempty"`
}

// Empty reports whether no post field changed.
func (c *PostChanges) Empty() bool {
	return c == nil || (c.Title == nil && c.Content == nil && c.Excerpt == nil &&
		c.Status == nil && c.SEO == nil && c.Meta == nil && c.Tags == nil)
}

// PageChanges is the field delta for a page revision.
type PageChanges struct {
	Title      *Change[string]  `json:"title,omitempty"`
	Content    *Change[string]  `json:"content,omitempty"`
	Excerpt    *Change[string]  `json:"excerpt,omitempty"`
	Status     *Change[string]  `json:"status,omitempty"`
	ParentID   *Change[*uint64] `json:"parent_id,omitempty"`
	MenuOrder  *Change[int]     `json:"menu_order,omitempty"`
	ShowInMenu *Change[bool]    `json:"show_in_menu,omitempty"`
	Template   *Change[string]  `json:"template,omitempty"`
}

// Empty reports whether no page field changed.
func (c *PageChanges) Empty() bool {
	return c == nil || (c.Title == nil && c.Content == nil && c.Excerpt == nil &&
		c.Status == nil && c.ParentID == nil && c.MenuOrder == nil &&
		c.ShowInMenu == nil && c.Template == nil)
}

// RevisionChanges is the tagged per-kind delta stored on a revision.
// Exactly one branch is set, matching the revision's entity type.
type RevisionChanges struct {
	Post *PostChanges `json:"post,omitempty"`
	Page *PageChanges `json:"page,omitempty"`
}

// Empty reports whether the delta contains no changed field at all.
func (c *RevisionChanges) Empty() bool {
	if c == nil {
		return true
	}
	return c.Post.Empty() && c.Page.Empty()
}

// CreateRevisionData carries the provenance metadata for a new revision.
// Entity identity comes from the entity itself.
type CreateRevisionData struct {
	AuthorID          string       `json:"author_id"`
	RevisionType      RevisionType `json:"revision_type"`
	ChangeDescription string       `json:"change_description,omitempty"`
	IsRestorePoint    bool         `json:"is_restore_point,omitempty"`
	IPAddress         string       `json:"-"`
	UserAgent         string       `json:"-"`
}

// Diff types used in pairwise revision comparison.
const (
	DiffAdded    = "added"
	DiffRemoved  = "removed"
	DiffModified = "modified"
)

// FieldDiff describes how one comparison field differs between two revisions.
type FieldDiff struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// ComparisonResult is the outcome of comparing two arbitrary revisions.
type ComparisonResult struct {
	Changes    map[string]FieldDiff `json:"changes"`
	Summary    string               `json:"summary"`
	Similarity float64              `json:"similarity"`
}

// RevisionStats aggregates analytics over an entity's revision history.
type RevisionStats struct {
	TotalRevisions        int     `json:"total_revisions"`
	ManualRevisions       int     `json:"manual_revisions"`
	AutosaveRevisions     int     `json:"autosave_revisions"`
	RestorePoints         int     `json:"restore_points"`
	AverageMinutesBetween float64 `json:"average_time_between_revisions_minutes"`
	MostActiveAuthor      string  `json:"most_active_author"`
}

// AutoSaveResult reports the outcome of an autosave attempt. Success with an
// empty RevisionID means the content was unchanged and no revision was
// needed; Success false means the save degraded and should be retried.
type AutoSaveResult struct {
	Success    bool   `json:"success"`
	RevisionID string `json:"revision_id,omitempty"`
}
