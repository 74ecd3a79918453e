package domain

import "time"

// EntityType identifies which kind of content entity owns a revision chain.
type EntityType string

const (
	EntityTypePost EntityType = "post"
	EntityTypePage EntityType = "page"
)

// Valid reports whether the entity type is one the engine versions.
func (t EntityType) Valid() bool {
	return t == EntityTypePost || t == EntityTypePage
}

// Versioned is implemented by content entities whose edit history the
// revision engine tracks.
type Versioned interface {
	EntityKind() EntityType
	EntityID() uint64
	RawContent() string
}

// SEOMeta holds search-engine metadata attached to a post
type SEOMeta struct {
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`
	OGImage         string `json:"og_image,omitempty"`
	CanonicalURL    string `json:"canonical_url,omitempty"`
}

// Post represents a blog-style content entity
type Post struct {
	ID           uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title        string            `gorm:"column:title;type:varchar(255)" json:"title"`
	Content      string            `gorm:"column:content;type:mediumtext" json:"content"`
	Excerpt      string            `gorm:"column:excerpt;type:text" json:"excerpt"`
	Status       string            `gorm:"column:status;type:enum('draft','published','private','trash');default:'draft'" json:"status"`
	PostType     string            `gorm:"column:post_type;type:varchar(50);default:'post'" json:"post_type"`
	SEO          SEOMeta           `gorm:"column:seo;type:json;serializer:json" json:"seo"`
	Meta         map[string]string `gorm:"column:meta;type:json;serializer:json" json:"meta,omitempty"`
	Tags         []string          `gorm:"column:tags;type:json;serializer:json" json:"tags,omitempty"`
	AuthorID     string            `gorm:"column:author_id;type:varchar(50);index" json:"author_id"`
	LastEditedBy string            `gorm:"column:last_edited_by;type:varchar(50)" json:"last_edited_by"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) EntityKind() EntityType { return EntityTypePost }
func (p *Post) EntityID() uint64       { return p.ID }
func (p *Post) RawContent() string     { return p.Content }

// Page represents a hierarchical site page
type Page struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Content      string    `gorm:"column:content;type:mediumtext" json:"content"`
	Excerpt      string    `gorm:"column:excerpt;type:text" json:"excerpt"`
	Status       string    `gorm:"column:status;type:enum('draft','published','private','trash');default:'draft'" json:"status"`
	ParentID     *uint64   `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	MenuOrder    int       `gorm:"column:menu_order;default:0" json:"menu_order"`
	ShowInMenu   bool      `gorm:"column:show_in_menu;default:true" json:"show_in_menu"`
	Template     string    `gorm:"column:template;type:varchar(100)" json:"template"`
	AuthorID     string    `gorm:"column:author_id;type:varchar(50);index" json:"author_id"`
	LastEditedBy string    `gorm:"column:last_edited_by;type:varchar(50)" json:"last_edited_by"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Page) TableName() string { return "pages" }

func (p *Page) EntityKind() EntityType { return EntityTypePage }
func (p *Page) EntityID() uint64       { return p.ID }
func (p *Page) RawContent() string     { return p.Content }

// PostSnapshot is a full copy of a post's versioned fields at a point in
// time. Snapshots are values, not references: maps and slices are copied on
// both capture and apply so later edits to the live post never leak into
// stored history.
type PostSnapshot struct {
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Excerpt  string            `json:"excerpt"`
	Status   string            `json:"status"`
	PostType string            `json:"post_type,omitempty"`
	SEO      SEOMeta           `json:"seo"`
	Meta     map[string]string `json:"meta,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
}

// Snapshot captures the post's current versioned fields.
func (p *Post) Snapshot() *PostSnapshot {
	return &PostSnapshot{
		Title:    p.Title,
		Content:  p.Content,
		Excerpt:  p.Excerpt,
		Status:   p.Status,
		PostType: p.PostType,
		SEO:      p.SEO,
		Meta:     copyStringMap(p.Meta),
		Tags:     copyStrings(p.Tags),
	}
}

// Apply writes the snapshot's fields onto the live post.
func (s *PostSnapshot) Apply(p *Post) {
	p.Title = s.Title
	p.Content = s.Content
	p.Excerpt = s.Excerpt
	p.Status = s.Status
	p.PostType = s.PostType
	p.SEO = s.SEO
	p.Meta = copyStringMap(s.Meta)
	p.Tags = copyStrings(s.Tags)
}

// PageSnapshot is a full copy of a page's versioned fields at a point in time.
type PageSnapshot struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Excerpt    string  `json:"excerpt"`
	Status     string  `json:"status"`
	ParentID   *uint64 `json:"parent_id,omitempty"`
	MenuOrder  int     `json:"menu_order"`
	ShowInMenu bool    `json:"show_in_menu"`
	Template   string  `json:"template,omitempty"`
}

// Snapshot captures the page's current versioned fields.
func (p *Page) Snapshot() *PageSnapshot {
	return &PageSnapshot{
		Title:      p.Title,
		Content:    p.Content,
		Excerpt:    p.Excerpt,
		Status:     p.Status,
		ParentID:   copyUint64Ptr(p.ParentID),
		MenuOrder:  p.MenuOrder,
		ShowInMenu: p.ShowInMenu,
		Template:   p.Template,
	}
}

// Apply writes the snapshot's fields onto the live page.
func (s *PageSnapshot) Apply(p *Page) {
	p.Title = s.Title
	p.Content = s.Content
	p.Excerpt = s.Excerpt
	p.Status = s.Status
	p.ParentID = copyUint64Ptr(s.ParentID)
	p.MenuOrder = s.MenuOrder
	p.ShowInMenu = s.ShowInMenu
	p.Template = s.Template
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyUint64Ptr(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
