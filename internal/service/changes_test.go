package service

import (
	"testing"

	"github.com/quillcms/quill-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func postRevision(snapshot *domain.PostSnapshot) *domain.Revision {
	return &domain.Revision{EntityType: domain.EntityTypePost, EntityID: 1, PostSnapshot: snapshot}
}

func pageRevision(snapshot *domain.PageSnapshot) *domain.Revision {
	return &domain.Revision{EntityType: domain.EntityTypePage, EntityID: 1, PageSnapshot: snapshot}
}

func TestCalculateChanges_NoChanges(t *testing.T) {
	snap := &domain.PostSnapshot{Title: "A", Content: "c", Status: "draft", Tags: []string{"go"}}
	other := &domain.PostSnapshot{Title: "A", Content: "c", Status: "draft", Tags: []string{"go"}}

	changes := CalculateChanges(postRevision(snap), postRevision(other))

	assert.Nil(t, changes)
}

func TestCalculateChanges_PostFields(t *testing.T) {
	old := &domain.PostSnapshot{
		Title:   "Hello",
		Content: "body",
		Status:  "draft",
		Tags:    []string{"go"},
		Meta:    map[string]string{"k": "v"},
	}
	cur := &domain.PostSnapshot{
		Title:   "Hello!",
		Content: "body",
		Status:  "published",
		Tags:    []string{"go", "cms"},
		Meta:    map[string]string{"k": "v"},
	}

	changes := CalculateChanges(postRevision(old), postRevision(cur))

	assert.NotNil(t, changes)
	assert.NotNil(t, changes.Post)
	assert.Nil(t, changes.Page)

	assert.Equal(t, "Hello", changes.Post.Title.From)
	assert.Equal(t, "Hello!", changes.Post.Title.To)
	assert.Equal(t, "draft", changes.Post.Status.From)
	assert.Equal(t, "published", changes.Post.Status.To)
	assert.Equal(t, []string{"go", "cms"}, changes.Post.Tags.To)

	// unchanged fields are omitted, not recorded as empty
	assert.Nil(t, changes.Post.Content)
	assert.Nil(t, changes.Post.Excerpt)
	assert.Nil(t, changes.Post.SEO)
	assert.Nil(t, changes.Post.Meta)
}

func TestCalculateChanges_SEODeepCompare(t *testing.T) {
	old := &domain.PostSnapshot{SEO: domain.SEOMeta{MetaTitle: "a"}}
	cur := &domain.PostSnapshot{SEO: domain.SEOMeta{MetaTitle: "b"}}

	changes := CalculateChanges(postRevision(old), postRevision(cur))

	assert.NotNil(t, changes.Post.SEO)
	assert.Equal(t, "a", changes.Post.SEO.From.MetaTitle)
	assert.Equal(t, "b", changes.Post.SEO.To.MetaTitle)
}

func TestCalculateChanges_PageFields(t *testing.T) {
	parent := uint64(7)
	old := &domain.PageSnapshot{Title: "About", MenuOrder: 1, ShowInMenu: true, Template: "default"}
	cur := &domain.PageSnapshot{Title: "About", MenuOrder: 2, ShowInMenu: false, Template: "default", ParentID: &parent}

	changes := CalculateChanges(pageRevision(old), pageRevision(cur))

	assert.NotNil(t, changes.Page)
	assert.Nil(t, changes.Post)

	assert.Equal(t, 1, changes.Page.MenuOrder.From)
	assert.Equal(t, 2, changes.Page.MenuOrder.To)
	assert.True(t, changes.Page.ShowInMenu.From)
	assert.False(t, changes.Page.ShowInMenu.To)
	assert.Nil(t, changes.Page.ParentID.From)
	assert.Equal(t, &parent, changes.Page.ParentID.To)
	assert.Nil(t, changes.Page.Title)
	assert.Nil(t, changes.Page.Template)
}

func TestCalculateChanges_MismatchedSnapshots(t *testing.T) {
	changes := CalculateChanges(postRevision(&domain.PostSnapshot{Title: "A"}), pageRevision(&domain.PageSnapshot{Title: "B"}))
	assert.Nil(t, changes)
}
