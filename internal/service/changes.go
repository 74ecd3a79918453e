package service

import (
	"bytes"
	"encoding/json"

	"github.com/quillcms/quill-backend/internal/domain"
)

// CalculateChanges computes the field-level delta between the previous
// revision's snapshot and the new one. Each watched field is compared by
// deep equality of its serialized form; changed fields record the whole old
// and new values, unchanged fields are omitted entirely. Returns nil when
// nothing changed or the snapshots are not comparable.
func CalculateChanges(prev, next *domain.Revision) *domain.RevisionChanges {
	switch {
	case prev.PostSnapshot != nil && next.PostSnapshot != nil:
		if c := calculatePostChanges(prev.PostSnapshot, next.PostSnapshot); !c.Empty() {
			return &domain.RevisionChanges{Post: c}
		}
	case prev.PageSnapshot != nil && next.PageSnapshot != nil:
		if c := calculatePageChanges(prev.PageSnapshot, next.PageSnapshot); !c.Empty() {
			return &domain.RevisionChanges{Page: c}
		}
	}
	return nil
}

func calculatePostChanges(old, cur *domain.PostSnapshot) *domain.PostChanges {
	c := &domain.PostChanges{}
	if old.Title != cur.Title {
		c.Title = &domain.Change[string]{From: old.Title, To: cur.Title}
	}
	if old.Content != cur.Content {
		c.Content = &domain.Change[string]{From: old.Content, To: cur.Content}
	}
	if old.Excerpt != cur.Excerpt {
		c.Excerpt = &domain.Change[string]{From: old.Excerpt, To: cur.Excerpt}
	}
	if old.Status != cur.Status {
		c.Status = &domain.Change[string]{From: old.Status, To: cur.Status}
	}
	if serializedDiffer(old.SEO, cur.SEO) {
		c.SEO = &domain.Change[domain.SEOMeta]{From: old.SEO, To: cur.SEO}
	}
	if serializedDiffer(old.Meta, cur.Meta) {
		c.Meta = &domain.Change[map[string]string]{From: old.Meta, To: cur.Meta}
	}
	if serializedDiffer(old.Tags, cur.Tags) {
		c.Tags = &domain.Change[[]string]{From: old.Tags, To: cur.Tags}
	}
	return c
}

func calculatePageChanges(old, cur *domain.PageSnapshot) *domain.PageChanges {
	c := &domain.PageChanges{}
	if old.Title != cur.Title {
		c.Title = &domain.Change[string]{From: old.Title, To: cur.Title}
	}
	if old.Content != cur.Content {
		c.Content = &domain.Change[string]{From: old.Content, To: cur.Content}
	}
	if old.Excerpt != cur.Excerpt {
		c.Excerpt = &domain.Change[string]{From: old.Excerpt, To: cur.Excerpt}
	}
	if old.Status != cur.Status {
		c.Status = &domain.Change[string]{From: old.Status, To: cur.Status}
	}
	if serializedDiffer(old.ParentID, cur.ParentID) {
		c.ParentID = &domain.Change[*uint64]{From: old.ParentID, To: cur.ParentID}
	}
	if old.MenuOrder != cur.MenuOrder {
		c.MenuOrder = &domain.Change[int]{From: old.MenuOrder, To: cur.MenuOrder}
	}
	if old.ShowInMenu != cur.ShowInMenu {
		c.ShowInMenu = &domain.Change[bool]{From: old.ShowInMenu, To: cur.ShowInMenu}
	}
	if old.Template != cur.Template {
		c.Template = &domain.Change[string]{From: old.Template, To: cur.Template}
	}
	return c
}

// serializedDiffer compares two values by their JSON form. Marshal failures
// count as a difference so a change is recorded rather than silently lost.
func serializedDiffer(a, b interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return true
	}
	return !bytes.Equal(ja, jb)
}
