package models

import "time"

// Post statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post is a blog article. Slug is derived from the title and unique across
// all posts. Soft deletes are deliberately not used: a deleted post must free
// its slug immediately.
type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Status    string    `gorm:"default:draft" json:"status"`
	AuthorID  uint      `gorm:"index" json:"author_id"`
	Author    *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tags      []Tag     `gorm:"many2many:post_tags" json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
