package models

import "time"

// Tag names are unique; comparison is case-insensitive by convention, the
// stored casing is whatever the first writer used.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Posts     []Post    `gorm:"many2many:post_tags" json:"-"`
	CreatedAt time.Time `json:"-"`
}

// PostTag is the explicit join row so the tag-association transaction can
// insert links directly. Both foreign keys cascade on delete.
type PostTag struct {
	PostID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey"`
}
