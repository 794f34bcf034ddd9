package repositories

import (
	"errors"

	"blog-restful/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository owns the post↔tag association lifecycle: transactional
// attachment, detachment and orphan pruning.
type TagRepository interface {
	AttachTags(postID uint, names []string) (int, error)
	DetachAllTags(postID uint) (int, error)
	PruneOrphanTags() (int, error)
	DistinctNames() ([]string, error)
}

// tagRepository implements the TagRepository interface
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository instance
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// AttachTags upserts every tag name and links it to the post inside a single
// transaction. Duplicate links are ignored, so the operation is idempotent.
// On any failure the transaction rolls back entirely; no partial tag or link
// state survives. Returns the number of links actually created.
func (r *tagRepository) AttachTags(postID uint, names []string) (int, error) {
	created := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			tag, err := findOrCreateTag(tx, name)
			if err != nil {
				return err
			}
			link := models.PostTag{PostID: postID, TagID: tag.ID}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
			if result.Error != nil {
				return result.Error
			}
			created += int(result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// findOrCreateTag resolves a tag row by case-insensitive name, inserting it
// when absent. A duplicate-key error from a concurrent writer is resolved by
// re-reading the winner's row.
func findOrCreateTag(tx *gorm.DB, name string) (*models.Tag, error) {
	var tag models.Tag
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = models.Tag{Name: name}
	if err := tx.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.Where("LOWER(name) = LOWER(?)", name).First(&tag).Error; err != nil {
				return nil, err
			}
			return &tag, nil
		}
		return nil, err
	}
	return &tag, nil
}

// DetachAllTags deletes every post↔tag link for the post. Tag rows stay.
func (r *tagRepository) DetachAllTags(postID uint) (int, error) {
	result := r.db.Where("post_id = ?", postID).Delete(&models.PostTag{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// PruneOrphanTags deletes every tag no post references anymore. Safe to call
// when nothing is orphaned.
func (r *tagRepository) PruneOrphanTags() (int, error) {
	subQuery := r.db.Model(&models.PostTag{}).Select("tag_id")
	result := r.db.Where("id NOT IN (?)", subQuery).Delete(&models.Tag{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// DistinctNames returns every tag name, sorted.
func (r *tagRepository) DistinctNames() ([]string, error) {
	var names []string
	result := r.db.Model(&models.Tag{}).Order("name").Pluck("name", &names)
	if result.Error != nil {
		return nil, result.Error
	}
	return names, nil
}
