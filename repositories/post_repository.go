package repositories

import (
	"blog-restful/models"

	"gorm.io/gorm"
)

// PostRepository interface defines Post-related database operations
type PostRepository interface {
	Create(post *models.Post) error
	FindBySlug(slug string) (*models.Post, error)
	FindBySlugOrTitle(identifier string) (*models.Post, error)
	FindAll(limit int, tagName string) ([]models.Post, error)
	Update(postID uint, columns map[string]interface{}) error
	Delete(postID uint) (bool, error)
}

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create creates a new Post
func (r *postRepository) Create(post *models.Post) error {
	result := r.db.Create(post)
	return result.Error
}

// FindBySlug looks up a post by slug only, without loading associations.
// Used for slug-availability checks.
func (r *postRepository) FindBySlug(slug string) (*models.Post, error) {
	var post models.Post
	result := r.db.Where("slug = ?", slug).First(&post)
	if result.Error != nil {
		return nil, result.Error
	}
	return &post, nil
}

// FindBySlugOrTitle returns the full post projection, tags included.
func (r *postRepository) FindBySlugOrTitle(identifier string) (*models.Post, error) {
	var post models.Post
	result := r.db.Preload("Tags").
		Where("slug = ? OR title = ?", identifier, identifier).
		First(&post)
	if result.Error != nil {
		return nil, result.Error
	}
	return &post, nil
}

// FindAll returns up to limit posts, newest first, optionally filtered to
// posts carrying the given tag. Content is omitted from the projection.
func (r *postRepository) FindAll(limit int, tagName string) ([]models.Post, error) {
	var posts []models.Post
	query := r.db.Model(&models.Post{}).
		Select("posts.id, posts.title, posts.slug, posts.excerpt, posts.status, posts.author_id, posts.created_at, posts.updated_at").
		Preload("Tags").
		Order("posts.created_at DESC").
		Limit(limit)

	if tagName != "" {
		query = query.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("LOWER(tags.name) = LOWER(?)", tagName)
	}

	result := query.Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

// Update merges the supplied columns into a single UPDATE. GORM bumps
// updated_at as part of the same statement.
func (r *postRepository) Update(postID uint, columns map[string]interface{}) error {
	result := r.db.Model(&models.Post{}).Where("id = ?", postID).Updates(columns)
	return result.Error
}

// Delete removes the post row and its tag links in one transaction.
// Returns whether a post row was actually deleted.
func (r *postRepository) Delete(postID uint) (bool, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Post{}, postID)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		// Not every dialect enforces the FK cascade (sqlite has it off by
		// default), so remove the links explicitly.
		return tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
