package services

import (
	"errors"
	"time"

	"blog-restful/apperrors"
	"blog-restful/models"
	"blog-restful/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultListLimit = 20

// The PostService interface defines the methods that post services need to implement
type PostService interface {
	Create(input *CreatePostInput) (*models.Post, error)
	List(limit int, tag string) ([]PostSummary, error)
	GetBySlugOrTitle(identifier string) (*models.Post, error)
	Update(identifier string, input *UpdatePostInput) (*models.Post, error)
	Delete(identifier string) (bool, error)
	TagNames() ([]string, error)
}

// --- Structs for Input/Output ---

type CreatePostInput struct {
	Title    string   `json:"title" description:"Post title, source of the slug"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Status   string   `json:"status" description:"draft or published, defaults to draft"`
	AuthorID uint     `json:"authorId"`
	Tags     []string `json:"tags"`
}

// UpdatePostInput uses pointers to distinguish absent fields from empty ones.
type UpdatePostInput struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Excerpt *string   `json:"excerpt"`
	Status  *string   `json:"status"`
	Tags    *[]string `json:"tags"`
}

// PostSummary is the listing projection; content is omitted deliberately.
type PostSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Status    string    `json:"status"`
	AuthorID  uint      `json:"author_id"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// postService is the implementation of the PostService interface
type postService struct {
	posts  repositories.PostRepository
	tags   repositories.TagRepository
	logger *zap.Logger
}

var _ PostService = (*postService)(nil)

// NewPostService creates a new PostService instance
func NewPostService(posts repositories.PostRepository, tags repositories.TagRepository, logger *zap.Logger) PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postService{posts: posts, tags: tags, logger: logger}
}

// Create inserts a new post with a slug derived from its title and attaches
// any submitted tags. The slug pre-check keeps the common case friendly; a
// concurrent writer racing past it is caught by the unique constraint and
// mapped to the same conflict.
func (s *postService) Create(input *CreatePostInput) (*models.Post, error) {
	if input.Title == "" || input.Content == "" || input.AuthorID == 0 {
		return nil, apperrors.BadRequest("Missing required fields (title, content, authorId)")
	}
	status := input.Status
	if status == "" {
		status = models.StatusDraft
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		return nil, apperrors.Validation("Invalid status: must be draft or published")
	}

	postSlug := DeriveSlug(input.Title)
	if err := s.ensureSlugAvailable(postSlug, 0); err != nil {
		return nil, err
	}

	post := models.Post{
		Title:    input.Title,
		Slug:     postSlug,
		Excerpt:  input.Excerpt,
		Content:  input.Content,
		Status:   status,
		AuthorID: input.AuthorID,
	}
	if err := s.posts.Create(&post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Slug already in use")
		}
		s.logger.Error("Failed to create post", zap.Error(err))
		return nil, apperrors.Internal("Database internal error while creating post")
	}

	if tags := NormalizeTags(input.Tags); len(tags) > 0 {
		if _, err := s.tags.AttachTags(post.ID, tags); err != nil {
			s.logger.Error("Failed to associate tags to post", zap.Uint("post_id", post.ID), zap.Error(err))
			return nil, apperrors.Internal("Failed to associate tags to post")
		}
	}

	return s.GetBySlugOrTitle(post.Slug)
}

// ensureSlugAvailable fails with a conflict when another post already owns
// the slug. excludePostID skips the post being updated.
func (s *postService) ensureSlugAvailable(postSlug string, excludePostID uint) error {
	existing, err := s.posts.FindBySlug(postSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("Failed to check slug availability", zap.Error(err))
		return apperrors.Internal("Database internal error")
	}
	if existing.ID != excludePostID {
		return apperrors.Conflict("Slug already in use")
	}
	return nil
}

// List returns post summaries, newest first, optionally filtered by tag.
func (s *postService) List(limit int, tag string) ([]PostSummary, error) {
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 1 || limit > 100 {
		return nil, apperrors.BadRequest("limit must be between 1 and 100")
	}

	posts, err := s.posts.FindAll(limit, tag)
	if err != nil {
		s.logger.Error("Failed to list posts", zap.Error(err))
		return nil, apperrors.Internal("Database internal error while listing posts")
	}

	summaries := make([]PostSummary, len(posts))
	for i, post := range posts {
		summaries[i] = PostSummary{
			ID:        post.ID,
			Title:     post.Title,
			Slug:      post.Slug,
			Excerpt:   post.Excerpt,
			Status:    post.Status,
			AuthorID:  post.AuthorID,
			Tags:      tagNames(post.Tags),
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
		}
	}
	return summaries, nil
}

// GetBySlugOrTitle returns the full post projection for a slug or exact title.
func (s *postService) GetBySlugOrTitle(identifier string) (*models.Post, error) {
	post, err := s.posts.FindBySlugOrTitle(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Post not found")
		}
		s.logger.Error("Failed to fetch post", zap.Error(err))
		return nil, apperrors.Internal("Database internal error")
	}
	return post, nil
}

// Update applies a partial update. A title change re-derives the slug and
// re-validates its uniqueness against all other posts before committing.
// Tags are relational, so they go through detach/attach/prune instead of the
// scalar column update.
func (s *postService) Update(identifier string, input *UpdatePostInput) (*models.Post, error) {
	if input.Title == nil && input.Content == nil && input.Excerpt == nil && input.Status == nil && input.Tags == nil {
		return nil, apperrors.BadRequest("No fields to update")
	}

	target, err := s.GetBySlugOrTitle(identifier)
	if err != nil {
		return nil, err
	}

	columns := map[string]interface{}{}
	newSlug := target.Slug
	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.Validation("Invalid title: must not be empty")
		}
		newSlug = DeriveSlug(*input.Title)
		if newSlug != target.Slug {
			if err := s.ensureSlugAvailable(newSlug, target.ID); err != nil {
				return nil, err
			}
		}
		columns["title"] = *input.Title
		columns["slug"] = newSlug
	}
	if input.Content != nil {
		columns["content"] = *input.Content
	}
	if input.Excerpt != nil {
		columns["excerpt"] = *input.Excerpt
	}
	if input.Status != nil {
		if *input.Status != models.StatusDraft && *input.Status != models.StatusPublished {
			return nil, apperrors.Validation("Invalid status: must be draft or published")
		}
		columns["status"] = *input.Status
	}

	if len(columns) > 0 {
		if err := s.posts.Update(target.ID, columns); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.Conflict("Slug already in use")
			}
			s.logger.Error("Failed to update post", zap.Uint("post_id", target.ID), zap.Error(err))
			return nil, apperrors.Internal("Database internal error while updating post")
		}
	}

	if input.Tags != nil {
		if _, err := s.tags.DetachAllTags(target.ID); err != nil {
			s.logger.Error("Failed to detach tags", zap.Uint("post_id", target.ID), zap.Error(err))
			return nil, apperrors.Internal("Failed to associate tags to post")
		}
		if tags := NormalizeTags(*input.Tags); len(tags) > 0 {
			if _, err := s.tags.AttachTags(target.ID, tags); err != nil {
				s.logger.Error("Failed to associate tags to post", zap.Uint("post_id", target.ID), zap.Error(err))
				return nil, apperrors.Internal("Failed to associate tags to post")
			}
		}
		if _, err := s.tags.PruneOrphanTags(); err != nil {
			s.logger.Error("Failed to prune orphan tags", zap.Error(err))
			return nil, apperrors.Internal("Database internal error")
		}
	}

	return s.GetBySlugOrTitle(newSlug)
}

// Delete removes a post and prunes any tags it was the last referencer of.
func (s *postService) Delete(identifier string) (bool, error) {
	target, err := s.GetBySlugOrTitle(identifier)
	if err != nil {
		return false, err
	}

	deleted, err := s.posts.Delete(target.ID)
	if err != nil {
		s.logger.Error("Failed to delete post", zap.Uint("post_id", target.ID), zap.Error(err))
		return false, apperrors.Internal("Database internal error while deleting post")
	}
	if _, err := s.tags.PruneOrphanTags(); err != nil {
		s.logger.Error("Failed to prune orphan tags", zap.Error(err))
		return deleted, apperrors.Internal("Database internal error")
	}
	return deleted, nil
}

// TagNames returns every distinct tag name currently in use.
func (s *postService) TagNames() ([]string, error) {
	names, err := s.tags.DistinctNames()
	if err != nil {
		s.logger.Error("Failed to list tags", zap.Error(err))
		return nil, apperrors.Internal("Database internal error")
	}
	return names, nil
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}
