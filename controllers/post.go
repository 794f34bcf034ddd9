package controllers

import (
	"net/http"
	"strconv"
	"time"

	"blog-restful/apperrors"
	"blog-restful/auth"
	"blog-restful/models"
	"blog-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// PostController exposes post CRUD. Mutations are admin-gated.
type PostController struct {
	postService services.PostService
	userService services.UserService
}

// NewPostController creates a PostController instance
func NewPostController(postService services.PostService, userService services.UserService) *PostController {
	return &PostController{postService: postService, userService: userService}
}

// PostResponse is the full post projection.
type PostResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	AuthorID  uint      `json:"authorId"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func mapModelToPostResponse(post *models.Post) PostResponse {
	if post == nil {
		return PostResponse{}
	}
	tags := make([]string, len(post.Tags))
	for i, tag := range post.Tags {
		tags[i] = tag.Name
	}
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Slug:      post.Slug,
		Excerpt:   post.Excerpt,
		Content:   post.Content,
		Status:    post.Status,
		AuthorID:  post.AuthorID,
		Tags:      tags,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// --- go-restful Route Definitions ---

// RegisterRoutes sets up the post-related routes for a go-restful WebService.
func (ctl *PostController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/posts").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").Filter(auth.AuthFilter()).To(ctl.createPostHandler).
		Doc("Create a post (admin only)").
		Metadata(restfulspec.KeyOpenAPITags, []string{"posts"}).
		Reads(services.CreatePostInput{}).
		Returns(http.StatusCreated, "Post created", PostResponse{}).
		Returns(http.StatusBadRequest, "Missing required fields", apperrors.Error{}).
		Returns(http.StatusUnauthorized, "Unauthorized", apperrors.Error{}).
		Returns(http.StatusForbidden, "Admin access required", apperrors.Error{}).
		Returns(http.StatusConflict, "Slug already in use", apperrors.Error{}))

	ws.Route(ws.GET("").To(ctl.listPostsHandler).
		Doc("List post summaries, newest first").
		Param(ws.QueryParameter("limit", "Maximum posts to return (1-100, default 20)").DataType("integer")).
		Param(ws.QueryParameter("tag", "Only posts carrying this tag").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"posts"}).
		Writes([]services.PostSummary{}).
		Returns(http.StatusOK, "Post summaries", []services.PostSummary{}).
		Returns(http.StatusBadRequest, "Invalid limit", apperrors.Error{}))

	ws.Route(ws.GET("/tags").To(ctl.listTagsHandler).
		Doc("List distinct tag names").
		Metadata(restfulspec.KeyOpenAPITags, []string{"posts"}).
		Returns(http.StatusOK, "Tag names", []string{}))

	ws.Route(ws.GET("/{slug-or-title}").To(ctl.getPostHandler).
		Doc("Get a full post by slug or title").
		Param(ws.PathParameter("slug-or-title", "Slug or exact title of the post").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"posts"}).
		Writes(PostResponse{}).
		Returns(http.StatusOK, "Post found", PostResponse{}).
		Returns(http.StatusNotFound, "Post not found", apperrors.Error{}))

	ws.Route(ws.PATCH("/{slug-or-title}").Filter(auth.AuthFilter()).To(ctl.updatePostHandler).
		Doc("Partially update a post (admin only)").
		Param(ws.PathParameter("slug-or-title", "Slug or exact title of the post").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"posts"}).
		Reads(services.UpdatePostInput{}).
		Returns(http.StatusOK, "Post updated", PostResponse{}).
		Returns(http.StatusBadRequest, "Empty patch", apperrors.Error{}).
		Returns(http.StatusUnprocessableEntity, "Validation failure", apperrors.Error{}).
		Returns(http.StatusUnauthorized, "Unauthorized", apperrors.Error{}).
		Returns(http.StatusForbidden, "Admin access required", apperrors.Error{}).
		Returns(http.StatusNotFound, "Post not found", apperrors.Error{}).
		Returns(http.StatusConflict, "Slug already in use", apperrors.Error{}))

	ws.Route(ws.DELETE("/{slug-or-title}").Filter(auth.AuthFilter()).To(ctl.deletePostHandler).
		Doc("Delete a post (admin only)").
		Param(ws.PathParameter("slug-or-title", "Slug or exact title of the post").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"posts"}).
		Returns(http.StatusNoContent, "Post deleted", nil).
		Returns(http.StatusUnauthorized, "Unauthorized", apperrors.Error{}).
		Returns(http.StatusForbidden, "Admin access required", apperrors.Error{}).
		Returns(http.StatusNotFound, "Post not found", apperrors.Error{}))
}

// --- go-restful Handler Functions ---

// createPostHandler (Handles POST /posts)
func (ctl *PostController) createPostHandler(request *restful.Request, response *restful.Response) {
	requester, err := ctl.requireAdmin(request)
	if err != nil {
		writeAppError(response, err)
		return
	}

	input := new(services.CreatePostInput)
	if err := request.ReadEntity(input); err != nil {
		writeAppError(response, apperrors.BadRequest("Invalid request body: "+err.Error()))
		return
	}
	if input.AuthorID == 0 {
		input.AuthorID = requester.ID
	}

	post, err := ctl.postService.Create(input)
	if err != nil {
		writeAppError(response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToPostResponse(post), restful.MIME_JSON)
}

// listPostsHandler (Handles GET /posts)
func (ctl *PostController) listPostsHandler(request *restful.Request, response *restful.Response) {
	limit := 0
	if limitStr := request.QueryParameter("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			writeAppError(response, apperrors.BadRequest("Invalid limit parameter"))
			return
		}
		limit = parsed
	}

	summaries, err := ctl.postService.List(limit, request.QueryParameter("tag"))
	if err != nil {
		writeAppError(response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, summaries, restful.MIME_JSON)
}

// listTagsHandler (Handles GET /posts/tags)
func (ctl *PostController) listTagsHandler(request *restful.Request, response *restful.Response) {
	names, err := ctl.postService.TagNames()
	if err != nil {
		writeAppError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, names, restful.MIME_JSON)
}

// getPostHandler (Handles GET /posts/{slug-or-title})
func (ctl *PostController) getPostHandler(request *restful.Request, response *restful.Response) {
	post, err := ctl.postService.GetBySlugOrTitle(request.PathParameter("slug-or-title"))
	if err != nil {
		writeAppError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToPostResponse(post), restful.MIME_JSON)
}

// updatePostHandler (Handles PATCH /posts/{slug-or-title})
func (ctl *PostController) updatePostHandler(request *restful.Request, response *restful.Response) {
	if _, err := ctl.requireAdmin(request); err != nil {
		writeAppError(response, err)
		return
	}

	input := new(services.UpdatePostInput)
	if err := request.ReadEntity(input); err != nil {
		writeAppError(response, apperrors.BadRequest("Invalid request body: "+err.Error()))
		return
	}

	post, err := ctl.postService.Update(request.PathParameter("slug-or-title"), input)
	if err != nil {
		writeAppError(response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToPostResponse(post), restful.MIME_JSON)
}

// deletePostHandler (Handles DELETE /posts/{slug-or-title})
func (ctl *PostController) deletePostHandler(request *restful.Request, response *restful.Response) {
	if _, err := ctl.requireAdmin(request); err != nil {
		writeAppError(response, err)
		return
	}

	if _, err := ctl.postService.Delete(request.PathParameter("slug-or-title")); err != nil {
		writeAppError(response, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// requireAdmin loads the requesting user from storage and checks the admin
// flag, so a revoked admin loses access without re-login.
func (ctl *PostController) requireAdmin(request *restful.Request) (*models.User, error) {
	userIDAttr := request.Attribute("user_id")
	userID, ok := userIDAttr.(uint)
	if !ok {
		return nil, apperrors.Unauthorized("Cannot identify requesting user")
	}

	user, err := ctl.userService.GetByID(userID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.Unauthorized("Cannot identify requesting user")
		}
		return nil, err
	}
	if !user.IsAdmin {
		return nil, apperrors.Forbidden("Admin access required")
	}
	return user, nil
}
