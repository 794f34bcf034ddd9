package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"blog-restful/auth"
	"blog-restful/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func bearerFor(t *testing.T, user *models.User) map[string]string {
	t.Helper()
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func postSetup(t *testing.T) (*gorm.DB, *restful.Container, map[string]string) {
	t.Helper()
	db := setupTestDB(t)
	container := setupContainer(db)
	admin := seedUser(t, db, "admin@example.com", true)
	return db, container, bearerFor(t, admin)
}

func TestCreatePostEndpoint(t *testing.T) {
	db, container, adminHeaders := postSetup(t)
	reader := seedUser(t, db, "reader@example.com", false)

	body := map[string]interface{}{
		"title":   "Hello World",
		"content": "Some content here",
		"excerpt": "Some excerpt",
		"tags":    []string{"JS", "js", " "},
	}

	// No token
	w := doJSON(container, "POST", "/posts", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated but not admin
	w = doJSON(container, "POST", "/posts", body, bearerFor(t, reader))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin
	w = doJSON(container, "POST", "/posts", body, adminHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "hello-world", created.Slug)
	assert.Equal(t, []string{"JS"}, created.Tags)

	// Same slug again
	w = doJSON(container, "POST", "/posts", body, adminHeaders)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Slug already in use")
}

func TestGetPostEndpoint(t *testing.T) {
	_, container, adminHeaders := postSetup(t)

	w := doJSON(container, "POST", "/posts", map[string]interface{}{
		"title":   "Readable Post",
		"content": "Some content here",
	}, adminHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(container, "GET", "/posts/readable-post", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var post PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, "Readable Post", post.Title)
	assert.Equal(t, "Some content here", post.Content)

	w = doJSON(container, "GET", "/posts/no-such-post", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Post not found")
}

func TestListPostsEndpoint(t *testing.T) {
	_, container, adminHeaders := postSetup(t)

	for _, title := range []string{"First Post", "Second Post"} {
		w := doJSON(container, "POST", "/posts", map[string]interface{}{
			"title":   title,
			"content": "Some content here",
			"tags":    []string{"go"},
		}, adminHeaders)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(container, "GET", "/posts?limit=1&tag=go", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var summaries []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	assert.Len(t, summaries, 1)
	// Listing projection omits content
	_, hasContent := summaries[0]["content"]
	assert.False(t, hasContent)

	w = doJSON(container, "GET", "/posts?limit=500", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTagsEndpoint(t *testing.T) {
	_, container, adminHeaders := postSetup(t)

	w := doJSON(container, "POST", "/posts", map[string]interface{}{
		"title":   "Tagged",
		"content": "Some content here",
		"tags":    []string{"web", "api"},
	}, adminHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(container, "GET", "/posts/tags", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Equal(t, []string{"api", "web"}, names)
}

func TestUpdatePostEndpoint(t *testing.T) {
	_, container, adminHeaders := postSetup(t)

	w := doJSON(container, "POST", "/posts", map[string]interface{}{
		"title":   "Patchable",
		"content": "Some content here",
	}, adminHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(container, "PATCH", "/posts/patchable", map[string]interface{}{
		"excerpt": "fresh excerpt",
	}, adminHeaders)
	assert.Equal(t, http.StatusOK, w.Code)
	var updated PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "fresh excerpt", updated.Excerpt)

	// Empty patch
	w = doJSON(container, "PATCH", "/posts/patchable", map[string]interface{}{}, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Invalid status value
	w = doJSON(container, "PATCH", "/posts/patchable", map[string]interface{}{
		"status": "archived",
	}, adminHeaders)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Missing post
	w = doJSON(container, "PATCH", "/posts/missing", map[string]interface{}{
		"excerpt": "x",
	}, adminHeaders)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePostEndpoint(t *testing.T) {
	_, container, adminHeaders := postSetup(t)

	w := doJSON(container, "POST", "/posts", map[string]interface{}{
		"title":   "Doomed",
		"content": "Some content here",
	}, adminHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(container, "DELETE", "/posts/doomed", nil, adminHeaders)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(container, "GET", "/posts/doomed", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(container, "DELETE", "/posts/doomed", nil, adminHeaders)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
