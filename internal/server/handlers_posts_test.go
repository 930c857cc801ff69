package server_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogflow/backend/internal/models"
)

func signupToken(t *testing.T, e *echo.Echo, email, username string) string {
	t.Helper()
	resp := signup(t, e, email, username, "Password123")
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createPost(t *testing.T, e *echo.Echo, token, body string) map[string]any {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/posts", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

const firstPostBody = `{
	"title": "My First Post",
	"category": "Design",
	"date": "2024-01-01",
	"image_url": "https://images.example.com/cover.png",
	"summary": "teaser",
	"content": "body text",
	"tags": ["design", "stories"]
}`

func TestCreatePostDerivesSlug(t *testing.T) {
	e, _, _ := newTestServer(t)
	token := signupToken(t, e, "alice@example.com", "alice")

	resp := createPost(t, e, token, firstPostBody)
	post, _ := resp["post"].(map[string]any)
	require.NotNil(t, post)
	assert.Equal(t, "my-first-post", post["slug"])
	assert.Equal(t, "alice", post["author"])
}

func TestCreatePostRequiresSession(t *testing.T) {
	e, _, db := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/posts", firstPostBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCreatePostValidation(t *testing.T) {
	e, _, _ := newTestServer(t)
	token := signupToken(t, e, "alice@example.com", "alice")

	rec := doJSON(e, http.MethodPost, "/posts",
		`{"title":"","category":"Design","date":"2024-01-01","image_url":"x"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/posts",
		`{"title":"T","category":"Design","date":"01/01/2024","image_url":"x"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPostsNewestFirst(t *testing.T) {
	e, _, _ := newTestServer(t)
	token := signupToken(t, e, "alice@example.com", "alice")

	createPost(t, e, token, firstPostBody)
	createPost(t, e, token, `{
		"title": "Second Post",
		"category": "News",
		"date": "2024-06-01",
		"image_url": "https://images.example.com/second.png"
	}`)

	rec := doJSON(e, http.MethodGet, "/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	posts, _ := body["posts"].([]any)
	require.Len(t, posts, 2)
	newest, _ := posts[0].(map[string]any)
	oldest, _ := posts[1].(map[string]any)
	assert.Equal(t, "Second Post", newest["title"])
	assert.Equal(t, "My First Post", oldest["title"])
}

func TestGetPostBySlug(t *testing.T) {
	e, _, _ := newTestServer(t)
	token := signupToken(t, e, "alice@example.com", "alice")
	createPost(t, e, token, firstPostBody)

	rec := doJSON(e, http.MethodGet, "/posts/my-first-post", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	post, _ := body["post"].(map[string]any)
	require.NotNil(t, post)
	assert.Equal(t, "My First Post", post["title"])

	rec = doJSON(e, http.MethodGet, "/posts/missing-slug", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePostByAuthorRecomputesSlug(t *testing.T) {
	e, _, _ := newTestServer(t)
	token := signupToken(t, e, "alice@example.com", "alice")
	resp := createPost(t, e, token, firstPostBody)
	post, _ := resp["post"].(map[string]any)
	id := int(post["id"].(float64))

	rec := doJSON(e, http.MethodPut, "/posts/"+strconv.Itoa(id),
		`{"title":"Renamed Post!"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	updated, _ := body["post"].(map[string]any)
	assert.Equal(t, "renamed-post", updated["slug"])
	assert.Equal(t, "Design", updated["category"])
}

func TestUpdatePostByNonAuthorForbidden(t *testing.T) {
	e, _, db := newTestServer(t)
	aliceToken := signupToken(t, e, "alice@example.com", "alice")
	bobToken := signupToken(t, e, "bob@example.com", "bob")

	resp := createPost(t, e, aliceToken, firstPostBody)
	post, _ := resp["post"].(map[string]any)
	id := int(post["id"].(float64))

	rec := doJSON(e, http.MethodPut, "/posts/"+strconv.Itoa(id),
		`{"title":"Hijacked"}`, bobToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var stored models.Post
	require.NoError(t, db.First(&stored, id).Error)
	assert.Equal(t, "My First Post", stored.Title)
}

func TestDeletePostByNonAuthorForbidden(t *testing.T) {
	e, _, db := newTestServer(t)
	aliceToken := signupToken(t, e, "alice@example.com", "alice")
	bobToken := signupToken(t, e, "bob@example.com", "bob")

	resp := createPost(t, e, aliceToken, firstPostBody)
	post, _ := resp["post"].(map[string]any)
	id := int(post["id"].(float64))

	rec := doJSON(e, http.MethodDelete, "/posts/"+strconv.Itoa(id), "", bobToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeletePostByAuthor(t *testing.T) {
	e, _, db := newTestServer(t)
	token := signupToken(t, e, "alice@example.com", "alice")

	resp := createPost(t, e, token, firstPostBody)
	post, _ := resp["post"].(map[string]any)
	id := int(post["id"].(float64))

	rec := doJSON(e, http.MethodDelete, "/posts/"+strconv.Itoa(id), "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeletePostInvalidID(t *testing.T) {
	e, _, _ := newTestServer(t)
	token := signupToken(t, e, "alice@example.com", "alice")

	rec := doJSON(e, http.MethodDelete, "/posts/abc", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/posts/999", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
