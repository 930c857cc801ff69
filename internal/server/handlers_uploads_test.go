package server_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogflow/backend/internal/models"
	"github.com/blogflow/backend/internal/storage"
)

type fakeFileStorage struct {
	fail     bool
	lastKey  string
	lastType string
	received []byte
}

func (f *fakeFileStorage) UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string, progress storage.ProgressFunc) (string, error) {
	if f.fail {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.lastKey = objectKey
	f.lastType = contentType
	f.received = data
	if progress != nil {
		progress(1)
	}
	return "https://cdn.example.com/" + objectKey, nil
}

func (f *fakeFileStorage) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	return nil, storage.ErrObjectNotFound
}

func uploadImage(t *testing.T, e *echo.Echo, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUploadImageReturnsRetrievalURI(t *testing.T) {
	fake := &fakeFileStorage{}
	e, _, _ := newTestServerWithStorage(t, fake)
	token := signupToken(t, e, "alice@example.com", "alice")

	content := []byte("png bytes")
	rec := uploadImage(t, e, token, "cover.png", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	uri, _ := body["image_url"].(string)
	require.NotEmpty(t, uri)
	assert.True(t, strings.HasPrefix(uri, "https://cdn.example.com/"))
	assert.True(t, strings.HasSuffix(uri, "-cover.png"))

	assert.True(t, strings.HasSuffix(fake.lastKey, "-cover.png"))
	assert.Equal(t, "application/octet-stream", fake.lastType)
	assert.Equal(t, content, fake.received)
}

func TestUploadImageFailureLeavesPostsUntouched(t *testing.T) {
	fake := &fakeFileStorage{}
	e, _, db := newTestServerWithStorage(t, fake)
	token := signupToken(t, e, "alice@example.com", "alice")
	createPost(t, e, token, firstPostBody)

	fake.fail = true
	rec := uploadImage(t, e, token, "cover.png", []byte("png bytes"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Nil(t, body["image_url"])

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://images.example.com/cover.png", posts[0].ImageURL)
}

func TestUploadImageWithoutStorage(t *testing.T) {
	e, _, _ := newTestServer(t)
	token := signupToken(t, e, "alice@example.com", "alice")

	rec := uploadImage(t, e, token, "cover.png", []byte("png bytes"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUploadImageRequiresSession(t *testing.T) {
	e, _, _ := newTestServerWithStorage(t, &fakeFileStorage{})

	rec := uploadImage(t, e, "", "cover.png", []byte("png bytes"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadImageRequiresFile(t *testing.T) {
	e, _, _ := newTestServerWithStorage(t, &fakeFileStorage{})
	token := signupToken(t, e, "alice@example.com", "alice")

	rec := doJSON(e, http.MethodPost, "/uploads", "{}", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
