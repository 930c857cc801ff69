package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blogflow/backend/internal/services"
)

type createPostRequest struct {
	Title    string   `json:"title" example:"My First Post" binding:"required"`
	Category string   `json:"category" example:"Design" binding:"required"`
	Date     string   `json:"date" example:"2024-01-01" binding:"required"`
	ImageURL string   `json:"image_url" example:"https://images.example.com/cover.png" binding:"required"`
	Summary  string   `json:"summary" example:"A short teaser"`
	Content  string   `json:"content" example:"Body text"`
	Tags     []string `json:"tags" example:"design,stories"`
}

type updatePostRequest struct {
	Title    *string   `json:"title"`
	Category *string   `json:"category"`
	Date     *string   `json:"date"`
	ImageURL *string   `json:"image_url"`
	Summary  *string   `json:"summary"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
}

// ListPosts godoc
// @Summary List posts
// @Description All posts ordered by publication date, most recent first
// @Tags Posts
// @Produce json
// @Success 200 {object} map[string]interface{} "Posts"
// @Failure 500 {object} simpleResponse
// @Router /posts [get]
func (s *Server) ListPosts(c echo.Context) error {
	posts, err := s.Posts.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to load posts."})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "posts": posts})
}

// GetPostBySlug godoc
// @Summary Get a post by slug
// @Tags Posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} map[string]interface{} "Post"
// @Failure 404 {object} simpleResponse
// @Failure 500 {object} simpleResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPostBySlug(c echo.Context) error {
	post, err := s.Posts.GetBySlug(c.Param("slug"))
	if errors.Is(err, services.ErrPostNotFound) {
		return c.JSON(http.StatusNotFound, simpleResponse{Success: false, Message: "Post not found."})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to load post."})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "post": post})
}

// CreatePost godoc
// @Summary Publish a new post
// @Description Creates a post authored by the current session's user; the slug is derived from the title
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "Post fields"
// @Success 201 {object} map[string]interface{} "Created post"
// @Failure 400 {object} simpleResponse
// @Failure 401 {object} simpleResponse
// @Failure 500 {object} simpleResponse
// @Router /posts [post]
func (s *Server) CreatePost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid payload"})
	}

	if req.Title == "" || req.Category == "" || req.Date == "" || req.ImageURL == "" {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Title, category, date, and image URL are required."})
	}
	date, err := parsePostDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Date must be in YYYY-MM-DD format."})
	}

	post, err := s.Posts.Create(services.PostInput{
		Title:    req.Title,
		Category: req.Category,
		Date:     date,
		ImageURL: req.ImageURL,
		Summary:  req.Summary,
		Content:  req.Content,
		Tags:     req.Tags,
	}, actor(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to save post."})
	}

	s.Hub.NotifyChanged()
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "post": post})
}

// UpdatePost godoc
// @Summary Update a post
// @Description Overwrites the supplied fields; only the recorded author may update
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body updatePostRequest true "Fields to overwrite"
// @Success 200 {object} map[string]interface{} "Updated post"
// @Failure 400 {object} simpleResponse
// @Failure 403 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Failure 500 {object} simpleResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c echo.Context) error {
	id, err := parsePostID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid post id."})
	}

	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid payload"})
	}

	update := services.PostUpdate{
		Title:    req.Title,
		Category: req.Category,
		ImageURL: req.ImageURL,
		Summary:  req.Summary,
		Content:  req.Content,
		Tags:     req.Tags,
	}
	if req.Date != nil {
		date, err := parsePostDate(*req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Date must be in YYYY-MM-DD format."})
		}
		update.Date = &date
	}

	post, err := s.Posts.Update(id, update, actor(c))
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		return c.JSON(http.StatusNotFound, simpleResponse{Success: false, Message: "Post not found."})
	case errors.Is(err, services.ErrNotAuthor):
		return c.JSON(http.StatusForbidden, simpleResponse{Success: false, Message: "Only the author may edit this post."})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to save post."})
	}

	s.Hub.NotifyChanged()
	return c.JSON(http.StatusOK, map[string]any{"success": true, "post": post})
}

// DeletePost godoc
// @Summary Delete a post
// @Description Irreversible; only the recorded author may delete. Confirmation is a client-side concern.
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} simpleResponse
// @Failure 400 {object} simpleResponse
// @Failure 403 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Failure 500 {object} simpleResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c echo.Context) error {
	id, err := parsePostID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid post id."})
	}

	err = s.Posts.Delete(id, actor(c))
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		return c.JSON(http.StatusNotFound, simpleResponse{Success: false, Message: "Post not found."})
	case errors.Is(err, services.ErrNotAuthor):
		return c.JSON(http.StatusForbidden, simpleResponse{Success: false, Message: "Only the author may delete this post."})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to delete post."})
	}

	s.Hub.NotifyChanged()
	return c.JSON(http.StatusOK, simpleResponse{Success: true, Message: "Post deleted."})
}

func parsePostID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func parsePostDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}
