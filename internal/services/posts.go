package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/blogflow/backend/internal/models"
	"github.com/blogflow/backend/internal/utils"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotAuthor    = errors.New("only the author may modify this post")
)

// PostService owns post records: listing, slug-addressed lookup, and
// author-gated mutation.
type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// PostInput carries the full set of writable post fields. The admin form
// always submits every field on create.
type PostInput struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	ImageURL string    `json:"image_url"`
	Summary  string    `json:"summary"`
	Content  string    `json:"content"`
	Tags     []string  `json:"tags"`
}

// PostUpdate carries the fields supplied on edit; nil fields keep their
// stored values.
type PostUpdate struct {
	Title    *string    `json:"title"`
	Category *string    `json:"category"`
	Date     *time.Time `json:"date"`
	ImageURL *string    `json:"image_url"`
	Summary  *string    `json:"summary"`
	Content  *string    `json:"content"`
	Tags     *[]string  `json:"tags"`
}

// CanModify is the single authorization predicate for edit and delete.
func CanModify(actor string, post *models.Post) bool {
	return post != nil && actor != "" && post.Author == actor
}

// List returns every post ordered by publication date descending, ties by
// insertion order.
func (s *PostService) List() ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.Order("date DESC, id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetBySlug returns the post for a slug. Slugs are not unique; when several
// posts share one, the earliest-saved post wins so the lookup stays
// deterministic. Ids are assigned in save order and never change, so later
// edits cannot reshuffle the winner.
func (s *PostService) GetBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := s.db.Where("slug = ?", slug).Order("id ASC").First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Create appends a new post authored by actor. The slug is derived from the
// title at save time.
func (s *PostService) Create(in PostInput, actor string) (*models.Post, error) {
	post := models.Post{
		Title:     in.Title,
		Category:  in.Category,
		Date:      in.Date,
		ImageURL:  in.ImageURL,
		Summary:   in.Summary,
		Content:   in.Content,
		Tags:      in.Tags,
		Slug:      utils.Slugify(in.Title),
		Author:    actor,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update overwrites the supplied fields of an existing post. Only the
// recorded author may update; the slug is recomputed from the (possibly
// edited) title on every save.
func (s *PostService) Update(id uint, in PostUpdate, actor string) (*models.Post, error) {
	post, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, post) {
		return nil, ErrNotAuthor
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Category != nil {
		post.Category = *in.Category
	}
	if in.Date != nil {
		post.Date = *in.Date
	}
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}
	if in.Summary != nil {
		post.Summary = *in.Summary
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Tags != nil {
		post.Tags = *in.Tags
	}
	post.Slug = utils.Slugify(post.Title)
	post.UpdatedAt = time.Now().UTC()

	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Same authorization rule as Update; deletion is
// unconditional once authorized.
func (s *PostService) Delete(id uint, actor string) error {
	post, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !CanModify(actor, post) {
		return ErrNotAuthor
	}
	return s.db.Delete(&models.Post{}, id).Error
}
