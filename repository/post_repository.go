// Package repository isolates all post persistence behind a narrow interface
// so handlers and the admin workflow never touch gorm directly and tests can
// substitute an in-memory fake.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/healthyfries/reviewsite/models"
)

// ErrNotFound is returned when an id does not resolve to a stored post.
var ErrNotFound = errors.New("post not found")

// PostRepository exposes the four read shapes and three write operations the
// site needs. All reads ordered by date desc unless stated otherwise.
type PostRepository interface {
	ListAll(ctx context.Context) ([]models.Post, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Post, error)
	ListLatest(ctx context.Context, limit int) ([]models.Post, error)
	ListTopByViews(ctx context.Context, limit int) ([]models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Insert(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
}

type gormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates the gorm-backed repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

func (r *gormPostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Order("date DESC").Find(&posts).Error
	return posts, err
}

func (r *gormPostRepository) ListFeatured(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("date DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *gormPostRepository) ListLatest(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Order("date DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *gormPostRepository) ListTopByViews(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Order("views DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *gormPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *gormPostRepository) Insert(ctx context.Context, post *models.Post) error {
	// ID, date and views are store-assigned regardless of what the caller set.
	post.ID = 0
	post.Views = 0
	return r.db.WithContext(ctx).Create(post).Error
}

// Update replaces the full editable record. The stored view counter is
// carried over since views are not part of the editable shape.
func (r *gormPostRepository) Update(ctx context.Context, post *models.Post) error {
	var current models.Post
	if err := r.db.WithContext(ctx).First(&current, post.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	post.Views = current.Views
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *gormPostRepository) Delete(ctx context.Context, id uint) error {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).Delete(&post).Error
}

// IncrementViews bumps the counter atomically without touching the date.
func (r *gormPostRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
