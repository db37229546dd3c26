package repository

import (
	"context"

	"medley/internal/database"
	"medley/internal/models"
)

// CommentListLimit bounds the per-media comment listing.
const CommentListLimit = 100

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByMedia(ctx context.Context, mediaID uint) ([]models.CommentItem, error)
}

type commentRepository struct {
	h *database.Handle
}

// NewCommentRepository creates a new CommentRepository over the database handle.
func NewCommentRepository(h *database.Handle) CommentRepository {
	return &commentRepository{h: h}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	db, err := r.h.Get()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) ListByMedia(ctx context.Context, mediaID uint) ([]models.CommentItem, error) {
	db, err := r.h.Get()
	if err != nil {
		return nil, err
	}
	items := []models.CommentItem{}
	err = db.WithContext(ctx).Table("comments").
		Select("comments.id, comments.body, comments.created_at, users.username").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.media_id = ?", mediaID).
		Order("comments.created_at DESC, comments.id DESC").
		Limit(CommentListLimit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
