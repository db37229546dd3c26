package repository

import (
	"context"
	"errors"

	"medley/internal/database"
	"medley/internal/models"

	"gorm.io/gorm"
)

// PublicListLimit bounds the public media listing.
const PublicListLimit = 200

// MediaRepository defines the interface for media data operations
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id uint) (*models.Media, error)
	ListApproved(ctx context.Context) ([]models.MediaItem, error)
	ListAll(ctx context.Context) ([]models.MediaItem, error)
	Delete(ctx context.Context, id uint) (int64, error)
	RemoveSamples(ctx context.Context, pattern string) (int64, error)
	RemoveDuplicates(ctx context.Context) (int64, error)
	Clear(ctx context.Context) (int64, error)
	EnsureCategory(ctx context.Context, name string) (uint, error)
	ToggleLike(ctx context.Context, mediaID, userID uint) (liked bool, err error)
	LikedMediaIDs(ctx context.Context, userID uint) ([]uint, error)
}

type mediaRepository struct {
	h *database.Handle
}

// NewMediaRepository creates a new media repository over the database handle.
func NewMediaRepository(h *database.Handle) MediaRepository {
	return &mediaRepository{h: h}
}

func (r *mediaRepository) Create(ctx context.Context, media *models.Media) error {
	db, err := r.h.Get()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(media).Error
}

func (r *mediaRepository) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	db, err := r.h.Get()
	if err != nil {
		return nil, err
	}
	var media models.Media
	if err := db.WithContext(ctx).First(&media, id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) ListApproved(ctx context.Context) ([]models.MediaItem, error) {
	return r.list(ctx, true, PublicListLimit)
}

func (r *mediaRepository) ListAll(ctx context.Context) ([]models.MediaItem, error) {
	return r.list(ctx, false, 0)
}

func (r *mediaRepository) list(ctx context.Context, approvedOnly bool, limit int) ([]models.MediaItem, error) {
	db, err := r.h.Get()
	if err != nil {
		return nil, err
	}

	query := db.WithContext(ctx).Table("media").
		Select("media.id, media.title, media.url, media.type, media.likes, media.is_approved, media.created_at, categories.name AS category").
		Joins("LEFT JOIN categories ON categories.id = media.category_id").
		Order("media.created_at DESC, media.id DESC")
	if approvedOnly {
		query = query.Where("media.is_approved = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	items := []models.MediaItem{}
	if err := query.Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mediaRepository) Delete(ctx context.Context, id uint) (int64, error) {
	db, err := r.h.Get()
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Delete(&models.Media{}, id)
	return res.RowsAffected, res.Error
}

func (r *mediaRepository) RemoveSamples(ctx context.Context, pattern string) (int64, error) {
	db, err := r.h.Get()
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Where("url LIKE ?", pattern).Delete(&models.Media{})
	return res.RowsAffected, res.Error
}

// RemoveDuplicates deletes rows sharing a URL, retaining the one with the
// largest id per URL.
func (r *mediaRepository) RemoveDuplicates(ctx context.Context) (int64, error) {
	db, err := r.h.Get()
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).
		Exec("DELETE FROM media WHERE id NOT IN (SELECT MAX(id) FROM media GROUP BY url)")
	return res.RowsAffected, res.Error
}

func (r *mediaRepository) Clear(ctx context.Context) (int64, error) {
	db, err := r.h.Get()
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Where("1 = 1").Delete(&models.Media{})
	return res.RowsAffected, res.Error
}

// EnsureCategory upserts a category by name and returns its id.
func (r *mediaRepository) EnsureCategory(ctx context.Context, name string) (uint, error) {
	db, err := r.h.Get()
	if err != nil {
		return 0, err
	}
	var category models.Category
	if err := db.WithContext(ctx).Where("name = ?", name).
		FirstOrCreate(&category, models.Category{Name: name}).Error; err != nil {
		return 0, err
	}
	return category.ID, nil
}

// ToggleLike flips the (media, user) like membership and adjusts the
// denormalized counter in the same transaction, so the pair can never drift
// under concurrent toggles.
func (r *mediaRepository) ToggleLike(ctx context.Context, mediaID, userID uint) (bool, error) {
	db, err := r.h.Get()
	if err != nil {
		return false, err
	}

	var liked bool
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		findErr := tx.Where("media_id = ? AND user_id = ?", mediaID, userID).First(&existing).Error

		switch {
		case findErr == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Media{}).Where("id = ?", mediaID).
				Update("likes", gorm.Expr("likes - 1")).Error; err != nil {
				return err
			}
			liked = false
			return nil
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Like{MediaID: mediaID, UserID: userID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Media{}).Where("id = ?", mediaID).
				Update("likes", gorm.Expr("likes + 1")).Error; err != nil {
				return err
			}
			liked = true
			return nil
		default:
			return findErr
		}
	})
	return liked, err
}

func (r *mediaRepository) LikedMediaIDs(ctx context.Context, userID uint) ([]uint, error) {
	db, err := r.h.Get()
	if err != nil {
		return nil, err
	}
	ids := []uint{}
	if err := db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).Pluck("media_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
