// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"medley/internal/database"
	"medley/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateCredential(ctx context.Context, id uint, hash string) error
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type userRepository struct {
	h *database.Handle
}

// NewUserRepository creates a new user repository over the database handle.
func NewUserRepository(h *database.Handle) UserRepository {
	return &userRepository{h: h}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	db, err := r.h.Get()
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no account matches, so callers can
// give the same generic response for unknown accounts and bad credentials.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	db, err := r.h.Get()
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	db, err := r.h.Get()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(user).Error
}

// UpdateCredential replaces a stored credential, used by the lazy rehash of
// legacy plaintext rows after a successful login.
func (r *userRepository) UpdateCredential(ctx context.Context, id uint, hash string) error {
	db, err := r.h.Get()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	db, err := r.h.Get()
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	db, err := r.h.Get()
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Delete(&models.User{}, id)
	return res.RowsAffected, res.Error
}
