package database

import (
	"fmt"
	"log/slog"

	"medley/internal/auth"
	"medley/internal/config"
	"medley/internal/middleware"
	"medley/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bootstrap migrates the schema, seeds the fixed data, and runs the startup
// maintenance pass.
func Bootstrap(db *gorm.DB, cfg *config.Config) error {
	if err := Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := SeedCategories(db); err != nil {
		return fmt.Errorf("category seed failed: %w", err)
	}
	if err := SeedAdmin(db, cfg); err != nil {
		return fmt.Errorf("admin seed failed: %w", err)
	}
	if err := Maintenance(db); err != nil {
		return fmt.Errorf("startup maintenance failed: %w", err)
	}
	return nil
}

// SeedCategories inserts the fixed category set, ignoring rows that already
// exist.
func SeedCategories(db *gorm.DB) error {
	for _, name := range models.SeedCategories {
		category := models.Category{Name: name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the admin account from configuration when it does not
// already exist. The credential is stored hashed; legacy plaintext admin
// rows keep working through the dual-mode login path.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	middleware.Logger.Info("admin account created", slog.String("email", cfg.AdminEmail))
	return nil
}

// Maintenance removes leftover sample media and exact-URL duplicates, as the
// service has always done at startup.
func Maintenance(db *gorm.DB) error {
	removed := db.Where("url LIKE ?", "%sample%").Delete(&models.Media{})
	if removed.Error != nil {
		return removed.Error
	}
	if removed.RowsAffected > 0 {
		middleware.Logger.Info("sample media removed", slog.Int64("rows", removed.RowsAffected))
	}

	// Among rows sharing a URL, keep the one with the largest id.
	deduped := db.Exec("DELETE FROM media WHERE id NOT IN (SELECT MAX(id) FROM media GROUP BY url)")
	if deduped.Error != nil {
		return deduped.Error
	}
	if deduped.RowsAffected > 0 {
		middleware.Logger.Info("duplicate media removed", slog.Int64("rows", deduped.RowsAffected))
	}
	return nil
}
