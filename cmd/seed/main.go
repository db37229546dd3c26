// Command seed populates the database with demo content for local
// development.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"medley/internal/auth"
	"medley/internal/config"
	"medley/internal/database"
	"medley/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

func main() {
	numUsers := flag.Int("users", 10, "number of demo users to create")
	numMedia := flag.Int("media", 40, "number of demo media items to create")
	clean := flag.Bool("clean", false, "delete existing media and non-admin users first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Bootstrap(db, cfg); err != nil {
		log.Fatalf("Failed to bootstrap database: %v", err)
	}

	if *clean {
		if err := db.Where("1 = 1").Delete(&models.Media{}).Error; err != nil {
			log.Fatalf("Failed to clean media: %v", err)
		}
		if err := db.Where("role <> ?", models.RoleAdmin).Delete(&models.User{}).Error; err != nil {
			log.Fatalf("Failed to clean users: %v", err)
		}
	}

	if err := seed(db, *numUsers, *numMedia); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users and %d media items", *numUsers, *numMedia)
}

func seed(db *gorm.DB, numUsers, numMedia int) error {
	users, err := seedUsers(db, numUsers)
	if err != nil {
		return err
	}

	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return err
	}

	media, err := seedMedia(db, users, categories, numMedia)
	if err != nil {
		return err
	}

	return seedEngagement(db, users, media)
}

func seedUsers(db *gorm.DB, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		hashed, err := auth.HashPassword(gofakeit.Password(true, true, true, true, false, 16))
		if err != nil {
			return nil, err
		}
		user := models.User{
			Username:     fmt.Sprintf("%s_%d", gofakeit.Username(), i),
			Email:        fmt.Sprintf("demo%d_%s", i, gofakeit.Email()),
			PasswordHash: hashed,
			Role:         models.RoleUser,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func seedMedia(db *gorm.DB, users []models.User, categories []models.Category, n int) ([]models.Media, error) {
	media := make([]models.Media, 0, n)
	for i := 0; i < n; i++ {
		owner := users[rand.Intn(len(users))]
		item := models.Media{
			UserID:     owner.ID,
			Title:      gofakeit.Sentence(4),
			Type:       models.MediaTypeImage,
			IsApproved: true,
			URL:        fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		}
		if rand.Intn(5) == 0 {
			item.Type = models.MediaTypeVideo
			item.URL = fmt.Sprintf("https://cdn.example.com/video/%s.mp4", gofakeit.UUID())
		}
		if len(categories) > 0 && rand.Intn(4) > 0 {
			id := categories[rand.Intn(len(categories))].ID
			item.CategoryID = &id
		}
		if err := db.Create(&item).Error; err != nil {
			return nil, err
		}
		media = append(media, item)
	}
	return media, nil
}

// seedEngagement adds comments and likes. Like rows and the media counter
// are written together so the seeded data keeps the invariant the API
// maintains.
func seedEngagement(db *gorm.DB, users []models.User, media []models.Media) error {
	for _, item := range media {
		for _, user := range users {
			if rand.Intn(3) == 0 {
				err := db.Transaction(func(tx *gorm.DB) error {
					if err := tx.Create(&models.Like{MediaID: item.ID, UserID: user.ID}).Error; err != nil {
						return err
					}
					return tx.Model(&models.Media{}).Where("id = ?", item.ID).
						Update("likes", gorm.Expr("likes + 1")).Error
				})
				if err != nil {
					return err
				}
			}
			if rand.Intn(4) == 0 {
				comment := models.Comment{
					MediaID: item.ID,
					UserID:  user.ID,
					Body:    gofakeit.Sentence(8),
				}
				if err := db.Create(&comment).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
