package models

// SeedCategories is the fixed set inserted at bootstrap.
var SeedCategories = []string{"General", "Photos", "Videos"}

// Category groups media items. Deleting a category clears the reference on
// its media rows rather than deleting them.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:60;unique;not null" json:"name"`
}
