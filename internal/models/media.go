package models

import "time"

// Media types accepted by the API.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Media represents a shared image or video. The file itself lives on a CDN;
// only the URL is stored.
type Media struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	CategoryID *uint     `json:"category_id,omitempty"`
	Title      string    `gorm:"size:160" json:"title"`
	URL        string    `gorm:"type:text;not null" json:"url"`
	Type       string    `gorm:"size:10;not null" json:"type"`
	IsApproved bool      `gorm:"not null" json:"is_approved"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt  time.Time `json:"created_at"`

	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName overrides GORM's pluralization; "media" is already plural.
func (Media) TableName() string { return "media" }

// ValidMediaType reports whether t is one of the accepted media types.
func ValidMediaType(t string) bool {
	return t == MediaTypeImage || t == MediaTypeVideo
}

// MediaItem is the listing row returned by the public and admin media
// endpoints: the media columns joined with the category name.
type MediaItem struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Likes      int       `json:"likes"`
	IsApproved bool      `json:"is_approved"`
	Category   *string   `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
}
