package models

import "time"

// MaxCommentLength is the upper bound on a comment body, matching the
// VARCHAR(500) column.
const MaxCommentLength = 500

// Comment represents a user comment on a media item.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MediaID   uint      `gorm:"not null" json:"media_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Body      string    `gorm:"size:500;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`

	Media Media `gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE" json:"-"`
	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// CommentItem is the listing row returned by the comments endpoint: the
// comment columns joined with the commenter's username.
type CommentItem struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
