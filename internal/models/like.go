package models

import "time"

// Like represents a user's like on a media item.
// The combination of MediaID and UserID must be unique; row existence is the
// like state, and media.likes is kept in lockstep with it.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MediaID   uint      `gorm:"not null;uniqueIndex:idx_media_user" json:"media_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_media_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Media Media `gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE" json:"-"`
	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
