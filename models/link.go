package models

import (
	"time"
)

// Link maps a short code (or caller-chosen alias) to a destination URL.
// ShortCode and CustomAlias share one lookup namespace: a redirect request
// matches at most one link across both columns, so uniqueness checks at
// creation time run against the union, not each column on its own.
type Link struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	UserID      uint         `json:"user_id" gorm:"index;not null"`
	OriginalURL string       `json:"original_url" gorm:"type:text;not null"`
	ShortCode   string       `json:"short_code" gorm:"unique;not null"`
	CustomAlias *string      `json:"custom_alias,omitempty" gorm:"unique"`
	ExpiresAt   *time.Time   `json:"expires_at"`
	ClickCount  int          `json:"click_count" gorm:"default:0"`
	CreatedAt   time.Time    `json:"created_at"`
	ClickEvents []ClickEvent `json:"-" gorm:"foreignKey:LinkID"`
}

// Expired reports whether the link is past its expiry timestamp. Links
// without an expiry never expire.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}
