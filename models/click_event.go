package models

import (
	"time"
)

// ClickEvent is one immutable record of a redirect. Rows are only ever
// inserted, and bulk-deleted when the parent link is removed.
type ClickEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LinkID    uint      `json:"link_id" gorm:"index;not null"`
	Timestamp time.Time `json:"timestamp"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Referrer  string    `json:"referrer"`
	IPAddress string    `json:"ip_address"`
}
