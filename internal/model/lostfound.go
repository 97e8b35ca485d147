package model

import "time"

// LostFoundItem is a lost or found report posted by a user.
type LostFoundItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Contact     string    `json:"contact"`
	Status      string    `json:"status"`
	UserEmail   string    `json:"user_email"`
	ImageURL    string    `json:"image_url,omitempty"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lost/found item types.
const (
	ItemTypeLost  = "Lost"
	ItemTypeFound = "Found"
)

// Lost/found item statuses, in lifecycle order.
const (
	ItemStatusPending   = "Pending"
	ItemStatusRecovered = "Recovered"
)

// LostFoundSequence is the item status lifecycle, initial state first.
var LostFoundSequence = []string{ItemStatusPending, ItemStatusRecovered}
