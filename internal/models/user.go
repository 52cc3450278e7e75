package models

import "time"

// User is an account that can own playlists and submit ratings.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
