package models

// Rating records one user's score for a song. A user rates a given song
// at most once; re-rating updates the stored value in place.
type Rating struct {
	Username   string  `json:"username"`
	SongID     int64   `json:"song_id"`
	UserRating float64 `json:"user_rating"`
}
