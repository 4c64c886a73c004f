package domain

import "time"

type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AuthorID    string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}
