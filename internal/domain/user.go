package domain

import "time"

// User es la cuenta propietaria de posts. Token guarda el último access token emitido.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Token        string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
