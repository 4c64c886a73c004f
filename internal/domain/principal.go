package domain

// Principal identifica al usuario autenticado de una request.
type Principal struct {
	UserID string
	Email  string
}
