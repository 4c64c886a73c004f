package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"blog-api/internal/domain"
)

// PostRepository define el contrato de persistencia para posts.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (domain.Post, error)
	ListByAuthorEmail(ctx context.Context, email string) ([]domain.Post, error)
	// DeleteByIDAndAuthor devuelve false si ninguna fila coincide con (id, autor).
	DeleteByIDAndAuthor(ctx context.Context, id, authorID string) (bool, error)
}

type PgPostRepository struct {
	db DBTX
}

func NewPgPostRepository(db DBTX) *PgPostRepository {
	return &PgPostRepository{db: db}
}

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post) error {
	const query = `
		INSERT INTO posts (id, title, description, created_at, created_by_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Description,
		post.CreatedAt,
		post.AuthorID,
	)
	switch {
	case isUniqueViolation(err):
		return ErrDuplicate
	case isForeignKeyViolation(err):
		return ErrNotFound
	}
	return err
}

func (r *PgPostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	const query = `
		SELECT id, title, description, created_by_id, created_at
		FROM posts
		WHERE id = $1
	`
	var p domain.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.AuthorID,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, ErrNotFound
	}
	return p, err
}

func (r *PgPostRepository) ListByAuthorEmail(ctx context.Context, email string) ([]domain.Post, error) {
	const query = `
		SELECT p.id, p.title, p.description, p.created_by_id, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.created_by_id
		WHERE u.email = $1
		ORDER BY p.created_at DESC, p.id
	`
	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
			&p.AuthorID,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PgPostRepository) DeleteByIDAndAuthor(ctx context.Context, id, authorID string) (bool, error) {
	const query = `
		DELETE FROM posts
		WHERE id = $1 AND created_by_id = $2
	`
	tag, err := r.db.Exec(ctx, query, id, authorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
