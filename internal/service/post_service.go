package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

// DefaultMaxPostPayload es el tamaño máximo serializado de un CreatePost.
const DefaultMaxPostPayload int64 = 1 << 20

// PostCacheMetrics recibe hits y misses del cache de listados.
type PostCacheMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// PostService implementa los casos de uso de posts para un Principal ya autenticado.
type PostService struct {
	logger     *zap.Logger
	store      repository.Store
	cache      PostListCache
	metrics    PostCacheMetrics
	maxPayload int64
	now        func() time.Time

	// writes cuenta escrituras; un listado leído mientras cambió no se cachea.
	cacheMu sync.Mutex
	writes  uint64
}

func NewPostService(logger *zap.Logger, store repository.Store, cache PostListCache, metrics PostCacheMetrics, maxPayload int64) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPostPayload
	}
	return &PostService{
		logger:     logger,
		store:      store,
		cache:      cache,
		metrics:    metrics,
		maxPayload: maxPayload,
		now:        time.Now,
	}
}

type CreatePostInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// PostPayloadSize mide el JSON compacto de input sin escapar <, > ni &.
func PostPayloadSize(input CreatePostInput) (int64, error) {
	var w byteCounter
	enc := json.NewEncoder(&w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(input); err != nil {
		return 0, err
	}
	// Encode agrega un salto de línea final.
	return w.n - 1, nil
}

type byteCounter struct {
	n int64
}

func (w *byteCounter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

func (s *PostService) CreatePost(ctx context.Context, principal domain.Principal, input CreatePostInput) (string, error) {
	if s.store == nil {
		return "", errServiceNotConfigured
	}

	size, err := PostPayloadSize(input)
	if err != nil {
		return "", ErrInvalidInput
	}
	if size > s.maxPayload {
		return "", ErrPayloadTooLarge
	}
	if principal.UserID == "" {
		return "", ErrUnauthorized
	}
	if strings.TrimSpace(input.Title) == "" {
		return "", ErrInvalidInput
	}

	createdAt := s.now().UTC()
	if input.CreatedAt != nil && !input.CreatedAt.IsZero() {
		createdAt = input.CreatedAt.UTC()
	}
	post := domain.Post{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		AuthorID:    principal.UserID,
		CreatedAt:   createdAt,
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Posts().Create(ctx, post); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrPostAlreadyExists
			case errors.Is(err, repository.ErrNotFound):
				return ErrTokenInvalid
			}
			return err
		}
		if _, err := tx.Posts().GetByID(ctx, post.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.invalidate(ctx, principal.UserID)
	return post.ID, nil
}

// DeletePost borra solo si el post pertenece al usuario autenticado.
func (s *PostService) DeletePost(ctx context.Context, principal domain.Principal, postID string) error {
	if s.store == nil {
		return errServiceNotConfigured
	}
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return ErrPostNotFound
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		deleted, err := tx.Posts().DeleteByIDAndAuthor(ctx, postID, principal.UserID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrPostNotFound
		}
		_, err = tx.Posts().GetByID(ctx, postID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil
		case err != nil:
			return err
		}
		return ErrPostNotFound
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, principal.UserID)
	return nil
}

// ListPosts devuelve los posts del usuario; una lista vacía es ErrNoPostsAssociated
// y nunca se cachea.
func (s *PostService) ListPosts(ctx context.Context, principal domain.Principal) ([]domain.Post, error) {
	if s.store == nil {
		return nil, errServiceNotConfigured
	}

	if s.cache != nil {
		if posts, ok := s.cache.Get(ctx, principal.UserID); ok {
			s.recordHit()
			return posts, nil
		}
		s.recordMiss()
	}

	seen := s.writeGeneration()
	posts, err := s.store.Posts().ListByAuthorEmail(ctx, principal.Email)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNoPostsAssociated
	}

	if s.cache != nil {
		s.cacheMu.Lock()
		if s.writes == seen {
			s.cache.Set(ctx, principal.UserID, posts)
		}
		s.cacheMu.Unlock()
	}
	return posts, nil
}

func (s *PostService) writeGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.writes
}

// invalidate incrementa la generación antes de borrar, así un Set concurrente
// o bien se descarta o bien queda antes del borrado.
func (s *PostService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	s.writes++
	s.cacheMu.Unlock()
	s.cache.Invalidate(ctx, userID)
}

func (s *PostService) recordHit() {
	if s.metrics != nil {
		s.metrics.RecordCacheHit()
	}
}

func (s *PostService) recordMiss() {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}
}
