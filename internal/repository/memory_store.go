package repository

import (
	"context"
	"sort"
	"sync"

	"blog-api/internal/domain"
)

// MemoryStore es un Store en memoria para tests y desarrollo local.
// Las transacciones se serializan y hacen rollback restaurando un snapshot;
// las escrituras fuera de una transacción esperan a que termine la abierta.
type MemoryStore struct {
	txMu sync.Mutex

	mu    sync.Mutex
	users map[string]domain.User
	posts map[string]domain.Post
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]domain.User),
		posts: make(map[string]domain.Post),
	}
}

func (s *MemoryStore) Users() UserRepository { return memoryUsers{s: s} }

func (s *MemoryStore) Posts() PostRepository { return memoryPosts{s: s} }

func (s *MemoryStore) WithTx(_ context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	users := make(map[string]domain.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	posts := make(map[string]domain.Post, len(s.posts))
	for k, v := range s.posts {
		posts[k] = v
	}
	s.mu.Unlock()

	if err := fn(memoryTx{s}); err != nil {
		s.mu.Lock()
		s.users = users
		s.posts = posts
		s.mu.Unlock()
		return err
	}
	return nil
}

type memoryTx struct{ s *MemoryStore }

func (t memoryTx) Users() UserRepository { return memoryUsers{s: t.s, inTx: true} }

func (t memoryTx) Posts() PostRepository { return memoryPosts{s: t.s, inTx: true} }

func (t memoryTx) WithTx(_ context.Context, fn func(tx Store) error) error {
	return fn(t)
}

// lockWrite toma txMu fuera de una transacción para que un rollback no borre
// escrituras hechas mientras estaba abierta.
func (s *MemoryStore) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

type memoryUsers struct {
	s    *MemoryStore
	inTx bool
}

func (m memoryUsers) Create(_ context.Context, user domain.User) error {
	defer m.s.lockWrite(m.inTx)()
	if _, ok := m.s.users[user.ID]; ok {
		return ErrDuplicate
	}
	for _, u := range m.s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	m.s.users[user.ID] = user
	return nil
}

func (m memoryUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (m memoryUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, ErrNotFound
}

func (m memoryUsers) GetByEmailForUpdate(ctx context.Context, email string) (domain.User, error) {
	return m.GetByEmail(ctx, email)
}

func (m memoryUsers) UpdateToken(_ context.Context, id, token string) error {
	defer m.s.lockWrite(m.inTx)()
	u, ok := m.s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Token = token
	m.s.users[id] = u
	return nil
}

type memoryPosts struct {
	s    *MemoryStore
	inTx bool
}

func (m memoryPosts) Create(_ context.Context, post domain.Post) error {
	defer m.s.lockWrite(m.inTx)()
	if _, ok := m.s.posts[post.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := m.s.users[post.AuthorID]; !ok {
		return ErrNotFound
	}
	m.s.posts[post.ID] = post
	return nil
}

func (m memoryPosts) GetByID(_ context.Context, id string) (domain.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.posts[id]
	if !ok {
		return domain.Post{}, ErrNotFound
	}
	return p, nil
}

func (m memoryPosts) ListByAuthorEmail(_ context.Context, email string) ([]domain.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	authorID := ""
	for _, u := range m.s.users {
		if u.Email == email {
			authorID = u.ID
			break
		}
	}
	if authorID == "" {
		return nil, nil
	}
	var posts []domain.Post
	for _, p := range m.s.posts {
		if p.AuthorID == authorID {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m memoryPosts) DeleteByIDAndAuthor(_ context.Context, id, authorID string) (bool, error) {
	defer m.s.lockWrite(m.inTx)()
	p, ok := m.s.posts[id]
	if !ok || p.AuthorID != authorID {
		return false, nil
	}
	delete(m.s.posts, id)
	return true, nil
}
