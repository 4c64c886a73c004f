package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// DBTX es lo común entre *pgxpool.Pool y pgx.Tx que usan los repositorios.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool lo implementan *pgxpool.Pool y pgxmock.PgxPoolIface.
type PgxPool interface {
	DBTX
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Store agrupa los repositorios y define el límite transaccional de cada caso de uso.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	// WithTx ejecuta fn dentro de una transacción; si fn devuelve error se hace rollback.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// PgStore implementa Store sobre PostgreSQL.
type PgStore struct {
	pool  PgxPool
	users *PgUserRepository
	posts *PgPostRepository
}

func NewPgStore(pool PgxPool) *PgStore {
	return &PgStore{
		pool:  pool,
		users: NewPgUserRepository(pool),
		posts: NewPgPostRepository(pool),
	}
}

func (s *PgStore) Users() UserRepository { return s.users }

func (s *PgStore) Posts() PostRepository { return s.posts }

func (s *PgStore) WithTx(ctx context.Context, fn func(tx Store) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&pgTxStore{
		users: NewPgUserRepository(tx),
		posts: NewPgPostRepository(tx),
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTxStore struct {
	users *PgUserRepository
	posts *PgPostRepository
}

func (s *pgTxStore) Users() UserRepository { return s.users }

func (s *pgTxStore) Posts() PostRepository { return s.posts }

// WithTx dentro de una transacción reutiliza la transacción abierta.
func (s *pgTxStore) WithTx(_ context.Context, fn func(tx Store) error) error {
	return fn(s)
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23503"
}
