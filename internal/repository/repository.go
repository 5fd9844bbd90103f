package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-score-api/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrIntegrityViolation indicates a write was rejected by a foreign key.
	ErrIntegrityViolation = errors.New("repository: integrity violation")
	// ErrDuplicate indicates a write collided with a unique constraint.
	ErrDuplicate = errors.New("repository: duplicate")
)

const (
	foreignKeyViolationCode = "23503"
	uniqueViolationCode     = "23505"
)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Movies *MoviesRepository
	Scores *ScoresRepository
	Users  *UsersRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Movies: &MoviesRepository{pool: pool},
		Scores: &ScoresRepository{pool: pool},
		Users:  &UsersRepository{pool: pool},
	}
}

// mapError translates driver errors into repository sentinels, keeping the
// original error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			return fmt.Errorf("%w (%s): %v", ErrIntegrityViolation, pgErr.ConstraintName, err)
		case uniqueViolationCode:
			return fmt.Errorf("%w (%s): %v", ErrDuplicate, pgErr.ConstraintName, err)
		}
	}
	return err
}
