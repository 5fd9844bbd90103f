package service

import (
	"context"

	"github.com/Clark-Hu/movie-score-api/internal/domain"
)

// MovieGateway persists movies. Implemented by repository.MoviesRepository.
type MovieGateway interface {
	SearchByTitle(ctx context.Context, text string, page domain.PageRequest) (domain.Page[domain.Movie], error)
	FindByID(ctx context.Context, id int64) (domain.Movie, error)
	FindByIDForUpdate(ctx context.Context, id int64) (domain.Movie, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, movie domain.Movie) (domain.Movie, error)
	DeleteByID(ctx context.Context, id int64) error
}

// ScoreGateway persists scores. Implemented by repository.ScoresRepository.
type ScoreGateway interface {
	Save(ctx context.Context, score domain.Score) (domain.Score, error)
	ValuesByMovie(ctx context.Context, movieID int64) ([]float64, error)
}

// UserGateway persists users. Implemented by repository.UsersRepository.
type UserGateway interface {
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	SearchUserAndRolesByUsername(ctx context.Context, username string) ([]domain.UserRole, error)
	Create(ctx context.Context, user domain.User, authorities []string) (domain.User, error)
}

// Transactor runs fn as one unit of work. Implemented by store.Store.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
