package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/repository"
)

// MovieInput carries the writable movie fields.
type MovieInput struct {
	Title string
	Score float64
	Count int
	Image string
}

// MovieService orchestrates movie CRUD.
type MovieService struct {
	movies MovieGateway
	tx     Transactor
	logger *slog.Logger
}

// NewMovieService wires a MovieService.
func NewMovieService(movies MovieGateway, tx Transactor, logger *slog.Logger) *MovieService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MovieService{movies: movies, tx: tx, logger: logger.With("component", "movie_service")}
}

// FindAll returns a page of movies whose title contains title.
func (s *MovieService) FindAll(ctx context.Context, title string, page domain.PageRequest) (domain.Page[domain.Movie], error) {
	const op = "movie.findAll"
	result, err := s.movies.SearchByTitle(ctx, title, page)
	if err != nil {
		s.logger.Error("search movies failed", "error", err, "title", title)
		return domain.Page[domain.Movie]{}, fail(KindInternal, op, err)
	}
	return result, nil
}

// FindByID returns the movie with id.
func (s *MovieService) FindByID(ctx context.Context, id int64) (domain.Movie, error) {
	const op = "movie.findById"
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return domain.Movie{}, s.translate(op, id, err)
	}
	return movie, nil
}

// Insert stores a new movie.
func (s *MovieService) Insert(ctx context.Context, in MovieInput) (domain.Movie, error) {
	const op = "movie.insert"
	movie, err := s.movies.Save(ctx, toMovie(0, in))
	if err != nil {
		s.logger.Error("insert movie failed", "error", err, "title", in.Title)
		return domain.Movie{}, fail(KindInternal, op, err)
	}
	s.logger.Info("movie created", "movie_id", movie.ID)
	return movie, nil
}

// Update overwrites the movie's fields. Unknown ids are not written.
func (s *MovieService) Update(ctx context.Context, id int64, in MovieInput) (domain.Movie, error) {
	const op = "movie.update"
	var updated domain.Movie
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.movies.FindByID(ctx, id); err != nil {
			return s.translate(op, id, err)
		}
		saved, err := s.movies.Save(ctx, toMovie(id, in))
		if err != nil {
			return s.translate(op, id, err)
		}
		updated = saved
		return nil
	})
	if err != nil {
		return domain.Movie{}, err
	}
	return updated, nil
}

// Delete removes a movie that no score references.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	const op = "movie.delete"
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.movies.ExistsByID(ctx, id)
		if err != nil {
			return fail(KindInternal, op, err)
		}
		if !exists {
			return fail(KindNotFound, op, ErrMovieNotFound)
		}
		if err := s.movies.DeleteByID(ctx, id); err != nil {
			return s.translate(op, id, err)
		}
		s.logger.Info("movie deleted", "movie_id", id)
		return nil
	})
}

func (s *MovieService) translate(op string, id int64, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(KindNotFound, op, ErrMovieNotFound)
	case errors.Is(err, repository.ErrIntegrityViolation):
		s.logger.Debug("movie still referenced", "movie_id", id)
		return fail(KindConflict, op, ErrIntegrityViolation)
	default:
		s.logger.Error("movie operation failed", "op", op, "movie_id", id, "error", err)
		return fail(KindInternal, op, err)
	}
}

func toMovie(id int64, in MovieInput) domain.Movie {
	return domain.Movie{
		ID:    id,
		Title: strings.TrimSpace(in.Title),
		Score: in.Score,
		Count: in.Count,
		Image: strings.TrimSpace(in.Image),
	}
}
