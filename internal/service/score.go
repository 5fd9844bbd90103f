package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/repository"
)

// ScoreInput is a score submission for one movie.
type ScoreInput struct {
	MovieID int64
	Value   float64
}

// Authenticator resolves the principal to a stored user. UserService
// implements it.
type Authenticator interface {
	Authenticated(ctx context.Context, principal auth.Principal) (domain.User, error)
}

// ScoreService records scores and keeps movie aggregates in sync.
type ScoreService struct {
	movies MovieGateway
	scores ScoreGateway
	users  Authenticator
	tx     Transactor
	logger *slog.Logger
}

// NewScoreService wires a ScoreService.
func NewScoreService(movies MovieGateway, scores ScoreGateway, users Authenticator, tx Transactor, logger *slog.Logger) *ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{
		movies: movies,
		scores: scores,
		users:  users,
		tx:     tx,
		logger: logger.With("component", "score_service"),
	}
}

// SaveScore records principal's score for the movie, overwriting any earlier
// score by the same user, and returns the movie with its recomputed average
// and count.
func (s *ScoreService) SaveScore(ctx context.Context, principal auth.Principal, in ScoreInput) (domain.Movie, error) {
	const op = "score.save"
	if !domain.ValidScore(in.Value) {
		return domain.Movie{}, fail(KindInvalid, op, ErrScoreOutOfRange)
	}

	var result domain.Movie
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Row lock: scores for one movie are recomputed one at a time.
		movie, err := s.movies.FindByIDForUpdate(ctx, in.MovieID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(KindNotFound, op, ErrMovieNotFound)
			}
			return fail(KindInternal, op, err)
		}

		user, err := s.users.Authenticated(ctx, principal)
		if err != nil {
			return err
		}

		if _, err := s.scores.Save(ctx, domain.Score{MovieID: movie.ID, UserID: user.ID, Value: in.Value}); err != nil {
			return fail(KindInternal, op, err)
		}

		values, err := s.scores.ValuesByMovie(ctx, movie.ID)
		if err != nil {
			return fail(KindInternal, op, err)
		}
		movie.ApplyAggregate(values)

		saved, err := s.movies.Save(ctx, movie)
		if err != nil {
			return fail(KindInternal, op, err)
		}
		result = saved
		return nil
	})
	if err != nil {
		if KindOf(err) == KindInternal {
			s.logger.Error("save score failed", "error", err, "movie_id", in.MovieID, "username", principal.Username)
		}
		return domain.Movie{}, err
	}

	s.logger.Info("score saved",
		"movie_id", result.ID,
		"username", principal.Username,
		"score", result.Score,
		"count", result.Count)
	return result, nil
}
