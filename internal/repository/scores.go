package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/store"
)

// ScoresRepository provides helpers for movie scores.
type ScoresRepository struct {
	pool *pgxpool.Pool
}

// Save inserts or overwrites the score for (MovieID, UserID).
func (r *ScoresRepository) Save(ctx context.Context, score domain.Score) (domain.Score, error) {
	const query = `
        INSERT INTO tb_score (movie_id, user_id, value)
        VALUES ($1,$2,$3)
        ON CONFLICT (movie_id, user_id)
        DO UPDATE SET value = EXCLUDED.value
        RETURNING movie_id, user_id, value
    `

	var saved domain.Score
	err := store.Conn(ctx, r.pool).QueryRow(ctx, query, score.MovieID, score.UserID, score.Value).Scan(
		&saved.MovieID,
		&saved.UserID,
		&saved.Value,
	)
	if err != nil {
		return domain.Score{}, mapError(err)
	}
	return saved, nil
}

// Find retrieves the score a user gave a movie. The HTTP surface never reads
// single scores; tests use it to inspect stored rows.
func (r *ScoresRepository) Find(ctx context.Context, movieID, userID int64) (domain.Score, error) {
	const query = `
        SELECT movie_id, user_id, value
        FROM tb_score
        WHERE movie_id = $1 AND user_id = $2
    `
	var score domain.Score
	err := store.Conn(ctx, r.pool).QueryRow(ctx, query, movieID, userID).Scan(
		&score.MovieID,
		&score.UserID,
		&score.Value,
	)
	if err != nil {
		return domain.Score{}, mapError(err)
	}
	return score, nil
}

// ValuesByMovie lists every score value recorded for a movie.
func (r *ScoresRepository) ValuesByMovie(ctx context.Context, movieID int64) ([]float64, error) {
	rows, err := store.Conn(ctx, r.pool).Query(ctx, `SELECT value FROM tb_score WHERE movie_id = $1 ORDER BY user_id`, movieID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	values := make([]float64, 0)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
