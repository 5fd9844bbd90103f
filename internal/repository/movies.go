package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/store"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `id, title, score, count, image`

// SearchByTitle returns one page of movies whose title contains text,
// case-insensitively, ordered by id. An empty text matches everything.
func (r *MoviesRepository) SearchByTitle(ctx context.Context, text string, page domain.PageRequest) (domain.Page[domain.Movie], error) {
	page = page.Normalize()
	pattern := "%" + escapeLike(strings.TrimSpace(text)) + "%"
	q := store.Conn(ctx, r.pool)

	var total int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM tb_movie WHERE UPPER(title) LIKE UPPER($1)`, pattern).Scan(&total)
	if err != nil {
		return domain.Page[domain.Movie]{}, fmt.Errorf("count movies: %w", err)
	}

	query := fmt.Sprintf(`
        SELECT %s FROM tb_movie
        WHERE UPPER(title) LIKE UPPER($1)
        ORDER BY id
        LIMIT $2 OFFSET $3
    `, movieColumns)
	rows, err := q.Query(ctx, query, pattern, page.Size, page.Offset())
	if err != nil {
		return domain.Page[domain.Movie]{}, fmt.Errorf("search movies: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Movie, 0, page.Size)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return domain.Page[domain.Movie]{}, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Movie]{}, err
	}

	return domain.Page[domain.Movie]{
		Items:         items,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: total,
	}, nil
}

// FindByID fetches a movie by its identifier.
func (r *MoviesRepository) FindByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM tb_movie WHERE id = $1`, movieColumns)
	movie, err := scanMovie(store.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return domain.Movie{}, mapError(err)
	}
	return movie, nil
}

// FindByIDForUpdate fetches a movie and locks its row until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (r *MoviesRepository) FindByIDForUpdate(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM tb_movie WHERE id = $1 FOR UPDATE`, movieColumns)
	movie, err := scanMovie(store.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return domain.Movie{}, mapError(err)
	}
	return movie, nil
}

// ExistsByID reports whether a movie with id exists.
func (r *MoviesRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := store.Conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tb_movie WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("movie exists: %w", err)
	}
	return exists, nil
}

// Save inserts the movie when ID is zero and updates it otherwise, returning
// the stored row. Updating an unknown id yields ErrNotFound.
func (r *MoviesRepository) Save(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	q := store.Conn(ctx, r.pool)
	var row pgx.Row
	if movie.ID == 0 {
		query := fmt.Sprintf(`
            INSERT INTO tb_movie (title, score, count, image)
            VALUES ($1,$2,$3,$4)
            RETURNING %s
        `, movieColumns)
		row = q.QueryRow(ctx, query, movie.Title, movie.Score, movie.Count, movie.Image)
	} else {
		query := fmt.Sprintf(`
            UPDATE tb_movie
            SET title = $2, score = $3, count = $4, image = $5
            WHERE id = $1
            RETURNING %s
        `, movieColumns)
		row = q.QueryRow(ctx, query, movie.ID, movie.Title, movie.Score, movie.Count, movie.Image)
	}

	saved, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, mapError(err)
	}
	return saved, nil
}

// DeleteByID removes a movie. Movies still referenced by scores yield
// ErrIntegrityViolation; unknown ids yield ErrNotFound.
func (r *MoviesRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := store.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM tb_movie WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Score,
		&movie.Count,
		&movie.Image,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
