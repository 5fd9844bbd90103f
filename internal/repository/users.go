package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/store"
)

// UsersRepository provides persistence helpers for users and their roles.
type UsersRepository struct {
	pool *pgxpool.Pool
}

// FindByUsername loads a user together with its roles.
func (r *UsersRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	q := store.Conn(ctx, r.pool)

	var user domain.User
	err := q.QueryRow(ctx, `SELECT id, name, username, password FROM tb_user WHERE username = $1`, username).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.PasswordHash,
	)
	if err != nil {
		return domain.User{}, mapError(err)
	}

	rows, err := q.Query(ctx, `
        SELECT r.id, r.authority
        FROM tb_role r
        JOIN tb_user_role ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
        ORDER BY r.id
    `, user.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("load user roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Authority); err != nil {
			return domain.User{}, err
		}
		user.Roles = append(user.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// SearchUserAndRolesByUsername returns one projection row per role held by the
// user. Users without roles, like unknown users, produce no rows.
func (r *UsersRepository) SearchUserAndRolesByUsername(ctx context.Context, username string) ([]domain.UserRole, error) {
	rows, err := store.Conn(ctx, r.pool).Query(ctx, `
        SELECT u.username, u.password, r.id, r.authority
        FROM tb_user u
        JOIN tb_user_role ur ON ur.user_id = u.id
        JOIN tb_role r ON r.id = ur.role_id
        WHERE u.username = $1
        ORDER BY r.id
    `, username)
	if err != nil {
		return nil, fmt.Errorf("search user roles: %w", err)
	}
	defer rows.Close()

	result := make([]domain.UserRole, 0)
	for rows.Next() {
		var row domain.UserRole
		if err := rows.Scan(&row.Username, &row.Password, &row.RoleID, &row.Authority); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a user and links it to the named roles. Unknown role names
// yield ErrNotFound and a taken username yields ErrDuplicate.
func (r *UsersRepository) Create(ctx context.Context, user domain.User, authorities []string) (domain.User, error) {
	q := store.Conn(ctx, r.pool)

	err := q.QueryRow(ctx, `
        INSERT INTO tb_user (name, username, password)
        VALUES ($1,$2,$3)
        RETURNING id
    `, user.Name, user.Username, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		return domain.User{}, mapError(err)
	}

	user.Roles = make([]domain.Role, 0, len(authorities))
	for _, authority := range authorities {
		var role domain.Role
		err := q.QueryRow(ctx, `SELECT id, authority FROM tb_role WHERE authority = $1`, authority).Scan(&role.ID, &role.Authority)
		if err != nil {
			return domain.User{}, fmt.Errorf("role %s: %w", authority, mapError(err))
		}
		if _, err := q.Exec(ctx, `INSERT INTO tb_user_role (user_id, role_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`, user.ID, role.ID); err != nil {
			return domain.User{}, mapError(err)
		}
		user.Roles = append(user.Roles, role)
	}
	return user, nil
}
