package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/repository"
)

// UserInput carries the fields needed to register a user.
type UserInput struct {
	Name     string
	Username string
	Password string
	Roles    []string
}

// TokenIssuer issues bearer tokens. Implemented by auth.TokenService.
type TokenIssuer interface {
	Issue(p auth.Principal) (auth.Token, error)
}

// UserService resolves authenticated users and loads credentials.
type UserService struct {
	users  UserGateway
	hasher auth.PasswordHasher
	tokens TokenIssuer
	tx     Transactor
	logger *slog.Logger
}

// NewUserService wires a UserService.
func NewUserService(users UserGateway, hasher auth.PasswordHasher, tokens TokenIssuer, tx Transactor, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		tx:     tx,
		logger: logger.With("component", "user_service"),
	}
}

// Authenticated returns the stored user behind principal.
func (s *UserService) Authenticated(ctx context.Context, principal auth.Principal) (domain.User, error) {
	const op = "user.authenticated"
	if !principal.Authenticated() {
		return domain.User{}, fail(KindUnauthorized, op, ErrUsernameNotFound)
	}
	user, err := s.users.FindByUsername(ctx, principal.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("principal has no stored user", "username", principal.Username)
			return domain.User{}, fail(KindUnauthorized, op, ErrUsernameNotFound)
		}
		return domain.User{}, fail(KindInternal, op, err)
	}
	return user, nil
}

// LoadByUsername assembles the identity used for credential verification from
// the username/role projection.
func (s *UserService) LoadByUsername(ctx context.Context, username string) (domain.UserDetails, error) {
	const op = "user.loadByUsername"
	rows, err := s.users.SearchUserAndRolesByUsername(ctx, username)
	if err != nil {
		return domain.UserDetails{}, fail(KindInternal, op, err)
	}
	if len(rows) == 0 {
		return domain.UserDetails{}, fail(KindUnauthorized, op, ErrUsernameNotFound)
	}

	details := domain.UserDetails{
		Username:     rows[0].Username,
		PasswordHash: rows[0].Password,
		Roles:        make([]domain.Role, 0, len(rows)),
	}
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.RoleID]; dup {
			continue
		}
		seen[row.RoleID] = struct{}{}
		details.Roles = append(details.Roles, domain.Role{ID: row.RoleID, Authority: row.Authority})
	}
	return details, nil
}

// Login verifies username/password and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (auth.Token, error) {
	const op = "user.login"
	details, err := s.LoadByUsername(ctx, username)
	if err != nil {
		if KindOf(err) == KindUnauthorized {
			return auth.Token{}, fail(KindUnauthorized, op, ErrBadCredentials)
		}
		return auth.Token{}, err
	}
	if err := s.hasher.Compare(details.PasswordHash, password); err != nil {
		s.logger.Debug("password mismatch", "username", username)
		return auth.Token{}, fail(KindUnauthorized, op, ErrBadCredentials)
	}

	token, err := s.tokens.Issue(auth.Principal{Username: details.Username, Authorities: details.Authorities()})
	if err != nil {
		return auth.Token{}, fail(KindInternal, op, err)
	}
	s.logger.Info("user logged in", "username", details.Username)
	return token, nil
}

// Insert registers a user. Roles default to ROLE_CLIENT.
func (s *UserService) Insert(ctx context.Context, in UserInput) (domain.User, error) {
	const op = "user.insert"
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fail(KindInternal, op, err)
	}

	roles := dedupe(in.Roles)
	if len(roles) == 0 {
		roles = []string{domain.RoleClient}
	}

	user := domain.User{
		Name:         strings.TrimSpace(in.Name),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
	}

	var created domain.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.Create(ctx, user, roles)
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicate):
		return domain.User{}, fail(KindConflict, op, ErrUsernameTaken)
	case errors.Is(err, repository.ErrNotFound):
		return domain.User{}, fail(KindInvalid, op, err)
	default:
		s.logger.Error("insert user failed", "error", err, "username", user.Username)
		return domain.User{}, fail(KindInternal, op, err)
	}

	s.logger.Info("user created", "user_id", created.ID, "username", created.Username)
	return created, nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
