package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/logger"
)

const (
	existingUsername    = "maria@gmail.com"
	nonExistingUsername = "joao@gmail.com"
)

type userFixture struct {
	mem    *memStore
	svc    *UserService
	issuer *stubIssuer
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()
	mem := newMemStore()
	user := createUserEntity()
	user.PasswordHash = "hashed:123456"
	user.Roles = append(user.Roles, domain.Role{ID: 2, Authority: domain.RoleAdmin})
	mem.users[user.Username] = user

	issuer := &stubIssuer{}
	return userFixture{
		mem:    mem,
		issuer: issuer,
		svc:    NewUserService(memUsers{mem}, plainHasher{}, issuer, mem, logger.Discard()),
	}
}

func TestUserService_Authenticated(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.Authenticated(context.Background(), auth.Principal{Username: existingUsername})
	require.NoError(t, err)
	assert.Equal(t, existingUsername, user.Username)

	_, err = f.svc.Authenticated(context.Background(), auth.Principal{Username: nonExistingUsername})
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.ErrorIs(t, err, ErrUsernameNotFound)

	_, err = f.svc.Authenticated(context.Background(), auth.Principal{})
	assert.ErrorIs(t, err, ErrUsernameNotFound)
}

func TestUserService_LoadByUsername(t *testing.T) {
	f := newUserFixture(t)

	details, err := f.svc.LoadByUsername(context.Background(), existingUsername)
	require.NoError(t, err)
	assert.Equal(t, existingUsername, details.Username)
	assert.Equal(t, "hashed:123456", details.PasswordHash)
	assert.Equal(t, []string{domain.RoleClient, domain.RoleAdmin}, details.Authorities())

	_, err = f.svc.LoadByUsername(context.Background(), nonExistingUsername)
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.ErrorIs(t, err, ErrUsernameNotFound)
}

type rowsGateway struct {
	memUsers
	rows []domain.UserRole
	err  error
}

func (g rowsGateway) SearchUserAndRolesByUsername(context.Context, string) ([]domain.UserRole, error) {
	return g.rows, g.err
}

func TestUserService_LoadByUsernameUnionOfRoles(t *testing.T) {
	mem := newMemStore()
	rows := []domain.UserRole{
		{Username: existingUsername, Password: "h", RoleID: 1, Authority: domain.RoleClient},
		{Username: existingUsername, Password: "h", RoleID: 2, Authority: domain.RoleAdmin},
		{Username: existingUsername, Password: "h", RoleID: 1, Authority: domain.RoleClient},
	}
	svc := NewUserService(rowsGateway{memUsers: memUsers{mem}, rows: rows}, plainHasher{}, &stubIssuer{}, mem, logger.Discard())

	details, err := svc.LoadByUsername(context.Background(), existingUsername)
	require.NoError(t, err)
	assert.Len(t, details.Roles, 2)

	boom := errors.New("db down")
	svc = NewUserService(rowsGateway{memUsers: memUsers{mem}, err: boom}, plainHasher{}, &stubIssuer{}, mem, logger.Discard())
	_, err = svc.LoadByUsername(context.Background(), existingUsername)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, boom)
}

func TestUserService_Login(t *testing.T) {
	f := newUserFixture(t)

	tok, err := f.svc.Login(context.Background(), existingUsername, "123456")
	require.NoError(t, err)
	assert.Equal(t, "token-for-"+existingUsername, tok.AccessToken)
	require.Len(t, f.issuer.issued, 1)
	assert.Equal(t, []string{domain.RoleClient, domain.RoleAdmin}, f.issuer.issued[0].Authorities)

	_, err = f.svc.Login(context.Background(), existingUsername, "wrong")
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = f.svc.Login(context.Background(), nonExistingUsername, "123456")
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestUserService_Insert(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.Insert(context.Background(), UserInput{Name: "Alex", Username: "alex@gmail.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "hashed:secret", user.PasswordHash)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, domain.RoleClient, user.Roles[0].Authority)

	admin, err := f.svc.Insert(context.Background(), UserInput{
		Name: "Ana", Username: "ana@gmail.com", Password: "x",
		Roles: []string{domain.RoleAdmin, domain.RoleAdmin, " "},
	})
	require.NoError(t, err)
	assert.Len(t, admin.Roles, 1)

	_, err = f.svc.Insert(context.Background(), UserInput{Name: "Maria", Username: existingUsername, Password: "x"})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = f.svc.Insert(context.Background(), UserInput{Name: "Z", Username: "z@gmail.com", Password: "x", Roles: []string{"ROLE_ROOT"}})
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindNotFound, KindOf(fail(KindNotFound, "op", ErrMovieNotFound)))
	assert.Equal(t, "op: movie not found", fail(KindNotFound, "op", ErrMovieNotFound).Error())
	assert.Equal(t, "not found", KindNotFound.String())
}
