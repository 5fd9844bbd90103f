package service

import (
	"context"
	"sort"
	"strings"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/repository"
)

// memStore is an in-memory stand-in for the repositories. Rows are keyed by
// id; scores by (movie, user).
type memStore struct {
	movies     map[int64]domain.Movie
	scores     map[[2]int64]float64
	users      map[string]domain.User
	nextID     int64
	deleteErr  map[int64]error
	saveCalls  int
	searchArgs []string
	txCount    int
	lockCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		movies:    make(map[int64]domain.Movie),
		scores:    make(map[[2]int64]float64),
		users:     make(map[string]domain.User),
		nextID:    100,
		deleteErr: make(map[int64]error),
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txCount++
	return fn(ctx)
}

// movies

type memMovies struct{ *memStore }

func (m memMovies) SearchByTitle(_ context.Context, text string, page domain.PageRequest) (domain.Page[domain.Movie], error) {
	m.searchArgs = append(m.searchArgs, text)
	page = page.Normalize()
	ids := make([]int64, 0, len(m.movies))
	for id, mv := range m.movies {
		if strings.Contains(strings.ToUpper(mv.Title), strings.ToUpper(text)) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := domain.Page[domain.Movie]{Page: page.Page, Size: page.Size, TotalElements: int64(len(ids))}
	for i := page.Offset(); i < len(ids) && i < page.Offset()+page.Size; i++ {
		out.Items = append(out.Items, m.movies[ids[i]])
	}
	return out, nil
}

func (m memMovies) FindByID(_ context.Context, id int64) (domain.Movie, error) {
	mv, ok := m.movies[id]
	if !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	return mv, nil
}

func (m memMovies) FindByIDForUpdate(ctx context.Context, id int64) (domain.Movie, error) {
	m.lockCalls++
	return m.FindByID(ctx, id)
}

func (m memMovies) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := m.movies[id]
	return ok, nil
}

func (m memMovies) Save(_ context.Context, movie domain.Movie) (domain.Movie, error) {
	m.saveCalls++
	if movie.ID == 0 {
		m.nextID++
		movie.ID = m.nextID
	} else if _, ok := m.movies[movie.ID]; !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	m.movies[movie.ID] = movie
	return movie, nil
}

func (m memMovies) DeleteByID(_ context.Context, id int64) error {
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	for key := range m.scores {
		if key[0] == id {
			return repository.ErrIntegrityViolation
		}
	}
	if _, ok := m.movies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.movies, id)
	return nil
}

// scores

type memScores struct{ *memStore }

func (m memScores) Save(_ context.Context, s domain.Score) (domain.Score, error) {
	m.scores[[2]int64{s.MovieID, s.UserID}] = s.Value
	return s, nil
}

func (m memScores) ValuesByMovie(_ context.Context, movieID int64) ([]float64, error) {
	keys := make([][2]int64, 0)
	for key := range m.scores {
		if key[0] == movieID {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i][1] < keys[j][1] })
	values := make([]float64, 0, len(keys))
	for _, key := range keys {
		values = append(values, m.scores[key])
	}
	return values, nil
}

// users

type memUsers struct{ *memStore }

func (m memUsers) FindByUsername(_ context.Context, username string) (domain.User, error) {
	u, ok := m.users[username]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m memUsers) SearchUserAndRolesByUsername(_ context.Context, username string) ([]domain.UserRole, error) {
	u, ok := m.users[username]
	if !ok {
		return []domain.UserRole{}, nil
	}
	rows := make([]domain.UserRole, 0, len(u.Roles))
	for _, r := range u.Roles {
		rows = append(rows, domain.UserRole{Username: u.Username, Password: u.PasswordHash, RoleID: r.ID, Authority: r.Authority})
	}
	return rows, nil
}

var knownRoles = map[string]int64{domain.RoleClient: 1, domain.RoleAdmin: 2}

func (m memUsers) Create(_ context.Context, user domain.User, authorities []string) (domain.User, error) {
	if _, taken := m.users[user.Username]; taken {
		return domain.User{}, repository.ErrDuplicate
	}
	for _, a := range authorities {
		id, ok := knownRoles[a]
		if !ok {
			return domain.User{}, repository.ErrNotFound
		}
		user.Roles = append(user.Roles, domain.Role{ID: id, Authority: a})
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Username] = user
	return user, nil
}

// fixtures

func createUserEntity() domain.User {
	return domain.User{
		ID:           2,
		Name:         "Maria",
		Username:     "maria@gmail.com",
		PasswordHash: "$2a$10$eACCYoNOHEqXve8aIWT8Nu3PkMXWBaOxJ9aORUYzfMQCbVBIhZ8tG",
		Roles:        []domain.Role{{ID: 1, Authority: domain.RoleClient}},
	}
}

func createMovieEntity() domain.Movie {
	return domain.Movie{
		ID:    1,
		Title: "Test Movie",
		Score: 0,
		Count: 0,
		Image: "https://www.themoviedb.org/t/p/w533_and_h300_bestv2/jBJWaqoSCiARWtfV0GlqHrcdidd.jpg",
	}
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return ErrBadCredentials
	}
	return nil
}

type stubIssuer struct {
	issued []auth.Principal
}

func (s *stubIssuer) Issue(p auth.Principal) (auth.Token, error) {
	s.issued = append(s.issued, p)
	return auth.Token{AccessToken: "token-for-" + p.Username, TokenType: "Bearer"}, nil
}
