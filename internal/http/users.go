package httpserver

import (
	"net/http"
	"strings"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/service"
)

type userCreateRequest struct {
	Name     string   `json:"name" validate:"required,max=255"`
	Username string   `json:"username" validate:"required,email,max=255"`
	Password string   `json:"password" validate:"required,min=6,max=72"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=ROLE_CLIENT ROLE_ADMIN"`
}

func (u *userCreateRequest) normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Username = strings.TrimSpace(u.Username)
	for i, role := range u.Roles {
		u.Roles[i] = strings.TrimSpace(role)
	}
}

type userResponse struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())
	user, err := s.users.Authenticated(r.Context(), principal)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.users.Insert(r.Context(), service.UserInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func toUserResponse(user domain.User) userResponse {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Authority)
	}
	return userResponse{ID: user.ID, Name: user.Name, Username: user.Username, Roles: roles}
}
