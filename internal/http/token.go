package httpserver

import (
	"mime"
	"net/http"
	"strings"
	"time"
)

type tokenRequest struct {
	GrantType string `json:"grant_type" validate:"omitempty,eq=password"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// handleToken implements the password grant. Both form-encoded and JSON
// bodies are accepted.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if !s.decodeAndValidate(w, r, &req) {
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		if err := r.ParseForm(); err != nil {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Unable to parse form body")
			return
		}
		req = tokenRequest{
			GrantType: strings.TrimSpace(r.PostForm.Get("grant_type")),
			Username:  strings.TrimSpace(r.PostForm.Get("username")),
			Password:  r.PostForm.Get("password"),
		}
		if err := s.validate.Struct(req); err != nil {
			s.respondValidationError(w, err)
			return
		}
	}

	tok, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	s.respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   int64(tok.ExpiresIn / time.Second),
	})
}
