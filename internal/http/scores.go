package httpserver

import (
	"net/http"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
	"github.com/Clark-Hu/movie-score-api/internal/service"
)

type scoreRequest struct {
	MovieID int64    `json:"movieId" validate:"required,gt=0"`
	Score   *float64 `json:"score" validate:"required,gte=0,lte=5"`
}

func (s *Server) handleSaveScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	principal, _ := auth.PrincipalFrom(r.Context())
	movie, err := s.scores.SaveScore(r.Context(), principal, service.ScoreInput{
		MovieID: req.MovieID,
		Value:   *req.Score,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}
