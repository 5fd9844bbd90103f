package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/service"
)

type movieRequest struct {
	Title string  `json:"title" validate:"required,max=255"`
	Score float64 `json:"score" validate:"gte=0,lte=5"`
	Count int     `json:"count" validate:"gte=0"`
	Image string  `json:"image" validate:"omitempty,url,max=2048"`
}

func (m *movieRequest) normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Image = strings.TrimSpace(m.Image)
}

func (m movieRequest) input() service.MovieInput {
	return service.MovieInput{Title: m.Title, Score: m.Score, Count: m.Count, Image: m.Image}
}

type movieResponse struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Count int     `json:"count"`
	Image string  `json:"image"`
}

type pageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := parsePageRequest(query)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.movies.FindAll(r.Context(), strings.TrimSpace(query.Get("title")), page)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	content := make([]movieResponse, 0, len(result.Items))
	for _, movie := range result.Items {
		content = append(content, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, pageResponse[movieResponse]{
		Content:       content,
		Page:          result.Page,
		Size:          result.Size,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages(),
	})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movie, err := s.movies.FindByID(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	movie, err := s.movies.Insert(r.Context(), req.input())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%d", movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req movieRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	movie, err := s.movies.Update(r.Context(), id, req.input())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.movies.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parsePageRequest reads zero-based page and size query params. Missing
// values take defaults; oversized pages are clamped.
func parsePageRequest(query url.Values) (domain.PageRequest, error) {
	var page domain.PageRequest
	if val := strings.TrimSpace(query.Get("page")); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return page, fmt.Errorf("invalid page value")
		}
		page.Page = n
	}
	if val := strings.TrimSpace(query.Get("size")); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return page, fmt.Errorf("invalid size value")
		}
		page.Size = n
	}
	page = page.Normalize()
	if page.Page > maxPageIndex {
		return page, fmt.Errorf("invalid page value")
	}
	return page, nil
}

// maxPageIndex keeps page*size well inside int64 offsets.
const maxPageIndex = 1 << 20

func decodeIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, fmt.Errorf("missing id parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id parameter")
	}
	return id, nil
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:    movie.ID,
		Title: movie.Title,
		Score: movie.Score,
		Count: movie.Count,
		Image: movie.Image,
	}
}
