package service

import (
	"fmt"
	"strconv"
	"time"

	"movierank/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const defaultTopLimit = 10

// MovieReply is the JSON shape of a stored movie.
type MovieReply struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Year        string    `json:"year"`
	Description string    `json:"description"`
	Rating      *float64  `json:"rating"`
	Ranking     *int      `json:"ranking"`
	Review      *string   `json:"review"`
	ImageURL    string    `json:"img_url"`
	Status      string    `json:"status"`
	TMDbID      int       `json:"tmdb_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListMoviesReply wraps a movie listing.
type ListMoviesReply struct {
	Movies []*MovieReply `json:"movies"`
	Total  int           `json:"total"`
}

// MovieAPI is the read-only JSON view of the list.
type MovieAPI struct {
	movieUC *biz.MovieUseCase
}

// NewMovieAPI creates a new MovieAPI
func NewMovieAPI(movieUC *biz.MovieUseCase) *MovieAPI {
	return &MovieAPI{movieUC: movieUC}
}

// ListMovies returns every movie in ranking order.
func (s *MovieAPI) ListMovies(ctx khttp.Context) error {
	movies, err := s.movieUC.List(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, toListReply(movies))
}

// TopMovies returns the head of the ranking, ?limit=N movies long.
func (s *MovieAPI) TopMovies(ctx khttp.Context) error {
	limit := defaultTopLimit
	if raw := ctx.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.BadRequest(biz.ErrInvalidInput.Reason, fmt.Sprintf("limit %q is not a number", raw))
		}
		limit = n
	}
	movies, err := s.movieUC.Top(ctx, limit)
	if err != nil {
		return err
	}
	return ctx.Result(200, toListReply(movies))
}

// ListPending returns the movies still waiting for their first rating.
func (s *MovieAPI) ListPending(ctx khttp.Context) error {
	movies, err := s.movieUC.Pending(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, toListReply(movies))
}

// GetMovie returns one movie by id.
func (s *MovieAPI) GetMovie(ctx khttp.Context) error {
	id, err := parseID(ctx.Vars().Get("id"))
	if err != nil {
		return err
	}
	movie, err := s.movieUC.Get(ctx, id)
	if err != nil {
		return err
	}
	return ctx.Result(200, toReply(movie))
}

func toListReply(movies []*biz.Movie) *ListMoviesReply {
	reply := &ListMoviesReply{
		Movies: make([]*MovieReply, 0, len(movies)),
		Total:  len(movies),
	}
	for _, m := range movies {
		reply.Movies = append(reply.Movies, toReply(m))
	}
	return reply
}

func toReply(m *biz.Movie) *MovieReply {
	return &MovieReply{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Ranking:     m.Ranking,
		Review:      m.Review,
		ImageURL:    m.ImageURL,
		Status:      string(m.Status),
		TMDbID:      m.TMDbID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
