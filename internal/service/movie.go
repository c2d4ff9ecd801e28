package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"movierank/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// MovieService serves the HTML pages of the ranking list
type MovieService struct {
	movieUC *biz.MovieUseCase
	addUC   *biz.AddMovieUseCase
	views   *Views
	sess    *Sessions
	log     *log.Helper
}

// NewMovieService creates a new MovieService
func NewMovieService(movieUC *biz.MovieUseCase, addUC *biz.AddMovieUseCase, views *Views, sess *Sessions, logger log.Logger) *MovieService {
	return &MovieService{
		movieUC: movieUC,
		addUC:   addUC,
		views:   views,
		sess:    sess,
		log:     log.NewHelper(log.With(logger, "module", "service/movie")),
	}
}

// Home renders the ranked listing.
func (s *MovieService) Home(ctx khttp.Context) error {
	movies, err := s.movieUC.List(ctx)
	if err != nil {
		return err
	}
	return s.render(ctx, http.StatusOK, pageIndex, &pageData{
		Title:  "My Top Movies",
		Movies: movies,
	})
}

// EditForm renders the rating form for one movie.
func (s *MovieService) EditForm(ctx khttp.Context) error {
	id, err := parseID(ctx.Vars().Get("id"))
	if err != nil {
		return err
	}
	movie, err := s.movieUC.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.render(ctx, http.StatusOK, pageEdit, &pageData{
		Title: "Edit " + movie.Title,
		Movie: movie,
	})
}

// Edit applies the submitted rating and review. Invalid input re-renders the
// form with the message instead of dropping what the user typed.
func (s *MovieService) Edit(ctx khttp.Context) error {
	id, err := parseID(ctx.Vars().Get("id"))
	if err != nil {
		return err
	}
	form := ctx.Form()
	rating, review := form.Get("new_rating"), form.Get("new_review")

	movie, err := s.movieUC.Edit(ctx, id, rating, review)
	if errors.Is(err, biz.ErrInvalidInput) {
		current, gerr := s.movieUC.Get(ctx, id)
		if gerr != nil {
			return gerr
		}
		return s.render(ctx, http.StatusBadRequest, pageEdit, &pageData{
			Title:  "Edit " + current.Title,
			Movie:  current,
			Error:  errors.FromError(err).Message,
			Rating: rating,
			Review: review,
		})
	}
	if err != nil {
		return err
	}

	s.sess.AddFlash(ctx.Response(), ctx.Request(), fmt.Sprintf("Saved %s at #%s.", movie.Title, rankText(movie.Ranking)))
	return redirect(ctx, "/")
}

// Delete removes a movie and returns to the listing.
func (s *MovieService) Delete(ctx khttp.Context) error {
	id, err := parseID(ctx.Vars().Get("id"))
	if err != nil {
		return err
	}
	if err := s.movieUC.Delete(ctx, id); err != nil {
		return err
	}
	return redirect(ctx, "/")
}

// AddForm renders the empty title search form.
func (s *MovieService) AddForm(ctx khttp.Context) error {
	return s.render(ctx, http.StatusOK, pageAdd, &pageData{Title: "Add Movie"})
}

// Add searches the metadata provider and lists the candidates.
func (s *MovieService) Add(ctx khttp.Context) error {
	query := ctx.Form().Get("title")

	candidates, err := s.addUC.Search(ctx, query)
	if err != nil {
		se := errors.FromError(err)
		if se.Code >= http.StatusInternalServerError && !isUpstream(err) {
			return err
		}
		return s.render(ctx, int(se.Code), pageAdd, &pageData{
			Title: "Add Movie",
			Query: query,
			Error: se.Message,
		})
	}

	return s.render(ctx, http.StatusOK, pageSelect, &pageData{
		Title:      "Select Movie",
		Query:      query,
		Candidates: candidates,
	})
}

// Select creates the chosen candidate and moves straight to its rating form.
func (s *MovieService) Select(ctx khttp.Context) error {
	externalID, err := strconv.Atoi(ctx.Vars().Get("movie_id"))
	if err != nil {
		return errors.BadRequest(biz.ErrInvalidInput.Reason, "movie id must be a number").WithCause(err)
	}

	movie, err := s.addUC.Select(ctx, externalID)
	switch {
	case errors.Is(err, biz.ErrDuplicateMovie):
		md := errors.FromError(err).Metadata
		s.sess.AddFlash(ctx.Response(), ctx.Request(), fmt.Sprintf("%s is already in your list.", md["title"]))
		if id := md["movie_id"]; id != "" {
			return redirect(ctx, "/edit/"+id)
		}
		return redirect(ctx, "/")
	case isUpstream(err):
		s.sess.AddFlash(ctx.Response(), ctx.Request(), errors.FromError(err).Message+". Please try again.")
		return redirect(ctx, "/add")
	case err != nil:
		return err
	}

	s.sess.AddFlash(ctx.Response(), ctx.Request(), fmt.Sprintf("Added %s. Rate it to place it in your list.", movie.Title))
	return redirect(ctx, fmt.Sprintf("/edit/%d", movie.ID))
}

// render fills the session-bound fields and writes page.
func (s *MovieService) render(ctx khttp.Context, status int, page string, data *pageData) error {
	data.CSRFToken, data.Flashes = s.sess.Page(ctx.Response(), ctx.Request())
	return s.views.Render(ctx.Response(), status, page, data)
}

// wrap runs h through the server middleware chain under operation.
func wrap(operation string, h func(khttp.Context) error) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		khttp.SetOperation(ctx, operation)
		next := ctx.Middleware(func(context.Context, interface{}) (interface{}, error) {
			return nil, h(ctx)
		})
		_, err := next(ctx, ctx.Request().URL.Path)
		return err
	}
}

func redirect(ctx khttp.Context, location string) error {
	http.Redirect(ctx.Response(), ctx.Request(), location, http.StatusSeeOther)
	return nil
}

// parseID reads a route id. Ids too large to have been assigned by the
// store are reported as missing movies, not as bad input.
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) || id > math.MaxInt64 {
		return 0, biz.ErrMovieNotFound
	}
	if err != nil || id == 0 {
		return 0, errors.BadRequest(biz.ErrInvalidInput.Reason, fmt.Sprintf("movie id %q is invalid", raw))
	}
	return uint(id), nil
}

func rankText(r *int) string {
	if r == nil {
		return "-"
	}
	return strconv.Itoa(*r)
}
