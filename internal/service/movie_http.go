package service

import (
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewViews, NewSessions, NewMovieService, NewMovieAPI, NewHealthService)

const (
	OperationMovieHome     = "/movierank.Movie/Home"
	OperationMovieEditForm = "/movierank.Movie/EditForm"
	OperationMovieEdit     = "/movierank.Movie/Edit"
	OperationMovieDelete   = "/movierank.Movie/Delete"
	OperationMovieAddForm  = "/movierank.Movie/AddForm"
	OperationMovieAdd      = "/movierank.Movie/Add"
	OperationMovieSelect   = "/movierank.Movie/Select"

	OperationMovieAPIListMovies  = "/movierank.MovieAPI/ListMovies"
	OperationMovieAPITopMovies   = "/movierank.MovieAPI/TopMovies"
	OperationMovieAPIListPending = "/movierank.MovieAPI/ListPending"
	OperationMovieAPIGetMovie    = "/movierank.MovieAPI/GetMovie"
)

// RegisterMovieHTTPServer mounts the HTML pages.
func RegisterMovieHTTPServer(s *khttp.Server, svc *MovieService) {
	r := s.Route("/")
	r.GET("/", wrap(OperationMovieHome, svc.Home))
	r.GET("/edit/{id:[0-9]+}", wrap(OperationMovieEditForm, svc.EditForm))
	r.POST("/edit/{id:[0-9]+}", wrap(OperationMovieEdit, svc.Edit))
	r.GET("/del/{id:[0-9]+}", wrap(OperationMovieDelete, svc.Delete))
	r.GET("/add", wrap(OperationMovieAddForm, svc.AddForm))
	r.POST("/add", wrap(OperationMovieAdd, svc.Add))
	r.GET("/select/{movie_id:[0-9]+}", wrap(OperationMovieSelect, svc.Select))
}

// RegisterMovieAPIHTTPServer mounts the JSON API.
func RegisterMovieAPIHTTPServer(s *khttp.Server, svc *MovieAPI) {
	r := s.Route("/")
	r.GET("/api/movies", wrap(OperationMovieAPIListMovies, svc.ListMovies))
	r.GET("/api/movies/top", wrap(OperationMovieAPITopMovies, svc.TopMovies))
	r.GET("/api/movies/pending", wrap(OperationMovieAPIListPending, svc.ListPending))
	r.GET("/api/movies/{id:[0-9]+}", wrap(OperationMovieAPIGetMovie, svc.GetMovie))
}

// RegisterHealthHTTPServer mounts the health probe. It bypasses the
// middleware chain so probes stay out of the request log.
func RegisterHealthHTTPServer(s *khttp.Server, svc *HealthService) {
	r := s.Route("/")
	r.GET("/healthz", svc.Check)
}
