package biz

import (
	"net/http"

	"github.com/go-kratos/kratos/v2/errors"
)

// Custom errors
var (
	ErrMovieNotFound         = errors.NotFound("MOVIE_NOT_FOUND", "movie not found")
	ErrDuplicateMovie        = errors.Conflict("DUPLICATE_MOVIE", "a movie with this title is already in the list")
	ErrUpstream              = errors.New(http.StatusBadGateway, "UPSTREAM_ERROR", "movie database returned an error")
	ErrUpstreamUnavailable   = errors.ServiceUnavailable("UPSTREAM_UNAVAILABLE", "movie database is unreachable")
	ErrMalformedUpstreamData = errors.New(http.StatusBadGateway, "MALFORMED_UPSTREAM_DATA", "movie database returned unexpected data")
	ErrInvalidInput          = errors.BadRequest("INVALID_INPUT", "invalid input")
)
