package server

import (
	"net/http"

	"movierank/internal/conf"
	"movierank/internal/service"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer)

// errorEncoder renders HTML error pages for browser routes and keeps the
// kratos JSON error body for the API.
func errorEncoder(views *service.Views) khttp.EncodeErrorFunc {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if isAPI(r) {
			khttp.DefaultErrorEncoder(w, r, err)
			return
		}
		views.RenderError(w, r, err)
	}
}

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Server,
	movieSvc *service.MovieService,
	apiSvc *service.MovieAPI,
	healthSvc *service.HealthService,
	views *service.Views,
	sess *service.Sessions,
	logger log.Logger,
) *khttp.Server {
	enc := errorEncoder(views)
	var opts = []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
			Metrics(),
		),
		khttp.Filter(
			MetricsFilter(),
			RequestIDFilter(),
			CSRFFilter(sess, enc),
		),
		khttp.ErrorEncoder(enc),
	}
	if c.HTTP.Network != "" {
		opts = append(opts, khttp.Network(c.HTTP.Network))
	}
	if c.HTTP.Addr != "" {
		opts = append(opts, khttp.Address(c.HTTP.Addr))
	}
	if d := c.HTTP.Timeout.AsDuration(); d > 0 {
		opts = append(opts, khttp.Timeout(d))
	}
	srv := khttp.NewServer(opts...)
	srv.Handle("/metrics", promhttp.Handler())
	service.RegisterHealthHTTPServer(srv, healthSvc)
	service.RegisterMovieAPIHTTPServer(srv, apiSvc)
	service.RegisterMovieHTTPServer(srv, movieSvc)
	return srv
}
