package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"movierank/internal/service"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movierank",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, operation and status code.",
	}, []string{"method", "operation", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "movierank",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "operation"})

	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "movierank",
		Name:      "http_active_requests",
		Help:      "HTTP requests currently being served.",
	})
)

type requestIDKey struct{}

// RequestIDFilter tags every request with an id, taken from the incoming
// header when present, and echoes it on the response.
func RequestIDFilter() khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

// RequestID returns a log.Valuer reporting the id set by RequestIDFilter.
func RequestID() log.Valuer {
	return func(ctx context.Context) interface{} {
		if id, ok := ctx.Value(requestIDKey{}).(string); ok {
			return id
		}
		return ""
	}
}

// CSRFFilter rejects form posts whose token does not match the session.
// The JSON API is read-only and is not covered.
func CSRFFilter(sess *service.Sessions, enc khttp.EncodeErrorFunc) khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && !isAPI(r) && !sess.VerifyCSRF(r) {
				enc(w, r, errors.Forbidden("CSRF_TOKEN_INVALID", "the form has expired, please reload the page and try again"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type operationKey struct{}

// statusWriter remembers the first status code written to the response.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// MetricsFilter records request counts and latency labelled with the status
// code actually sent, including responses written by later filters.
// Metrics fills in the operation once kratos has routed the request.
func MetricsFilter() khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" || r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			operation := "unknown"
			sw := &statusWriter{ResponseWriter: w}
			activeRequests.Inc()
			start := time.Now()
			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), operationKey{}, &operation)))
			activeRequests.Dec()

			code := sw.status
			if code == 0 {
				code = http.StatusOK
			}
			requestsTotal.WithLabelValues(r.Method, operation, strconv.Itoa(code)).Inc()
			requestDuration.WithLabelValues(r.Method, operation).Observe(time.Since(start).Seconds())
		})
	}
}

// Metrics names the kratos operation for MetricsFilter.
func Metrics() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if operation, ok := ctx.Value(operationKey{}).(*string); ok {
				if tr, ok := transport.FromServerContext(ctx); ok {
					*operation = tr.Operation()
				}
			}
			return handler(ctx, req)
		}
	}
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}
