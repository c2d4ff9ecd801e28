package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movierank/internal/biz"
	"movierank/internal/conf"

	json "github.com/goccy/go-json"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/xeipuuv/gojsonschema"
)

// maxResponseBytes caps how much of a TMDb response body is read.
const maxResponseBytes = 4 << 20

var (
	tmdbRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movierank",
		Name:      "tmdb_requests_total",
		Help:      "TMDb API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	tmdbDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "movierank",
		Name:      "tmdb_request_duration_seconds",
		Help:      "TMDb API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

var (
	searchSchema = gojsonschema.NewStringLoader(`{
		"type": "object",
		"properties": {
			"results": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"id": {"type": "integer"},
						"title": {"type": ["string", "null"]},
						"original_title": {"type": ["string", "null"]},
						"release_date": {"type": ["string", "null"]},
						"poster_path": {"type": ["string", "null"]},
						"overview": {"type": ["string", "null"]}
					},
					"required": ["id"]
				}
			}
		},
		"required": ["results"]
	}`)

	detailSchema = gojsonschema.NewStringLoader(`{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"original_title": {"type": "string"},
			"release_date": {"type": ["string", "null"]},
			"poster_path": {"type": ["string", "null"]},
			"overview": {"type": ["string", "null"]}
		},
		"required": ["id", "original_title"]
	}`)
)

type tmdbMovie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   *string `json:"release_date"`
	PosterPath    *string `json:"poster_path"`
	Overview      *string `json:"overview"`
}

type tmdbSearchResponse struct {
	Results []tmdbMovie `json:"results"`
}

type tmdbClient struct {
	client       *http.Client
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	breaker      *gobreaker.CircuitBreaker[[]byte]
	log          *log.Helper
}

// NewTMDbClient creates a new TMDb API client
func NewTMDbClient(c *conf.TMDb, logger log.Logger) biz.MetadataClient {
	l := log.NewHelper(log.With(logger, "module", "tmdb"))

	threshold := c.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: c.Breaker.MaxRequests,
		Timeout:     c.Breaker.OpenTimeout.AsDuration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Only transport failures count against the provider.
		IsSuccessful: func(err error) bool {
			return err == nil || !kerrors.Is(err, biz.ErrUpstreamUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &tmdbClient{
		client: &http.Client{
			Timeout: c.Timeout.AsDuration(),
		},
		baseURL:      strings.TrimRight(c.BaseURL, "/"),
		imageBaseURL: c.ImageBaseURL,
		apiKey:       c.APIKey,
		language:     c.Language,
		breaker:      breaker,
		log:          l,
	}
}

func (c *tmdbClient) Search(ctx context.Context, title string) ([]*biz.Candidate, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("include_adult", "false")
	params.Set("language", c.language)
	params.Set("page", "1")

	body, err := c.get(ctx, "search", "/search/movie", params, searchSchema)
	if err != nil {
		return nil, err
	}

	var response tmdbSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, biz.ErrMalformedUpstreamData.WithCause(err)
	}

	candidates := make([]*biz.Candidate, 0, len(response.Results))
	for _, m := range response.Results {
		candidates = append(candidates, &biz.Candidate{
			ExternalID:    m.ID,
			Title:         m.Title,
			OriginalTitle: m.OriginalTitle,
			ReleaseDate:   deref(m.ReleaseDate),
			PosterPath:    deref(m.PosterPath),
			Overview:      deref(m.Overview),
		})
	}
	return candidates, nil
}

func (c *tmdbClient) FetchDetail(ctx context.Context, externalID int) (*biz.MovieDetail, error) {
	params := url.Values{}
	params.Set("language", c.language)

	body, err := c.get(ctx, "detail", "/movie/"+strconv.Itoa(externalID), params, detailSchema)
	if err != nil {
		return nil, err
	}

	var m tmdbMovie
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, biz.ErrMalformedUpstreamData.WithCause(err)
	}

	return &biz.MovieDetail{
		ExternalID:    m.ID,
		OriginalTitle: m.OriginalTitle,
		PosterPath:    deref(m.PosterPath),
		ReleaseDate:   deref(m.ReleaseDate),
		Overview:      deref(m.Overview),
	}, nil
}

// ImageURL builds the full poster URL for a TMDb poster path.
func (c *tmdbClient) ImageURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.imageBaseURL + posterPath
}

// get performs one GET through the circuit breaker and returns the body once
// it has passed schema validation.
func (c *tmdbClient) get(ctx context.Context, endpoint, path string, params url.Values, schema gojsonschema.JSONLoader) ([]byte, error) {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, path, params)
	})
	tmdbDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = biz.ErrUpstreamUnavailable.WithCause(err)
	}
	if err == nil {
		err = validateBody(body, schema)
	}

	tmdbRequests.WithLabelValues(endpoint, outcome(err)).Inc()
	if err != nil {
		c.log.WithContext(ctx).Warnf("tmdb %s request failed: %v", endpoint, err)
		return nil, err
	}
	return body, nil
}

func (c *tmdbClient) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Keep the API key out of the error text.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, biz.ErrUpstreamUnavailable.WithCause(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Errorf("failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, biz.ErrUpstreamUnavailable.WithCause(err)
	}

	// Handle non-2xx responses
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, biz.ErrUpstream.WithMetadata(map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
			"body":   truncateBody(body),
		})
	}

	return body, nil
}

func validateBody(body []byte, schema gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return biz.ErrMalformedUpstreamData.WithCause(err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return biz.ErrMalformedUpstreamData.WithMetadata(map[string]string{
			"schema": strings.Join(problems, "; "),
		})
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case kerrors.Is(err, biz.ErrUpstreamUnavailable):
		return "unavailable"
	case kerrors.Is(err, biz.ErrMalformedUpstreamData):
		return "malformed"
	default:
		return "error"
	}
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
