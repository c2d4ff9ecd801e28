package biz

import (
	"context"
	"time"
)

// MovieStatus tracks where a movie is in the add-then-rate lifecycle.
type MovieStatus string

const (
	// StatusPendingRating marks a movie created by the add flow whose rating
	// has not been supplied yet (Created-Pending-Rating).
	StatusPendingRating MovieStatus = "pending_rating"
	// StatusRated marks a movie the user has rated at least once.
	StatusRated MovieStatus = "rated"
)

// PlaceholderRating is assigned at creation, before the user rates the movie.
const PlaceholderRating = 0.0

// Column bounds of the movies table.
const (
	MaxTitleLen       = 250
	MaxDescriptionLen = 500
	MaxReviewLen      = 500
	MaxImageURLLen    = 500
)

// Movie domain model
type Movie struct {
	ID          uint
	Title       string
	Year        string
	Description string
	Rating      *float64
	Ranking     *int
	Review      *string
	ImageURL    string
	Status      MovieStatus
	TMDbID      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Pending reports whether the movie is still waiting for its first rating.
func (m *Movie) Pending() bool {
	return m.Status == StatusPendingRating
}

// MovieUpdate carries the user-editable fields of a movie.
type MovieUpdate struct {
	Rating float64
	Review string
	Status MovieStatus
}

// RankAssignment is the dense rank computed for one movie.
type RankAssignment struct {
	MovieID uint
	Ranking int
}

// Candidate is a search result from the metadata provider, not yet persisted.
type Candidate struct {
	ExternalID    int
	Title         string
	OriginalTitle string
	ReleaseDate   string
	PosterPath    string
	Overview      string
}

// MovieDetail is the provider's full record for one movie.
type MovieDetail struct {
	ExternalID    int
	OriginalTitle string
	PosterPath    string
	ReleaseDate   string
	Overview      string
}

// MovieRepo defines the repository interface for movies
type MovieRepo interface {
	ListByRating(ctx context.Context) ([]*Movie, error)
	ListPending(ctx context.Context) ([]*Movie, error)
	Get(ctx context.Context, id uint) (*Movie, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*Movie, error)
	GetByTitle(ctx context.Context, title string) (*Movie, error)
	Create(ctx context.Context, movie *Movie) error
	Update(ctx context.Context, id uint, update *MovieUpdate) error
	Delete(ctx context.Context, id uint) error
	ApplyRanking(ctx context.Context, ranks []RankAssignment) error
}

// Leaderboard mirrors the ranked list into an external sorted set scored by
// ranking. Top returns the ids of the n best ranked movies, best first, and
// nothing when the mirror is disabled or empty.
type Leaderboard interface {
	Publish(ctx context.Context, movies []*Movie) error
	Top(ctx context.Context, n int) ([]uint, error)
}

// MetadataClient defines the interface for the external movie metadata provider
type MetadataClient interface {
	Search(ctx context.Context, title string) ([]*Candidate, error)
	FetchDetail(ctx context.Context, externalID int) (*MovieDetail, error)
	ImageURL(posterPath string) string
}
