package biz

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// AddMovieUseCase drives the two-step add flow: search the metadata provider,
// then create a movie from the candidate the user picked.
type AddMovieUseCase struct {
	repo     MovieRepo
	metadata MetadataClient
	ranking  *RankingUseCase
	log      *log.Helper
}

// NewAddMovieUseCase creates a new AddMovieUseCase instance
func NewAddMovieUseCase(repo MovieRepo, metadata MetadataClient, ranking *RankingUseCase, logger log.Logger) *AddMovieUseCase {
	return &AddMovieUseCase{
		repo:     repo,
		metadata: metadata,
		ranking:  ranking,
		log:      log.NewHelper(logger),
	}
}

type searchRequest struct {
	Title string `validate:"required,max=250"`
}

// Search returns every candidate the provider has for title. Nothing is
// persisted.
func (uc *AddMovieUseCase) Search(ctx context.Context, title string) ([]*Candidate, error) {
	req := searchRequest{Title: strings.TrimSpace(title)}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	candidates, err := uc.metadata.Search(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).Debugf("search %q returned %d candidates", req.Title, len(candidates))
	return candidates, nil
}

// Select fetches the provider's detail for externalID and stores it as a new
// movie pending its first rating.
func (uc *AddMovieUseCase) Select(ctx context.Context, externalID int) (*Movie, error) {
	if externalID <= 0 {
		return nil, invalidInput("movie id %d is invalid", externalID)
	}

	detail, err := uc.metadata.FetchDetail(ctx, externalID)
	if err != nil {
		return nil, err
	}

	movie, err := uc.newMovie(detail)
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetByTitle(ctx, movie.Title)
	switch {
	case err == nil:
		return nil, ErrDuplicateMovie.WithMetadata(map[string]string{
			"title":    existing.Title,
			"movie_id": fmt.Sprint(existing.ID),
		})
	case !errors.Is(err, ErrMovieNotFound):
		return nil, err
	}

	if err := uc.repo.Create(ctx, movie); err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).Infof("movie %d created from tmdb %d: %s", movie.ID, externalID, movie.Title)

	if _, err := uc.ranking.Recompute(ctx); err != nil {
		return nil, err
	}
	return uc.repo.Get(ctx, movie.ID)
}

func (uc *AddMovieUseCase) newMovie(d *MovieDetail) (*Movie, error) {
	title := strings.TrimSpace(d.OriginalTitle)
	if title == "" {
		return nil, malformed("original_title is missing")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return nil, malformed("original_title is longer than %d characters", MaxTitleLen)
	}

	year, err := ReleaseYear(d.ReleaseDate)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(d.PosterPath) == "" {
		return nil, malformed("poster_path is missing")
	}
	imageURL := uc.metadata.ImageURL(d.PosterPath)
	if len(imageURL) > MaxImageURLLen {
		return nil, malformed("poster_path is too long")
	}

	rating := PlaceholderRating
	return &Movie{
		Title:       title,
		Year:        year,
		Description: truncate(d.Overview, MaxDescriptionLen),
		Rating:      &rating,
		ImageURL:    imageURL,
		Status:      StatusPendingRating,
		TMDbID:      d.ExternalID,
	}, nil
}

// ReleaseYear returns the year part of a YYYY-MM-DD release date.
func ReleaseYear(releaseDate string) (string, error) {
	year, _, found := strings.Cut(strings.TrimSpace(releaseDate), "-")
	if !found {
		return "", malformed("release_date %q has no year", releaseDate)
	}
	if len(year) != 4 || strings.Trim(year, "0123456789") != "" {
		return "", malformed("release_date %q has no year", releaseDate)
	}
	return year, nil
}

func malformed(format string, args ...interface{}) *errors.Error {
	return errors.New(int(ErrMalformedUpstreamData.Code), ErrMalformedUpstreamData.Reason, fmt.Sprintf(format, args...))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
