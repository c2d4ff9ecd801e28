package biz

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewRankingUseCase, NewMovieUseCase, NewAddMovieUseCase)

// MovieUseCase handles listing, editing and deleting stored movies
type MovieUseCase struct {
	repo    MovieRepo
	ranking *RankingUseCase
	log     *log.Helper
}

// NewMovieUseCase creates a new MovieUseCase instance
func NewMovieUseCase(repo MovieRepo, ranking *RankingUseCase, logger log.Logger) *MovieUseCase {
	return &MovieUseCase{
		repo:    repo,
		ranking: ranking,
		log:     log.NewHelper(logger),
	}
}

type editRequest struct {
	Rating float64 `validate:"gte=0,lte=10"`
	Review string  `validate:"max=500"`
}

type topRequest struct {
	Limit int `validate:"gte=1,lte=100"`
}

// List returns every stored movie in ranking order.
func (uc *MovieUseCase) List(ctx context.Context) ([]*Movie, error) {
	return uc.ranking.Current(ctx)
}

// Top returns at most n movies from the head of the ranking.
func (uc *MovieUseCase) Top(ctx context.Context, n int) ([]*Movie, error) {
	req := topRequest{Limit: n}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	return uc.ranking.Top(ctx, n)
}

// Pending returns the movies that were added but never rated.
func (uc *MovieUseCase) Pending(ctx context.Context) ([]*Movie, error) {
	return uc.repo.ListPending(ctx)
}

// Get retrieves a movie by its id
func (uc *MovieUseCase) Get(ctx context.Context, id uint) (*Movie, error) {
	return uc.repo.Get(ctx, id)
}

// Edit applies a rating and review to the movie with the given id. The raw
// rating comes straight from the form and must parse as a number.
func (uc *MovieUseCase) Edit(ctx context.Context, id uint, rawRating, review string) (*Movie, error) {
	rating, err := strconv.ParseFloat(strings.TrimSpace(rawRating), 64)
	if err != nil {
		return nil, invalidInput("rating %q is not a number", rawRating).WithCause(err)
	}

	req := editRequest{Rating: rating, Review: review}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, id, &MovieUpdate{
		Rating: req.Rating,
		Review: req.Review,
		Status: StatusRated,
	}); err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).Infof("movie %d rated %.1f", id, rating)

	movies, err := uc.ranking.Recompute(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range movies {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, ErrMovieNotFound
}

// Delete removes the movie with the given id.
func (uc *MovieUseCase) Delete(ctx context.Context, id uint) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.WithContext(ctx).Infof("movie %d deleted", id)

	_, err := uc.ranking.Recompute(ctx)
	return err
}
