package biz

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
)

// RankingUseCase keeps the dense 1..N ranking of all stored movies in sync
// with their ratings.
type RankingUseCase struct {
	repo  MovieRepo
	board Leaderboard
	log   *log.Helper

	mu sync.Mutex
}

// NewRankingUseCase creates a new RankingUseCase instance
func NewRankingUseCase(repo MovieRepo, board Leaderboard, logger log.Logger) *RankingUseCase {
	return &RankingUseCase{
		repo:  repo,
		board: board,
		log:   log.NewHelper(logger),
	}
}

// SortByRating orders movies by rating descending. Unrated movies sort last
// and equal ratings fall back to id ascending.
func SortByRating(movies []*Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := movies[i], movies[j]
		switch {
		case a.Rating == nil && b.Rating == nil:
			return a.ID < b.ID
		case a.Rating == nil:
			return false
		case b.Rating == nil:
			return true
		case *a.Rating != *b.Rating:
			return *a.Rating > *b.Rating
		default:
			return a.ID < b.ID
		}
	})
}

// Assign sorts movies into ranking order and returns the rank of each one,
// 1 for the best rated. The movies' Ranking fields are updated in place.
func Assign(movies []*Movie) []RankAssignment {
	SortByRating(movies)

	ranks := make([]RankAssignment, 0, len(movies))
	for i, m := range movies {
		rank := i + 1
		m.Ranking = &rank
		ranks = append(ranks, RankAssignment{MovieID: m.ID, Ranking: rank})
	}
	return ranks
}

// stale returns the assignments whose stored ranking differs from ranks.
func stale(current map[uint]*int, ranks []RankAssignment) []RankAssignment {
	var changed []RankAssignment
	for _, r := range ranks {
		if prev := current[r.MovieID]; prev == nil || *prev != r.Ranking {
			changed = append(changed, r)
		}
	}
	return changed
}

// Recompute reassigns ranks to every stored movie after a mutation,
// persists the ones that changed and republishes the leaderboard.
func (uc *RankingUseCase) Recompute(ctx context.Context) ([]*Movie, error) {
	return uc.recompute(ctx, true)
}

// Current returns the movies in ranking order. Stored ranks are only written
// when they have drifted from the ratings.
func (uc *RankingUseCase) Current(ctx context.Context) ([]*Movie, error) {
	return uc.recompute(ctx, false)
}

func (uc *RankingUseCase) recompute(ctx context.Context, mutated bool) ([]*Movie, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	movies, err := uc.repo.ListByRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies for ranking: %w", err)
	}

	current := make(map[uint]*int, len(movies))
	for _, m := range movies {
		current[m.ID] = m.Ranking
	}

	changed := stale(current, Assign(movies))
	if len(changed) > 0 {
		if err := uc.repo.ApplyRanking(ctx, changed); err != nil {
			return nil, fmt.Errorf("failed to persist ranking: %w", err)
		}
		uc.log.WithContext(ctx).Debugf("ranking recomputed: %d movies, %d changed", len(movies), len(changed))
	}

	if uc.board != nil && (mutated || len(changed) > 0) {
		if err := uc.board.Publish(ctx, movies); err != nil {
			uc.log.WithContext(ctx).Warnf("failed to publish leaderboard: %v", err)
		}
	}

	return movies, nil
}

// Top returns the n best ranked movies. The leaderboard answers when it is
// populated and agrees with the stored ranking; otherwise the store does.
func (uc *RankingUseCase) Top(ctx context.Context, n int) ([]*Movie, error) {
	if uc.board != nil {
		movies, err := uc.topFromBoard(ctx, n)
		if err != nil {
			uc.log.WithContext(ctx).Warnf("failed to read leaderboard, using the store: %v", err)
		} else if movies != nil {
			return movies, nil
		}
	}

	movies, err := uc.Current(ctx)
	if err != nil {
		return nil, err
	}
	if len(movies) > n {
		movies = movies[:n]
	}
	return movies, nil
}

// topFromBoard returns nil without error when the leaderboard is empty or
// stale.
func (uc *RankingUseCase) topFromBoard(ctx context.Context, n int) ([]*Movie, error) {
	ids, err := uc.board.Top(ctx, n)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	found, err := uc.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	movies := make([]*Movie, 0, len(ids))
	for i, id := range ids {
		m, ok := byID[id]
		if !ok || m.Ranking == nil || *m.Ranking != i+1 {
			uc.log.WithContext(ctx).Debugf("leaderboard is stale at position %d", i+1)
			return nil, nil
		}
		movies = append(movies, m)
	}
	return movies, nil
}
