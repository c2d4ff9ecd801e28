package data

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"movierank/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

func TestLeaderboardDisabled(t *testing.T) {
	d := newTestData(t)
	board := NewLeaderboard(d, log.DefaultLogger)
	ctx := context.Background()

	rank := 1
	if err := board.Publish(ctx, []*biz.Movie{{ID: 1, Rating: float(8.0), Ranking: &rank}}); err != nil {
		t.Errorf("Publish() without redis error = %v, want nil", err)
	}
	ids, err := board.Top(ctx, 10)
	if err != nil || ids != nil {
		t.Errorf("Top() without redis = %v, %v; want nothing", ids, err)
	}
}

// TestLeaderboardMembersFollowRanking seeds equal ratings, where the stored
// ranking breaks ties by id, and checks the sorted set ordering matches it.
func TestLeaderboardMembersFollowRanking(t *testing.T) {
	d := newTestData(t)
	repo := NewMovieRepo(d, log.DefaultLogger)
	ranking := biz.NewRankingUseCase(repo, NewLeaderboard(d, log.DefaultLogger), log.DefaultLogger)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		seed(t, repo, newMovie(fmt.Sprintf("Movie %d", i), float(7.0), biz.StatusRated))
	}
	seed(t, repo, newMovie("Best", float(9.0), biz.StatusRated))

	movies, err := ranking.Recompute(ctx)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}

	members := leaderboardMembers(movies)
	if len(members) != len(movies) {
		t.Fatalf("members = %d, want %d", len(members), len(movies))
	}
	// ZRANGE order: ascending score.
	sort.SliceStable(members, func(i, j int) bool { return members[i].Score < members[j].Score })

	stored, err := repo.ListByRating(ctx)
	if err != nil {
		t.Fatalf("ListByRating() error = %v", err)
	}
	for i, m := range stored {
		want := fmt.Sprint(m.ID)
		if members[i].Member != want || members[i].Score != float64(*m.Ranking) {
			t.Errorf("position %d = %v (score %v), want id %s at ranking %d", i, members[i].Member, members[i].Score, want, *m.Ranking)
		}
	}
	if stored[0].Title != "Best" || stored[1].ID != 1 || stored[10].ID != 10 {
		t.Errorf("stored order = %v", stored)
	}
}

func TestLeaderboardMembersSkipUnranked(t *testing.T) {
	rank := 2
	members := leaderboardMembers([]*biz.Movie{{ID: 4, Ranking: &rank}, {ID: 5}})
	if len(members) != 1 || members[0].Member != "4" || members[0].Score != 2 {
		t.Errorf("members = %+v, want only movie 4 at score 2", members)
	}
}
