package biz

import (
	"context"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
)

func TestEdit(t *testing.T) {
	tests := []struct {
		name      string
		id        uint
		rating    string
		review    string
		wantErr   *errors.Error
		wantWrite bool
	}{
		{name: "valid", id: 1, rating: "7.5", review: "Great", wantWrite: true},
		{name: "padded rating", id: 1, rating: " 9 ", review: "", wantWrite: true},
		{name: "not a number", id: 1, rating: "abc", review: "x", wantErr: ErrInvalidInput},
		{name: "empty rating", id: 1, rating: "", review: "x", wantErr: ErrInvalidInput},
		{name: "above range", id: 1, rating: "11", review: "x", wantErr: ErrInvalidInput},
		{name: "below range", id: 1, rating: "-1", review: "x", wantErr: ErrInvalidInput},
		{name: "review too long", id: 1, rating: "5", review: strings.Repeat("a", 501), wantErr: ErrInvalidInput},
		{name: "missing movie", id: 42, rating: "5", review: "x", wantErr: ErrMovieNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(rated("Inception", 6.0))
			movieUC, _, _ := newTestUseCases(repo, &fakeMetadata{})

			movie, err := movieUC.Edit(context.Background(), tt.id, tt.rating, tt.review)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Edit() error = %v, want %v", err, tt.wantErr)
				}
				if repo.updates != 0 {
					t.Errorf("Edit() wrote %d times on failure", repo.updates)
				}
				if got := *repo.movies[1].Rating; got != 6.0 {
					t.Errorf("stored rating = %v, want unchanged 6.0", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("Edit() error = %v", err)
			}
			if movie.Status != StatusRated {
				t.Errorf("Status = %q, want %q", movie.Status, StatusRated)
			}
			if movie.Ranking == nil || *movie.Ranking != 1 {
				t.Errorf("Ranking = %v, want 1", movie.Ranking)
			}
			if movie.Review == nil || *movie.Review != tt.review {
				t.Errorf("Review = %v, want %q", movie.Review, tt.review)
			}
		})
	}
}

func TestEditReranks(t *testing.T) {
	repo := newFakeRepo(rated("A", 8.0), rated("B", 6.5), rated("C", 9.0))
	movieUC, _, _ := newTestUseCases(repo, &fakeMetadata{})
	ctx := context.Background()

	movie, err := movieUC.Edit(ctx, 2, "9.5", "now the best")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if *movie.Ranking != 1 {
		t.Errorf("B ranking = %d, want 1", *movie.Ranking)
	}
	if got := *repo.movies[3].Ranking; got != 2 {
		t.Errorf("C ranking = %d, want 2", got)
	}
	if got := *repo.movies[1].Ranking; got != 3 {
		t.Errorf("A ranking = %d, want 3", got)
	}
}

func TestPending(t *testing.T) {
	pending := &Movie{Title: "New", Rating: ptr(PlaceholderRating), Status: StatusPendingRating}
	repo := newFakeRepo(rated("Old", 7.0), pending)
	movieUC, _, _ := newTestUseCases(repo, &fakeMetadata{})

	movies, err := movieUC.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "New" {
		t.Fatalf("Pending() = %v, want only New", movies)
	}
}
