package biz

import (
	"context"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
)

type fakeRepo struct {
	mu      sync.Mutex
	movies  map[uint]*Movie
	nextID  uint
	updates int
	applied int
}

func newFakeRepo(movies ...*Movie) *fakeRepo {
	r := &fakeRepo{movies: make(map[uint]*Movie)}
	for _, m := range movies {
		r.nextID++
		if m.ID == 0 {
			m.ID = r.nextID
		}
		r.movies[m.ID] = clone(m)
	}
	return r
}

func clone(m *Movie) *Movie {
	c := *m
	if m.Rating != nil {
		v := *m.Rating
		c.Rating = &v
	}
	if m.Ranking != nil {
		v := *m.Ranking
		c.Ranking = &v
	}
	if m.Review != nil {
		v := *m.Review
		c.Review = &v
	}
	return &c
}

func (r *fakeRepo) all() []*Movie {
	out := make([]*Movie, 0, len(r.movies))
	for _, m := range r.movies {
		out = append(out, clone(m))
	}
	SortByRating(out)
	return out
}

func (r *fakeRepo) ListByRating(ctx context.Context) ([]*Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.all(), nil
}

func (r *fakeRepo) ListPending(ctx context.Context) ([]*Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Movie
	for _, m := range r.all() {
		if m.Pending() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) Get(ctx context.Context, id uint) (*Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return clone(m), nil
}

func (r *fakeRepo) ListByIDs(ctx context.Context, ids []uint) ([]*Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Movie
	for _, id := range ids {
		if m, ok := r.movies[id]; ok {
			out = append(out, clone(m))
		}
	}
	return out, nil
}

func (r *fakeRepo) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Title == title {
			return clone(m), nil
		}
	}
	return nil, ErrMovieNotFound
}

func (r *fakeRepo) Create(ctx context.Context, movie *Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Title == movie.Title {
			return ErrDuplicateMovie
		}
	}
	r.nextID++
	movie.ID = r.nextID
	r.movies[movie.ID] = clone(movie)
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, id uint, u *MovieUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	rating, review := u.Rating, u.Review
	m.Rating, m.Review, m.Status = &rating, &review, u.Status
	r.updates++
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[id]; !ok {
		return ErrMovieNotFound
	}
	delete(r.movies, id)
	return nil
}

func (r *fakeRepo) ApplyRanking(ctx context.Context, ranks []RankAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range ranks {
		if m, ok := r.movies[a.MovieID]; ok {
			rank := a.Ranking
			m.Ranking = &rank
		}
	}
	r.applied++
	return nil
}

type fakeBoard struct {
	published [][]uint
	reads     int
	err       error
}

func (b *fakeBoard) Publish(ctx context.Context, movies []*Movie) error {
	ids := make([]uint, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	b.published = append(b.published, ids)
	return nil
}

func (b *fakeBoard) Top(ctx context.Context, n int) ([]uint, error) {
	b.reads++
	if b.err != nil {
		return nil, b.err
	}
	if len(b.published) == 0 {
		return nil, nil
	}
	ids := b.published[len(b.published)-1]
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids, nil
}

type fakeMetadata struct {
	candidates []*Candidate
	details    map[int]*MovieDetail
	err        error
	searches   int
}

func (f *fakeMetadata) Search(ctx context.Context, title string) ([]*Candidate, error) {
	f.searches++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func (f *fakeMetadata) FetchDetail(ctx context.Context, externalID int) (*MovieDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[externalID]
	if !ok {
		return nil, ErrUpstream
	}
	return d, nil
}

func (f *fakeMetadata) ImageURL(posterPath string) string {
	return "https://image.tmdb.org/t/p/w500" + posterPath
}

func rated(title string, rating float64) *Movie {
	return &Movie{Title: title, Year: "2000", Rating: &rating, Status: StatusRated}
}

func newTestUseCases(repo *fakeRepo, md *fakeMetadata) (*MovieUseCase, *AddMovieUseCase, *fakeBoard) {
	board := &fakeBoard{}
	ranking := NewRankingUseCase(repo, board, log.DefaultLogger)
	return NewMovieUseCase(repo, ranking, log.DefaultLogger),
		NewAddMovieUseCase(repo, md, ranking, log.DefaultLogger),
		board
}
