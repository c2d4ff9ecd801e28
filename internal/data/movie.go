package data

import (
	"context"
	"errors"
	"fmt"

	"movierank/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

type movieRepo struct {
	data *Data
	log  *log.Helper
}

// NewMovieRepo creates a new movie repository
func NewMovieRepo(data *Data, logger log.Logger) biz.MovieRepo {
	return &movieRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// rankingOrder sorts by rating descending with NULL ratings last and id as
// the tie-break. The boolean trick works the same on SQLite and PostgreSQL.
func rankingOrder(db *gorm.DB) *gorm.DB {
	return db.Order("rating IS NULL").Order("rating DESC").Order("id ASC")
}

func (r *movieRepo) ListByRating(ctx context.Context) ([]*biz.Movie, error) {
	var dbMovies []Movie
	if err := rankingOrder(r.data.db.WithContext(ctx)).Find(&dbMovies).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return r.modelsToBiz(dbMovies), nil
}

func (r *movieRepo) ListPending(ctx context.Context) ([]*biz.Movie, error) {
	var dbMovies []Movie
	err := r.data.db.WithContext(ctx).
		Where("status = ?", string(biz.StatusPendingRating)).
		Order("created_at DESC").Order("id DESC").
		Find(&dbMovies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending movies: %w", err)
	}
	return r.modelsToBiz(dbMovies), nil
}

func (r *movieRepo) Get(ctx context.Context, id uint) (*biz.Movie, error) {
	var dbMovie Movie
	if err := r.data.db.WithContext(ctx).First(&dbMovie, id).Error; err != nil {
		return nil, notFound(err)
	}
	return r.modelToBiz(&dbMovie), nil
}

// ListByIDs returns the movies that still exist among ids, in no particular order.
func (r *movieRepo) ListByIDs(ctx context.Context, ids []uint) ([]*biz.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var dbMovies []Movie
	if err := r.data.db.WithContext(ctx).Where("id IN ?", ids).Find(&dbMovies).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies by id: %w", err)
	}
	return r.modelsToBiz(dbMovies), nil
}

func (r *movieRepo) GetByTitle(ctx context.Context, title string) (*biz.Movie, error) {
	var dbMovie Movie
	if err := r.data.db.WithContext(ctx).Where("title = ?", title).First(&dbMovie).Error; err != nil {
		return nil, notFound(err)
	}
	return r.modelToBiz(&dbMovie), nil
}

func (r *movieRepo) Create(ctx context.Context, movie *biz.Movie) error {
	dbMovie := r.bizToModel(movie)

	if err := r.data.db.WithContext(ctx).Create(dbMovie).Error; err != nil {
		if isUniqueViolation(err) {
			return biz.ErrDuplicateMovie.WithCause(err)
		}
		return fmt.Errorf("failed to create movie: %w", err)
	}

	movie.ID = dbMovie.ID
	movie.CreatedAt = dbMovie.CreatedAt
	movie.UpdatedAt = dbMovie.UpdatedAt
	return nil
}

func (r *movieRepo) Update(ctx context.Context, id uint, update *biz.MovieUpdate) error {
	result := r.data.db.WithContext(ctx).
		Model(&Movie{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating": update.Rating,
			"review": update.Review,
			"status": string(update.Status),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update movie: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrMovieNotFound
	}
	return nil
}

func (r *movieRepo) Delete(ctx context.Context, id uint) error {
	result := r.data.db.WithContext(ctx).Delete(&Movie{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete movie: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrMovieNotFound
	}
	return nil
}

func (r *movieRepo) ApplyRanking(ctx context.Context, ranks []biz.RankAssignment) error {
	if len(ranks) == 0 {
		return nil
	}

	return r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rank := range ranks {
			err := tx.Model(&Movie{}).
				Where("id = ?", rank.MovieID).
				UpdateColumn("ranking", rank.Ranking).Error
			if err != nil {
				return fmt.Errorf("failed to rank movie %d: %w", rank.MovieID, err)
			}
		}
		return nil
	})
}

// notFound maps gorm's miss onto ErrMovieNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return biz.ErrMovieNotFound.WithCause(err)
	}
	return fmt.Errorf("failed to get movie: %w", err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Helper: Convert biz.Movie to data.Movie
func (r *movieRepo) bizToModel(m *biz.Movie) *Movie {
	status := string(m.Status)
	if status == "" {
		status = string(biz.StatusPendingRating)
	}
	return &Movie{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Ranking:     m.Ranking,
		Review:      m.Review,
		ImgURL:      m.ImageURL,
		Status:      status,
		TMDbID:      m.TMDbID,
	}
}

// Helper: Convert data.Movie to biz.Movie
func (r *movieRepo) modelToBiz(m *Movie) *biz.Movie {
	return &biz.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Ranking:     m.Ranking,
		Review:      m.Review,
		ImageURL:    m.ImgURL,
		Status:      biz.MovieStatus(m.Status),
		TMDbID:      m.TMDbID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *movieRepo) modelsToBiz(dbMovies []Movie) []*biz.Movie {
	movies := make([]*biz.Movie, 0, len(dbMovies))
	for i := range dbMovies {
		movies = append(movies, r.modelToBiz(&dbMovies[i]))
	}
	return movies
}
