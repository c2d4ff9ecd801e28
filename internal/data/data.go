package data

import (
	"context"
	"fmt"
	"time"

	"movierank/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewMovieRepo,
	NewLeaderboard,
	NewTMDbClient,
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// sqlitePragmas are applied to every new SQLite database handle.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// Data encapsulates database and cache connections
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	log *log.Helper

	leaderboardKey string
}

// NewData creates Data instance with database and Redis connections
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	l := log.NewHelper(log.With(logger, "module", "data"))

	driver := c.Database.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	dialector, err := openDialector(driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Errorf("failed to get database instance: %v", err)
		return nil, nil, err
	}

	// Configure connection pool
	if driver == DriverSQLite {
		// SQLite serialises writers; keep a single connection.
		sqlDB.SetMaxOpenConns(1)
		for _, pragma := range sqlitePragmas {
			if err := db.Exec(pragma).Error; err != nil {
				l.Warnf("failed to execute %q: %v", pragma, err)
			}
		}
	} else {
		sqlDB.SetMaxIdleConns(orDefault(c.Database.MaxIdleConns, 10))
		sqlDB.SetMaxOpenConns(orDefault(c.Database.MaxOpenConns, 100))
		sqlDB.SetConnMaxLifetime(time.Hour)
		if d := c.Database.ConnMaxLifetime.AsDuration(); d > 0 {
			sqlDB.SetConnMaxLifetime(d)
		}
	}

	if err := db.AutoMigrate(&Movie{}); err != nil {
		l.Errorf("failed to migrate database: %v", err)
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	l.Infof("database connected successfully (%s)", driver)

	// Redis is optional: an empty address disables the leaderboard mirror.
	var rdb *redis.Client
	if c.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
			WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Warnf("failed to connect to redis: %v", err)
			// Redis is optional, continue without it
			_ = rdb.Close()
			rdb = nil
		} else {
			l.Info("redis connected successfully")
		}
	}

	data := &Data{
		db:             db,
		rdb:            rdb,
		log:            l,
		leaderboardKey: c.Redis.LeaderboardKey,
	}
	if data.leaderboardKey == "" {
		data.leaderboardKey = "rank:movies:top"
	}

	cleanup := func() {
		l.Info("closing data resources")
		if data.rdb != nil {
			if err := data.rdb.Close(); err != nil {
				l.Errorf("failed to close redis: %v", err)
			}
		}
		if err := sqlDB.Close(); err != nil {
			l.Errorf("failed to close database: %v", err)
		}
	}

	return data, cleanup, nil
}

// Health pings every configured backend and reports the result per backend.
func (d *Data) Health(ctx context.Context) map[string]error {
	status := make(map[string]error, 2)

	sqlDB, err := d.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	status["database"] = err

	if d.rdb != nil {
		status["redis"] = d.rdb.Ping(ctx).Err()
	}
	return status
}

func openDialector(driver, source string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(source), nil
	case DriverSQLite:
		return sqlite.Open(source), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
