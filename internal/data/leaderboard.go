package data

import (
	"context"
	"fmt"
	"strconv"

	"movierank/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

type leaderboard struct {
	data *Data
	log  *log.Helper
}

// NewLeaderboard creates the Redis sorted-set mirror of the ranking. It is a
// no-op when Redis is not configured.
func NewLeaderboard(data *Data, logger log.Logger) biz.Leaderboard {
	return &leaderboard{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// leaderboardMembers scores each ranked movie by its ranking, so ascending
// score order is ranking order.
func leaderboardMembers(movies []*biz.Movie) []redis.Z {
	members := make([]redis.Z, 0, len(movies))
	for _, m := range movies {
		if m.Ranking == nil {
			continue
		}
		members = append(members, redis.Z{
			Score:  float64(*m.Ranking),
			Member: strconv.FormatUint(uint64(m.ID), 10),
		})
	}
	return members
}

// Publish replaces the sorted set with the current ranking.
func (b *leaderboard) Publish(ctx context.Context, movies []*biz.Movie) error {
	if b.data.rdb == nil {
		return nil
	}

	key := b.data.leaderboardKey
	members := leaderboardMembers(movies)
	_, err := b.data.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.log.WithContext(ctx).Debugf("leaderboard %s updated with %d movies", key, len(members))
	return nil
}

// Top reads the ids of the n best ranked movies.
func (b *leaderboard) Top(ctx context.Context, n int) ([]uint, error) {
	if b.data.rdb == nil || n <= 0 {
		return nil, nil
	}

	members, err := b.data.rdb.ZRange(ctx, b.data.leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("leaderboard member %q is not a movie id: %w", member, err)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
