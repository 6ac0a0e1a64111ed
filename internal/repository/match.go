package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const matchIndexKey = "matches"

type MatchRepository interface {
	Save(ctx context.Context, match *entity.MatchRecord) error
	Recent(ctx context.Context, limit int) ([]*entity.MatchRecord, error)
}

type dbMatch struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchRepository - stores finished matches in redis; each record expires after ttl.
func NewMatchRepository(client *redis.Client, ttl time.Duration) MatchRepository {
	return &dbMatch{
		client: client,
		ttl:    ttl,
	}
}

func matchKey(match *entity.MatchRecord) string {
	return "match:" + match.RoomID + ":" + strconv.FormatInt(match.FinishedAt.UnixNano(), 10)
}

func (that *dbMatch) Save(ctx context.Context, match *entity.MatchRecord) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	key := matchKey(match)
	cutoff := time.Now().Add(-that.ttl).UnixNano()

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, matchJSON, that.ttl)
		pipe.ZAdd(ctx, matchIndexKey, redis.Z{Score: float64(match.FinishedAt.UnixNano()), Member: key})
		pipe.ZRemRangeByScore(ctx, matchIndexKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}

	return nil
}

func (that *dbMatch) Recent(ctx context.Context, limit int) ([]*entity.MatchRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	keys, err := that.client.ZRevRange(ctx, matchIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	if len(keys) == 0 {
		return nil, nil
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	matches := make([]*entity.MatchRecord, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// expired between the index read and the fetch
			continue
		}

		var match entity.MatchRecord
		if err = json.Unmarshal([]byte(raw), &match); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match: %w", err)
		}
		matches = append(matches, &match)
	}

	return matches, nil
}
