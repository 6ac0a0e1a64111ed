package repository

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type memoryMatch struct {
	cache *cache.Cache
}

// NewMemoryMatchRepository - keeps finished matches in process memory for ttl.
func NewMemoryMatchRepository(ttl time.Duration) MatchRepository {
	return &memoryMatch{
		cache: cache.New(ttl, ttl),
	}
}

func (that *memoryMatch) Save(_ context.Context, match *entity.MatchRecord) error {
	stored := *match
	that.cache.SetDefault(matchKey(match), &stored)

	return nil
}

func (that *memoryMatch) Recent(_ context.Context, limit int) ([]*entity.MatchRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	items := that.cache.Items()

	matches := make([]*entity.MatchRecord, 0, len(items))
	for _, item := range items {
		if match, ok := item.Object.(*entity.MatchRecord); ok {
			copied := *match
			matches = append(matches, &copied)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].FinishedAt.After(matches[j].FinishedAt)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}
