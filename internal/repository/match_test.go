package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(roomID string, finishedAt time.Time) *entity.MatchRecord {
	return &entity.MatchRecord{
		RoomID:  roomID,
		PlayerX: "Alice",
		PlayerO: "Bob",
		Winner:  entity.PlayerX,
		WinLine: &entity.WinLine{
			Start: entity.Position{Row: 5, Col: 5},
			End:   entity.Position{Row: 9, Col: 9},
			Axis:  entity.AxisDiagonalDown,
		},
		Moves:      9,
		FinishedAt: finishedAt.UTC(),
	}
}

func TestMatchRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage, time.Hour)

	// Given: a finished match
	match := newRecord("A1", time.Now())

	// When: Save is called
	err := matchRepo.Save(ctx, match)

	// Then: no error should be returned, and the match is indexed
	require.NoError(t, err)

	count, err := st.Storage.ZCard(ctx, matchIndexKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMatchRepository_Recent(t *testing.T) {
	t.Run("Recent_NewestFirst", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// Given: three matches finished one minute apart
		now := time.Now()
		for i, roomID := range []string{"A1", "B2", "C3"} {
			require.NoError(t, matchRepo.Save(ctx, newRecord(roomID, now.Add(time.Duration(i)*time.Minute))))
		}

		// When: the two most recent are requested
		matches, err := matchRepo.Recent(ctx, 2)

		// Then: they come back newest first, with their geometry intact
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "C3", matches[0].RoomID)
		assert.Equal(t, "B2", matches[1].RoomID)
		assert.Equal(t, entity.AxisDiagonalDown, matches[0].WinLine.Axis)
	})

	t.Run("Recent_Empty", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// When: nothing has been saved
		matches, err := matchRepo.Recent(ctx, 10)

		// Then: an empty result without error
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("Recent_SkipsExpired", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// Given: two matches, one of which has already expired in redis
		require.NoError(t, matchRepo.Save(ctx, newRecord("A1", time.Now())))
		expired := newRecord("B2", time.Now().Add(time.Second))
		require.NoError(t, matchRepo.Save(ctx, expired))
		require.NoError(t, st.Storage.Del(ctx, matchKey(expired)).Err())

		// When: listing
		matches, err := matchRepo.Recent(ctx, 10)

		// Then: only the live one is returned
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "A1", matches[0].RoomID)
	})
}
