package usecase

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

func TestRegistry_CreateRoom(t *testing.T) {
	t.Run("Stores the room with its creator", func(t *testing.T) {
		// Given: an empty registry
		registry := NewRegistry()

		// When: Alice creates room A1
		sess, res, err := registry.CreateRoom("A1", "conn-alice", "Alice")

		// Then: the room is live and Alice sits in it
		require.NoError(t, err)
		assert.Equal(t, "A1", sess.RoomID())
		assert.Equal(t, "A1", res.RoomID)

		found, ok := registry.Lookup("A1")
		require.True(t, ok)
		assert.Same(t, sess, found)
		assert.Equal(t, []string{"A1"}, registry.RoomsOf("conn-alice"))
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("Duplicate room id is rejected", func(t *testing.T) {
		// Given: room A1 exists
		registry := NewRegistry()
		_, _, err := registry.CreateRoom("A1", "conn-alice", "Alice")
		require.NoError(t, err)

		// When: Bob tries to create A1 as well
		_, _, err = registry.CreateRoom("A1", "conn-bob", "Bob")

		// Then: RoomAlreadyExists and Bob is tracked nowhere
		require.ErrorIs(t, err, apperror.ErrRoomAlreadyExists)
		assert.Empty(t, registry.RoomsOf("conn-bob"))
	})

	t.Run("Concurrent creators race for one id and exactly one wins", func(t *testing.T) {
		// Given: an empty registry and many connections
		registry := NewRegistry()
		const creators = 32

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners int
		)

		// When: they all create room RACE at once
		for i := range creators {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, _, err := registry.CreateRoom("RACE", fmt.Sprintf("conn-%d", i), "P")
				if err == nil {
					mu.Lock()
					winners++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, apperror.ErrRoomAlreadyExists)
			}()
		}
		wg.Wait()

		// Then: a single room was created
		assert.Equal(t, 1, winners)
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("Id of a destroyed room can be reused", func(t *testing.T) {
		// Given: A1 was created and abandoned
		registry := NewRegistry()
		sess, _, err := registry.CreateRoom("A1", "conn-alice", "Alice")
		require.NoError(t, err)
		_, err = sess.Leave("conn-alice")
		require.NoError(t, err)
		registry.Forget("conn-alice", "A1")
		require.True(t, registry.RemoveIfEmpty("A1"))

		// When: Bob creates A1
		_, _, err = registry.CreateRoom("A1", "conn-bob", "Bob")

		// Then: it succeeds
		require.NoError(t, err)
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("Closed room still in the table does not block its id", func(t *testing.T) {
		// Given: A1 closed but not yet removed
		registry := NewRegistry()
		sess, _, err := registry.CreateRoom("A1", "conn-alice", "Alice")
		require.NoError(t, err)
		_, err = sess.Leave("conn-alice")
		require.NoError(t, err)

		// When: Bob creates A1
		fresh, _, err := registry.CreateRoom("A1", "conn-bob", "Bob")

		// Then: a new session replaces the closed one
		require.NoError(t, err)
		assert.NotSame(t, sess, fresh)
		assert.False(t, registry.RemoveIfEmpty("A1"))
	})
}

func TestRegistry_JoinRoom(t *testing.T) {
	t.Run("Unknown room", func(t *testing.T) {
		// Given: an empty registry
		registry := NewRegistry()

		// When: Bob joins a room nobody created
		_, _, err := registry.JoinRoom("NOPE", "conn-bob", "Bob")

		// Then: RoomNotFound
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Second player starts the game", func(t *testing.T) {
		// Given: room A1 with Alice
		registry := NewRegistry()
		_, _, err := registry.CreateRoom("A1", "conn-alice", "Alice")
		require.NoError(t, err)

		// When: Bob joins
		sess, res, err := registry.JoinRoom("A1", "conn-bob", "Bob")

		// Then: the game is in progress and Bob's membership is tracked
		require.NoError(t, err)
		assert.Equal(t, entity.PhaseInProgress, sess.Snapshot().Phase)
		assert.ElementsMatch(t, []string{"conn-alice", "conn-bob"}, res.Members)
		assert.Equal(t, []string{"A1"}, registry.RoomsOf("conn-bob"))
	})

	t.Run("Concurrent joiners fill the one free seat", func(t *testing.T) {
		// Given: room A1 with Alice
		registry := NewRegistry()
		_, _, err := registry.CreateRoom("A1", "conn-alice", "Alice")
		require.NoError(t, err)

		const joiners = 16

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			joined int
		)

		// When: many connections join at once
		for i := range joiners {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, _, err := registry.JoinRoom("A1", fmt.Sprintf("conn-%d", i), "P")
				if err == nil {
					mu.Lock()
					joined++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, apperror.ErrRoomFull)
			}()
		}
		wg.Wait()

		// Then: only one of them got the seat
		assert.Equal(t, 1, joined)
		sess, ok := registry.Lookup("A1")
		require.True(t, ok)
		assert.Len(t, sess.Snapshot().Players, 2)
	})
}

func TestRegistry_RemoveIfEmpty(t *testing.T) {
	t.Run("Keeps a room that still has a player", func(t *testing.T) {
		// Given: room A1 with Alice
		registry := NewRegistry()
		_, _, err := registry.CreateRoom("A1", "conn-alice", "Alice")
		require.NoError(t, err)

		// When: removal is attempted
		removed := registry.RemoveIfEmpty("A1")

		// Then: nothing happens
		assert.False(t, removed)
		_, ok := registry.Lookup("A1")
		assert.True(t, ok)
	})

	t.Run("Unknown room", func(t *testing.T) {
		registry := NewRegistry()

		assert.False(t, registry.RemoveIfEmpty("NOPE"))
	})
}

func TestRegistry_Memberships(t *testing.T) {
	// Given: Alice in two rooms
	registry := NewRegistry()
	_, _, err := registry.CreateRoom("B2", "conn-alice", "Alice")
	require.NoError(t, err)
	_, _, err = registry.CreateRoom("A1", "conn-alice", "Alice")
	require.NoError(t, err)

	// When: she is forgotten in one of them
	rooms := registry.RoomsOf("conn-alice")
	registry.Forget("conn-alice", "A1")

	// Then: the listing was sorted and now holds only the other room
	assert.Equal(t, []string{"A1", "B2"}, rooms)
	assert.Equal(t, []string{"B2"}, registry.RoomsOf("conn-alice"))

	registry.Forget("conn-alice", "B2")
	assert.Empty(t, registry.RoomsOf("conn-alice"))
}
