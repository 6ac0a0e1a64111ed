package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/session"
)

func TestHub_Publish(t *testing.T) {
	t.Run("Only the game start is held back", func(t *testing.T) {
		// Given: a hub with a start delay and the creator connected
		hub := NewHub(discardLogger(), WithStartDelay(time.Second))
		creator := newClient(discardLogger(), "conn-alice", nil)
		hub.register(creator)

		// When: a joiner's result is published
		var res session.Result
		s := session.New("A1", session.WithNotifier(func(r session.Result) { res = r }))
		_, err := s.Create("conn-alice", "Alice")
		require.NoError(t, err)
		_, err = s.Join("conn-bob", "Bob")
		require.NoError(t, err)

		begin := time.Now()
		hub.Publish(res)

		// Then: the creator gets opponent_joined now and game_start after the delay
		require.Len(t, creator.send, 2)

		joined := <-creator.send
		assert.True(t, joined.notBefore.IsZero())
		assert.Equal(t, "opponent_joined", frameAction(t, joined))

		started := <-creator.send
		assert.Equal(t, "game_start", frameAction(t, started))
		assert.WithinDuration(t, begin.Add(time.Second), started.notBefore, 100*time.Millisecond)
	})

	t.Run("Unknown recipients are skipped", func(t *testing.T) {
		// Given: a hub with no connections
		hub := NewHub(discardLogger())

		// When / Then: publishing to a departed player is harmless
		assert.NotPanics(t, func() {
			hub.Publish(session.Result{RoomID: "A1", Sender: "gone", Members: []string{"gone"}})
			hub.Reject("gone", assert.AnError)
		})
	})
}

func frameAction(t *testing.T, frame outFrame) string {
	t.Helper()

	var message Message
	require.NoError(t, json.Unmarshal(frame.data, &message))

	return message.Action
}
