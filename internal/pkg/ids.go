package pkg

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/google/uuid"
)

const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIDLength   = 6
)

// GenerateRoomID - generates a short room code such as "K7Q2ZD".
func GenerateRoomID() (string, error) {
	return generateRoomID(rand.Reader)
}

func generateRoomID(source io.Reader) (string, error) {
	alphabetLen := big.NewInt(int64(len(roomIDAlphabet)))

	id := make([]byte, roomIDLength)
	for i := range id {
		n, err := rand.Int(source, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate room id: %w", err)
		}
		id[i] = roomIDAlphabet[n.Int64()]
	}

	return string(id), nil
}

// NewConnectionID - generates a unique id for a client connection.
func NewConnectionID() string {
	return uuid.NewString()
}
