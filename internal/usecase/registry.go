package usecase

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/session"
)

// Registry is the table of live rooms. It also remembers which rooms each connection
// sits in so a dropped connection can leave all of them.
type Registry struct {
	mu          sync.Mutex
	rooms       map[string]*session.Session
	memberships map[string]map[string]struct{}

	sessionOpts []session.Option
}

func NewRegistry(opts ...session.Option) *Registry {
	return &Registry{
		rooms:       make(map[string]*session.Session),
		memberships: make(map[string]map[string]struct{}),
		sessionOpts: opts,
	}
}

// CreateRoom checks and claims roomID in one step and seats the creator.
func (that *Registry) CreateRoom(roomID, connID, name string) (*session.Session, session.Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	// a closed session may linger until RemoveIfEmpty runs; its id is free again
	if existing, ok := that.rooms[roomID]; ok && !existing.Closed() {
		return nil, session.Result{}, fmt.Errorf("%w: %s", apperror.ErrRoomAlreadyExists, roomID)
	}

	sess := session.New(roomID, that.sessionOpts...)

	res, err := sess.Create(connID, name)
	if err != nil {
		return nil, session.Result{}, err
	}

	that.rooms[roomID] = sess
	that.addMembership(connID, roomID)

	return sess, res, nil
}

// JoinRoom seats connID in an existing room.
func (that *Registry) JoinRoom(roomID, connID, name string) (*session.Session, session.Result, error) {
	sess, ok := that.Lookup(roomID)
	if !ok {
		return nil, session.Result{}, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	res, err := sess.Join(connID, name)
	if err != nil {
		return nil, session.Result{}, err
	}

	that.mu.Lock()
	that.addMembership(connID, roomID)
	that.mu.Unlock()

	return sess, res, nil
}

// Lookup returns the live session for roomID.
func (that *Registry) Lookup(roomID string) (*session.Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	sess, ok := that.rooms[roomID]
	if !ok || sess.Closed() {
		return nil, false
	}

	return sess, true
}

// RemoveIfEmpty drops roomID once its session has closed.
func (that *Registry) RemoveIfEmpty(roomID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	sess, ok := that.rooms[roomID]
	if !ok || !sess.Closed() {
		return false
	}

	delete(that.rooms, roomID)

	return true
}

// Forget records that connID no longer sits in roomID.
func (that *Registry) Forget(connID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	rooms := that.memberships[connID]
	delete(rooms, roomID)

	if len(rooms) == 0 {
		delete(that.memberships, connID)
	}
}

// RoomsOf lists the rooms connID sits in, sorted.
func (that *Registry) RoomsOf(connID string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	rooms := make([]string, 0, len(that.memberships[connID]))
	for roomID := range that.memberships[connID] {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)

	return rooms
}

// Count returns the number of live rooms.
func (that *Registry) Count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	n := 0
	for _, sess := range that.rooms {
		if !sess.Closed() {
			n++
		}
	}

	return n
}

func (that *Registry) addMembership(connID, roomID string) {
	rooms, ok := that.memberships[connID]
	if !ok {
		rooms = make(map[string]struct{})
		that.memberships[connID] = rooms
	}
	rooms[roomID] = struct{}{}
}
