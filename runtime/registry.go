package runtime

import (
	"classroom-lab/contract"
	"classroom-lab/domain/classroom"
	"classroom-lab/errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var _ contract.IRoomRegistry = (*RoomRegistry)(nil)

// RoomRegistry maps classroom ids to their aggregate.
// Rooms are created explicitly and never destroyed in-process.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[classroom.RoomID]*classroom.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[classroom.RoomID]*classroom.Room)}
}

func (r *RoomRegistry) Create(name string) (*classroom.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: classroom name is blank", errors.ErrMalformedInput)
	}
	room := classroom.NewRoom(classroom.RoomID(uuid.NewString()), name)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room
	return room, nil
}

func (r *RoomRegistry) Get(id classroom.RoomID) (*classroom.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// List returns the summaries of every classroom, oldest first.
func (r *RoomRegistry) List() []classroom.Summary {
	r.mu.RLock()
	rooms := lo.Values(r.rooms)
	r.mu.RUnlock()

	summaries := lo.Map(rooms, func(room *classroom.Room, _ int) classroom.Summary {
		return room.Summary()
	})
	slices.SortFunc(summaries, func(a, b classroom.Summary) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return summaries
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// State is the full view of one classroom served to the room directory.
type State struct {
	ID   classroom.RoomID `json:"id"`
	Name string           `json:"name"`
	classroom.Snapshot
}

func (r *RoomRegistry) Snapshot(id classroom.RoomID) (State, error) {
	room, ok := r.Get(id)
	if !ok {
		return State{}, errors.ErrRoomNotFound
	}
	return State{ID: room.ID, Name: room.Name, Snapshot: room.Snapshot()}, nil
}
