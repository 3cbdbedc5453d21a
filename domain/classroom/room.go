// Package classroom contains the shared state of a collaborative classroom.
// A Room owns its notes, polls and present users; every exported method is
// atomic with respect to the other methods of the same Room.
// No runtime, network, or transport logic should be added here.
package classroom

import (
	"classroom-lab/errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type RoomID string

type Room struct {
	mu        sync.RWMutex
	ID        RoomID
	Name      string
	CreatedAt time.Time
	notes     map[NoteID]*Note
	polls     map[PollID]*Poll
	users     map[ConnID]*User
	now       func() time.Time
}

// Summary is the listing view of a room.
type Summary struct {
	ID        RoomID    `json:"id"`
	Name      string    `json:"name"`
	UserCount int       `json:"userCount"`
	NoteCount int       `json:"noteCount"`
	PollCount int       `json:"pollCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the full state of a room, sent once to a joiner.
type Snapshot struct {
	Notes []Note `json:"notes"`
	Polls []Poll `json:"polls"`
	Users []User `json:"users"`
}

func NewRoom(id RoomID, name string) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		notes:     make(map[NoteID]*Note),
		polls:     make(map[PollID]*Poll),
		users:     make(map[ConnID]*User),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *Room) AddNote(content, color string, x, y float64, ownerID ConnID, ownerName string, opts ...NoteOption) Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := r.now()
	note := &Note{
		ID:        NoteID(uuid.NewString()),
		Content:   content,
		Color:     color,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		X:         x,
		Y:         y,
		CreatedAt: at,
		UpdatedAt: at,
	}
	for _, opt := range opts {
		opt(note)
	}
	r.notes[note.ID] = note
	return *note
}

// UpdateNote merges the given fields into an existing note.
// Any member may edit any note: there is no ownership check.
func (r *Room) UpdateNote(id NoteID, update NoteUpdate) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok {
		return Note{}, errors.ErrNoteNotFound
	}
	note.apply(update, r.now())
	return *note, nil
}

// DeleteNote reports whether a note was removed. Deleting an absent note is a no-op.
func (r *Room) DeleteNote(id NoteID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[id]; !ok {
		return false
	}
	delete(r.notes, id)
	return true
}

// CreatePoll stores a new poll. Options are expected to be validated by the caller.
func (r *Room) CreatePoll(question string, options []string, ownerID ConnID, ownerName string) Poll {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := r.now()
	poll := &Poll{
		ID:        PollID(uuid.NewString()),
		Question:  question,
		Options:   slices.Clone(options),
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Responses: make(map[ConnID]int),
		CreatedAt: at,
		UpdatedAt: at,
	}
	r.polls[poll.ID] = poll
	return poll.clone()
}

// AddPollResponse records the vote of a connection, replacing its previous vote if any.
func (r *Room) AddPollResponse(id PollID, connID ConnID, optionIndex int) (Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[id]
	if !ok {
		return Poll{}, errors.ErrPollNotFound
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return Poll{}, errors.ErrInvalidOption
	}
	poll.Responses[connID] = optionIndex
	poll.UpdatedAt = r.now()
	return poll.clone(), nil
}

func (r *Room) DeletePoll(id PollID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[id]; !ok {
		return false
	}
	delete(r.polls, id)
	return true
}

func (r *Room) AddUser(connID ConnID, displayName, color string) User {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := &User{
		ConnID:      connID,
		DisplayName: displayName,
		Color:       color,
		JoinedAt:    r.now(),
	}
	r.users[connID] = user
	return *user
}

func (r *Room) RemoveUser(connID ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[connID]; !ok {
		return false
	}
	delete(r.users, connID)
	return true
}

func (r *Room) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Snapshot copies the current state, each list ordered by creation or join time.
func (r *Room) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := lo.Map(lo.Values(r.notes), func(n *Note, _ int) Note { return *n })
	slices.SortFunc(notes, func(a, b Note) int { return a.CreatedAt.Compare(b.CreatedAt) })

	polls := lo.Map(lo.Values(r.polls), func(p *Poll, _ int) Poll { return p.clone() })
	slices.SortFunc(polls, func(a, b Poll) int { return a.CreatedAt.Compare(b.CreatedAt) })

	users := lo.Map(lo.Values(r.users), func(u *User, _ int) User { return *u })
	slices.SortFunc(users, func(a, b User) int { return a.JoinedAt.Compare(b.JoinedAt) })

	return Snapshot{Notes: notes, Polls: polls, Users: users}
}

func (r *Room) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Summary{
		ID:        r.ID,
		Name:      r.Name,
		UserCount: len(r.users),
		NoteCount: len(r.notes),
		PollCount: len(r.polls),
		CreatedAt: r.CreatedAt,
	}
}
