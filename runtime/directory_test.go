package runtime

import (
	"classroom-lab/contract"
	"classroom-lab/domain/classroom"
	"classroom-lab/domain/event"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestDirectory_Register_One_Room_One_Participant(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	sink := Sink{name: "alice"}

	// Given no connection is attached
	req.Empty(directory.connections)
	req.Empty(directory.roomMembers)

	// When a connection is attached and joins a room
	directory.Attach("c1", sink)
	directory.Register(classroom.Session{ConnID: "c1", RoomID: "bio", DisplayName: "Alice"})

	// Then
	session, ok := directory.Lookup("c1")
	req.True(ok)
	req.Equal(classroom.RoomID("bio"), session.RoomID)
	req.Len(directory.roomMembers, 1)
	req.Contains(directory.roomMembers["bio"], classroom.ConnID("c1"))
	req.Equal([]contract.EventSink{sink}, directory.SinksForRoom("bio"))

	connections, sessions := directory.Counts()
	req.Equal(1, connections)
	req.Equal(1, sessions)
}

func TestDirectory_Attached_Without_Session(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()

	directory.Attach("c1", Sink{name: "alice"})

	// Then the connection has a sink but no session and no group
	_, ok := directory.SinkFor("c1")
	req.True(ok)
	_, ok = directory.Lookup("c1")
	req.False(ok)
	req.Nil(directory.SinksForRoom("bio"))
}

func TestDirectory_Register_Multiple_Rooms(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()

	directory.Attach("c1", Sink{name: "alice"})
	directory.Attach("c2", Sink{name: "bob"})
	directory.Attach("c3", Sink{name: "clara"})

	// When participants join different rooms
	directory.Register(classroom.Session{ConnID: "c1", RoomID: "bio"})
	directory.Register(classroom.Session{ConnID: "c2", RoomID: "bio"})
	directory.Register(classroom.Session{ConnID: "c3", RoomID: "chem"})

	// Then each room group only holds its members
	req.Len(directory.SinksForRoom("bio"), 2)
	req.Len(directory.SinksForRoom("chem"), 1)
}

func TestDirectory_Register_Moves_Connection(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	directory.Attach("c1", Sink{name: "alice"})

	directory.Register(classroom.Session{ConnID: "c1", RoomID: "bio"})

	// When the same connection registers in another room
	directory.Register(classroom.Session{ConnID: "c1", RoomID: "chem"})

	// Then it belongs to one group only
	req.Nil(directory.SinksForRoom("bio"))
	req.Len(directory.SinksForRoom("chem"), 1)
	_, exists := directory.roomMembers["bio"]
	req.False(exists)
}

func TestDirectory_Remove(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	directory.Attach("c1", Sink{name: "alice"})
	directory.Attach("c2", Sink{name: "bob"})
	directory.Register(classroom.Session{ConnID: "c1", RoomID: "bio", DisplayName: "Alice"})
	directory.Register(classroom.Session{ConnID: "c2", RoomID: "bio", DisplayName: "Bob"})

	// When a session is removed
	session, ok := directory.Remove("c1")

	// Then it is returned once and the group shrinks
	req.True(ok)
	req.Equal("Alice", session.DisplayName)
	req.Len(directory.SinksForRoom("bio"), 1)

	_, ok = directory.Remove("c1")
	req.False(ok)

	// And the connection stays attached
	_, ok = directory.SinkFor("c1")
	req.True(ok)
}

func TestDirectory_Remove_Last_Member_Drops_Group(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	directory.Attach("c1", Sink{name: "alice"})
	directory.Register(classroom.Session{ConnID: "c1", RoomID: "bio"})

	directory.Remove("c1")
	directory.Detach("c1")

	req.Empty(directory.roomMembers)
	connections, sessions := directory.Counts()
	req.Zero(connections)
	req.Zero(sessions)
}
