package classroom

import (
	"classroom-lab/errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestRoom returns a room whose clock moves one second per call.
func newTestRoom() *Room {
	room := NewRoom("r1", "Biology 101")
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	room.now = func() time.Time {
		at = at.Add(time.Second)
		return at
	}
	return room
}

func TestRoom_AddNote(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()

	note := room.AddNote("Hi", "#ff0", 10, 20, "alice", "Alice", WithLanguage("en"))

	req.NotEmpty(note.ID)
	req.Equal("Hi", note.Content)
	req.Equal(ConnID("alice"), note.OwnerID)
	req.Equal("Alice", note.OwnerName)
	req.Equal("en", note.Language)
	req.Equal(note.CreatedAt, note.UpdatedAt)
	req.Equal([]Note{note}, room.Snapshot().Notes)
}

func TestRoom_UpdateNote_Merges_Fields(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()
	note := room.AddNote("Hi", "#ff0", 10, 20, "alice", "Alice")

	// When only x changes
	x := 42.0
	updated, err := room.UpdateNote(note.ID, NoteUpdate{X: &x})

	// Then every other field is kept and the update time moves
	req.NoError(err)
	req.Equal(42.0, updated.X)
	req.Equal(20.0, updated.Y)
	req.Equal("Hi", updated.Content)
	req.Equal("#ff0", updated.Color)
	req.True(updated.UpdatedAt.After(note.UpdatedAt))
	req.Equal(note.CreatedAt, updated.CreatedAt)
}

func TestRoom_UpdateNote_Unknown(t *testing.T) {
	room := newTestRoom()
	content := "Hi"

	_, err := room.UpdateNote("missing", NoteUpdate{Content: &content})

	require.ErrorIs(t, err, errors.ErrNoteNotFound)
}

func TestRoom_DeleteNote_Twice(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()
	note := room.AddNote("Hi", "", 0, 0, "alice", "Alice")

	req.True(room.DeleteNote(note.ID))
	req.False(room.DeleteNote(note.ID))
	req.Empty(room.Snapshot().Notes)
}

func TestRoom_Poll_One_Vote_Per_Connection(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()
	poll := room.CreatePoll("Q?", []string{"X", "Y"}, "alice", "Alice")
	req.Empty(poll.Responses)

	// Given Alice voted X and Bob voted Y
	_, err := room.AddPollResponse(poll.ID, "alice", 0)
	req.NoError(err)
	updated, err := room.AddPollResponse(poll.ID, "bob", 1)
	req.NoError(err)
	req.Equal([]int{1, 1}, updated.Tally())

	// When Alice votes again
	updated, err = room.AddPollResponse(poll.ID, "alice", 1)

	// Then her vote is replaced
	req.NoError(err)
	req.Equal([]int{0, 2}, updated.Tally())
	req.Equal(map[ConnID]int{"alice": 1, "bob": 1}, updated.Responses)
}

func TestRoom_Poll_Invalid_Option(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()
	poll := room.CreatePoll("Q?", []string{"X", "Y"}, "alice", "Alice")

	for _, idx := range []int{-1, 2, 10} {
		_, err := room.AddPollResponse(poll.ID, "alice", idx)
		req.ErrorIs(err, errors.ErrInvalidOption)
		req.ErrorIs(err, errors.ErrMalformedInput)
	}
	req.Empty(room.Snapshot().Polls[0].Responses)
}

func TestRoom_Poll_Unknown(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()

	_, err := room.AddPollResponse("missing", "alice", 0)
	req.ErrorIs(err, errors.ErrPollNotFound)
	req.False(room.DeletePoll("missing"))
}

func TestRoom_Returned_Poll_Is_Detached(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()
	options := []string{"X", "Y"}
	poll := room.CreatePoll("Q?", options, "alice", "Alice")

	// When the caller mutates what it got back
	options[0] = "changed"
	poll.Responses["mallory"] = 0

	// Then the room state is untouched
	stored := room.Snapshot().Polls[0]
	req.Equal([]string{"X", "Y"}, stored.Options)
	req.Empty(stored.Responses)
}

func TestRoom_Users(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()

	room.AddUser("alice", "Alice", "hsl(1, 70%, 60%)")
	room.AddUser("bob", "Bob", "hsl(2, 70%, 60%)")
	req.Equal(2, room.UserCount())

	req.True(room.RemoveUser("alice"))
	req.False(room.RemoveUser("alice"))
	req.Equal(1, room.UserCount())
	req.Equal("Bob", room.Snapshot().Users[0].DisplayName)
}

func TestRoom_Snapshot_Ordered_By_Creation(t *testing.T) {
	req := require.New(t)
	room := newTestRoom()
	first := room.AddNote("first", "", 0, 0, "alice", "Alice")
	second := room.AddNote("second", "", 0, 0, "alice", "Alice")
	third := room.AddNote("third", "", 0, 0, "alice", "Alice")
	room.CreatePoll("P1", []string{"a", "b"}, "alice", "Alice")
	room.CreatePoll("P2", []string{"a", "b"}, "alice", "Alice")

	snapshot := room.Snapshot()

	req.Equal([]NoteID{first.ID, second.ID, third.ID},
		[]NoteID{snapshot.Notes[0].ID, snapshot.Notes[1].ID, snapshot.Notes[2].ID})
	req.Equal("P1", snapshot.Polls[0].Question)
	req.Equal("P2", snapshot.Polls[1].Question)

	summary := room.Summary()
	req.Equal(3, summary.NoteCount)
	req.Equal(2, summary.PollCount)
	req.Equal("Biology 101", summary.Name)
}

func TestRoom_Concurrent_Votes(t *testing.T) {
	req := require.New(t)
	room := NewRoom("r1", "Biology 101")
	poll := room.CreatePoll("Q?", []string{"X", "Y"}, "alice", "Alice")

	// When many connections vote at once
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := room.AddPollResponse(poll.ID, ConnID(fmt.Sprintf("conn-%d", i)), i%2)
			req.NoError(err)
		}(i)
	}
	wg.Wait()

	// Then no vote is lost
	req.Equal([]int{50, 50}, room.Snapshot().Polls[0].Tally())
}
