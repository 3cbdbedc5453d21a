package sink

import (
	"classroom-lab/domain/classroom"
	"classroom-lab/domain/event"
	"classroom-lab/repositories"
	"context"
	"fmt"
	"log/slog"
)

// SearchSink keeps the note index in sync with the broadcast note events.
type SearchSink struct {
	index repositories.INoteIndex
	log   *slog.Logger
}

func NewSearchSink(index repositories.INoteIndex, log *slog.Logger) SearchSink {
	return SearchSink{index: index, log: log}
}

func (s SearchSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.NoteAdded:
		return s.index.Upsert(toIndexedNote(evt.Room, evt.Note))
	case event.NoteUpdated:
		return s.index.Upsert(toIndexedNote(evt.Room, evt.Note))
	case event.NoteDeleted:
		return s.index.Delete(string(evt.NoteID))
	default:
		s.log.Debug(fmt.Sprintf("Not indexed event : %s", evt.Name()))
		return nil
	}
}

func toIndexedNote(room classroom.RoomID, note classroom.Note) repositories.IndexedNote {
	return repositories.IndexedNote{
		ID:        string(note.ID),
		Room:      string(room),
		Content:   note.Content,
		OwnerName: note.OwnerName,
	}
}
