//go:generate go run go.uber.org/mock/mockgen -source=note_index.go -destination=../mocks/mock_note_index.go -package=mocks
package repositories

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
)

const (
	fieldID      = "_id"
	fieldRoom    = "room"
	fieldContent = "content"
	fieldOwner   = "owner"
)

type INoteIndex interface {
	Upsert(note IndexedNote) error
	Delete(noteID string) error
	Search(ctx context.Context, roomID, text string, limit int) ([]string, error)
}

// IndexedNote is the searchable part of a note.
type IndexedNote struct {
	ID        string
	Room      string
	Content   string
	OwnerName string
}

// NoteIndex is a full-text index of note contents, scoped by room.
type NoteIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewNoteIndex(writer *bluge.Writer, log *slog.Logger) NoteIndex {
	return NoteIndex{writer: writer, log: log}
}

func (n NoteIndex) Upsert(note IndexedNote) error {
	doc := bluge.NewDocument(note.ID).
		AddField(bluge.NewKeywordField(fieldRoom, note.Room).StoreValue()).
		AddField(bluge.NewTextField(fieldContent, note.Content).StoreValue()).
		AddField(bluge.NewKeywordField(fieldOwner, note.OwnerName).StoreValue())
	return n.writer.Update(doc.ID(), doc)
}

// Delete is a no-op for an unknown note.
func (n NoteIndex) Delete(noteID string) error {
	return n.writer.Delete(bluge.Identifier(noteID))
}

// Search returns the ids of the notes of a room matching text, best match first.
func (n NoteIndex) Search(ctx context.Context, roomID, text string, limit int) ([]string, error) {
	reader, err := n.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			n.log.Debug("Failed to close index reader", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(roomID).SetField(fieldRoom)).
		AddMust(bluge.NewMatchQuery(text).SetField(fieldContent))

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				ids = append(ids, string(value))
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
