//go:generate go run go.uber.org/mock/mockgen -source=activity.go -destination=../mocks/mock_activity_repository.go -package=mocks
package repositories

import (
	"classroom-lab/errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const activityPrefix = "activity"

type IActivityRepository interface {
	StoreActivity(activity Activity) error
	GetActivity(roomID string, cursor *string) ([]Activity, *string, error)
}

// Activity is one broadcast event as recorded in the journal.
type Activity struct {
	ID      uuid.UUID      `json:"id"`
	Room    string         `json:"room"`
	Event   string         `json:"event"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload"`
}

type ActivityRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitActivity *int
}

func NewActivityRepository(db *badger.DB, log *slog.Logger, limitActivity *int) ActivityRepository {
	return ActivityRepository{db: db, log: log, limitActivity: limitActivity}
}

// StoreActivity appends an activity to the journal.
// The key is formatted as "activity:{room_id}:{timestamp_padded}:{uuid}":
// 19-digit zero padding keeps the lexicographical order chronological and the
// uuid separates two activities recorded at the same nanosecond.
func (r ActivityRepository) StoreActivity(activity Activity) error {
	key := activityKey(activity)
	value, err := encodeActivity(activity)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// GetActivity returns a page of activities of a room, newest first.
// The returned cursor is the key suffix of the last activity of the page,
// nil when the journal holds nothing more for this room.
func (r ActivityRepository) GetActivity(roomID string, cursor *string) ([]Activity, *string, error) {
	var values [][]byte
	var lastKey string
	var more bool
	prefixStr := fmt.Sprintf("%s:%s:", activityPrefix, roomID)
	prefix := []byte(prefixStr)

	if cursor != nil && !isValidCursor(*cursor) {
		return nil, nil, errors.ErrInvalidCursor
	}

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Past the newest possible key: activity:{room}:9999999999999999999
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			// Peek one item past the limit to know whether another page exists
			if r.limitActivity != nil && len(values) == *r.limitActivity {
				r.log.Debug(fmt.Sprintf("Maximum of %d activities reached", *r.limitActivity))
				more = true
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	activities := make([]Activity, 0, len(values))
	for _, value := range values {
		activity, err := decodeActivity(value)
		if err != nil {
			return nil, nil, err
		}
		activities = append(activities, activity)
	}
	if !more {
		return activities, nil, nil
	}
	return activities, &lastKey, nil
}

func activityKey(activity Activity) string {
	return fmt.Sprintf("%s:%s:%019d:%s", activityPrefix, activity.Room, activity.At.UnixNano(), activity.ID)
}

// isValidCursor accepts "{timestamp_padded}:{uuid}".
func isValidCursor(cursor string) bool {
	at, id, ok := strings.Cut(cursor, ":")
	if !ok || len(at) != 19 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func encodeActivity(activity Activity) ([]byte, error) {
	payload := activity.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	record, err := structpb.NewStruct(map[string]any{
		"id":      activity.ID.String(),
		"event":   activity.Event,
		"room":    activity.Room,
		"at":      activity.At.UTC().Format(time.RFC3339Nano),
		"payload": payload,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(record)
}

func decodeActivity(value []byte) (Activity, error) {
	var record structpb.Struct
	if err := proto.Unmarshal(value, &record); err != nil {
		return Activity{}, err
	}
	fields := record.GetFields()
	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return Activity{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return Activity{}, err
	}
	return Activity{
		ID:      id,
		Room:    fields["room"].GetStringValue(),
		Event:   fields["event"].GetStringValue(),
		At:      at,
		Payload: fields["payload"].GetStructValue().AsMap(),
	}, nil
}
