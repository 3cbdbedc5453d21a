package sink

import (
	"classroom-lab/domain/event"
	"classroom-lab/protocol"
	"classroom-lab/repositories"
	"context"
	"time"

	"github.com/google/uuid"
)

// JournalSink records every broadcast event in the activity journal.
type JournalSink struct {
	repository repositories.IActivityRepository
	now        func() time.Time
}

func NewJournalSink(repository repositories.IActivityRepository) JournalSink {
	return JournalSink{repository: repository, now: func() time.Time { return time.Now().UTC() }}
}

func (j JournalSink) Consume(ctx context.Context, e event.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := protocol.Payload(e)
	if err != nil {
		return err
	}
	return j.repository.StoreActivity(repositories.Activity{
		ID:      uuid.New(),
		Room:    string(e.RoomID()),
		Event:   string(e.Name()),
		At:      j.now(),
		Payload: payload,
	})
}
