package sink

import (
	"classroom-lab/domain/event"
	"classroom-lab/errors"
	"context"
	"sync"
)

// ConnectionSink buffers the outbound events of one connection.
// Consume never blocks: when the buffer is full the event is refused and
// the sink reports an overflow, the transport then closes the slow client.
type ConnectionSink struct {
	events   chan event.DomainEvent
	overflow chan struct{}
	done     chan struct{}
	once     sync.Once
	overOnce sync.Once
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{
		events:   make(chan event.DomainEvent, bufferSize),
		overflow: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *ConnectionSink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrConnectionClosed
	default:
	}
	select {
	case s.events <- e:
		return nil
	default:
		s.overOnce.Do(func() { close(s.overflow) })
		return errors.ErrSinkFull
	}
}

// Events is drained by the connection write loop.
func (s *ConnectionSink) Events() <-chan event.DomainEvent { return s.events }

// Overflow is closed the first time an event is refused.
func (s *ConnectionSink) Overflow() <-chan struct{} { return s.overflow }

// Close refuses every later event. It is safe to call more than once.
func (s *ConnectionSink) Close() {
	s.once.Do(func() { close(s.done) })
}
