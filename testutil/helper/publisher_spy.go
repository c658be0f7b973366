package helper

import (
	"context"
	"sync"

	"github.com/equilobe/library-go/library/shared/core"
)

// PublisherSpy records published events and can be told to fail.
type PublisherSpy struct {
	mu     sync.Mutex
	events []core.DomainEvent
	err    error
}

func NewPublisherSpy() *PublisherSpy {
	return &PublisherSpy{}
}

// FailWith makes every following Publish return err after recording the event.
func (s *PublisherSpy) FailWith(err error) *PublisherSpy {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err

	return s
}

func (s *PublisherSpy) Publish(_ context.Context, event core.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)

	return s.err
}

// GetEvents returns a copy of everything published so far.
func (s *PublisherSpy) GetEvents() []core.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]core.DomainEvent(nil), s.events...)
}
