package identity

import (
	"sync"

	"github.com/google/uuid"
)

// Generator hands out identities for new entities.
type Generator interface {
	New() uuid.UUID
}

// V7 generates time-ordered UUIDs.
type V7 struct{}

func (V7) New() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}

// Sequence returns the given ids in order, then falls back to random ones.
type Sequence struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func NewSequence(ids ...uuid.UUID) *Sequence {
	return &Sequence{ids: ids}
}

func (s *Sequence) New() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ids) == 0 {
		return uuid.New()
	}

	id := s.ids[0]
	s.ids = s.ids[1:]

	return id
}
