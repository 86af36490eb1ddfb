// Package idgen allocates record identifiers.
package idgen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	StrategySequence = "sequence"
	StrategyUUID     = "uuid"
)

// Generator hands out identifiers that are unique for its lifetime.
type Generator interface {
	Next() string
}

// Sequence produces prefix+N with N strictly increasing, e.g. "B-1005".
type Sequence struct {
	mu     sync.Mutex
	prefix string
	last   int64
}

func NewSequence(prefix string, start int64) *Sequence {
	return &Sequence{prefix: prefix, last: start - 1}
}

func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.prefix + strconv.FormatInt(s.last, 10)
}

// Observe moves the counter past id when id carries this prefix and a larger number.
// Seeded records call it so new ids never collide with existing ones.
func (s *Sequence) Observe(id string) {
	rest, ok := strings.CutPrefix(id, s.prefix)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return
	}
	s.mu.Lock()
	if n > s.last {
		s.last = n
	}
	s.mu.Unlock()
}

// UUID produces prefix+random UUID.
type UUID struct {
	prefix string
}

func NewUUID(prefix string) *UUID {
	return &UUID{prefix: prefix}
}

func (u *UUID) Next() string {
	return u.prefix + uuid.NewString()
}

// New builds a generator for the configured strategy.
func New(strategy, prefix string, start int64) (Generator, error) {
	switch strings.ToLower(strategy) {
	case "", StrategySequence:
		return NewSequence(prefix, start), nil
	case StrategyUUID:
		return NewUUID(prefix), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}

// Observe forwards id to g when g tracks a sequence.
func Observe(g Generator, ids ...string) {
	seq, ok := g.(*Sequence)
	if !ok {
		return
	}
	for _, id := range ids {
		seq.Observe(id)
	}
}
