package store

import (
	"errors"
	"sync"
	"sync/atomic"

	"rentease/internal/events"
	"rentease/internal/metrics"

	"github.com/rs/zerolog"
)

var (
	ErrDuplicateID = errors.New("record id already exists")
	ErrConflict    = errors.New("conflicting record exists")
)

// Record is anything a Collection can hold.
type Record interface {
	GetID() string
}

// Collection is an ordered, concurrency-safe list of records of one entity type.
// Reads return copies; the backing slice never leaves the collection.
type Collection[T Record] struct {
	mu      sync.RWMutex
	entity  string
	items   []T
	clock   *atomic.Uint64
	version uint64
	bus     *events.EventBus
	logger  *zerolog.Logger
}

// NewCollection creates a collection. clock is the shared store version counter and may be nil.
func NewCollection[T Record](entity string, clock *atomic.Uint64, bus *events.EventBus, logger *zerolog.Logger) *Collection[T] {
	if clock == nil {
		clock = &atomic.Uint64{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Collection[T]{
		entity: entity,
		clock:  clock,
		bus:    bus,
		logger: logger,
	}
}

func (c *Collection[T]) Entity() string { return c.entity }

// Insert prepends rec.
func (c *Collection[T]) Insert(rec T) error {
	return c.add(rec, true)
}

// Append adds rec at the end, used for seeding and generated records.
func (c *Collection[T]) Append(rec T) error {
	return c.add(rec, false)
}

// InsertUnique prepends rec unless a stored record satisfies conflict.
// The check and the insert happen under one lock.
func (c *Collection[T]) InsertUnique(rec T, conflict func(T) bool) error {
	return c.addIf(rec, true, conflict)
}

func (c *Collection[T]) add(rec T, front bool) error {
	return c.addIf(rec, front, nil)
}

func (c *Collection[T]) addIf(rec T, front bool, conflict func(T) bool) error {
	c.mu.Lock()
	if c.indexLocked(rec.GetID()) >= 0 {
		c.mu.Unlock()
		return ErrDuplicateID
	}
	if conflict != nil && c.anyLocked(-1, conflict) {
		c.mu.Unlock()
		return ErrConflict
	}
	if front {
		c.items = append([]T{rec}, c.items...)
	} else {
		c.items = append(c.items, rec)
	}
	v := c.bumpLocked()
	c.mu.Unlock()

	c.emit("create", events.EventRecordCreated, rec.GetID(), v)
	return nil
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Find returns the first record matching pred in collection order.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Update applies fn to the record with the given id. Unknown ids are a no-op.
func (c *Collection[T]) Update(id string, fn func(*T)) (T, bool) {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	fn(&c.items[i])
	updated := c.items[i]
	v := c.bumpLocked()
	c.mu.Unlock()

	c.emit("update", events.EventRecordUpdated, id, v)
	return updated, true
}

// UpdateUnique applies fn to the record with the given id unless another record
// satisfies conflict. ok is false for unknown ids.
func (c *Collection[T]) UpdateUnique(id string, conflict func(T) bool, fn func(*T)) (T, bool, error) {
	var zero T
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return zero, false, nil
	}
	if conflict != nil && c.anyLocked(i, conflict) {
		c.mu.Unlock()
		return zero, true, ErrConflict
	}
	fn(&c.items[i])
	updated := c.items[i]
	v := c.bumpLocked()
	c.mu.Unlock()

	c.emit("update", events.EventRecordUpdated, id, v)
	return updated, true, nil
}

// UpdateEach applies fn to every listed id that exists and returns how many were touched.
// The whole batch bumps the version once.
func (c *Collection[T]) UpdateEach(ids []string, fn func(*T)) int {
	c.mu.Lock()
	n := 0
	for _, id := range ids {
		if i := c.indexLocked(id); i >= 0 {
			fn(&c.items[i])
			n++
		}
	}
	var v uint64
	if n > 0 {
		v = c.bumpLocked()
	}
	c.mu.Unlock()

	if n > 0 {
		c.emit("bulk_update", events.EventRecordUpdated, "", v)
	}
	return n
}

// Delete removes exactly one record. Others keep their relative order.
func (c *Collection[T]) Delete(id string) bool {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	v := c.bumpLocked()
	c.mu.Unlock()

	c.emit("delete", events.EventRecordDeleted, id, v)
	return true
}

// All returns a copy of the records in collection order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Filter returns the records matching pred in collection order. A nil pred matches all.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	if pred == nil {
		return c.All()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Replace swaps the whole contents, e.g. after loading a snapshot.
func (c *Collection[T]) Replace(items []T) {
	cp := make([]T, len(items))
	copy(cp, items)

	c.mu.Lock()
	c.items = cp
	v := c.bumpLocked()
	c.mu.Unlock()

	c.emit("replace", events.EventRecordsReplaced, "", v)
}

// Version is the store version of the last mutation of this collection.
func (c *Collection[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Collection[T]) indexLocked(id string) int {
	for i := range c.items {
		if c.items[i].GetID() == id {
			return i
		}
	}
	return -1
}

// anyLocked reports whether a record other than the one at skip matches pred.
func (c *Collection[T]) anyLocked(skip int, pred func(T) bool) bool {
	for i := range c.items {
		if i != skip && pred(c.items[i]) {
			return true
		}
	}
	return false
}

func (c *Collection[T]) bumpLocked() uint64 {
	c.version = c.clock.Add(1)
	return c.version
}

func (c *Collection[T]) emit(op, eventType, id string, version uint64) {
	metrics.IncMutation(c.entity, op)
	err := c.bus.PublishJSON(eventType, events.RecordEventPayload{
		Entity:  c.entity,
		ID:      id,
		Version: version,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("entity", c.entity).Str("op", op).Msg("event handler failed")
	}
}
