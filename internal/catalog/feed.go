package catalog

import (
	"context"
	"sync"
	"time"

	"rentease/internal/events"
	"rentease/internal/models"

	"github.com/rs/zerolog"
)

// DemoNotification is pushed once, Delay after the feed starts.
type DemoNotification struct {
	Delay   time.Duration
	Message string
}

var DemoNotifications = []DemoNotification{
	{Delay: 800 * time.Millisecond, Message: "New verified listing added near you"},
	{Delay: 1400 * time.Millisecond, Message: "20+ new units available — Explore More"},
}

// Feed is the storefront notification list.
type Feed struct {
	mu       sync.Mutex
	items    []models.Notification
	nextID   int64
	eventBus *events.EventBus
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewFeed(eventBus *events.EventBus, logger *zerolog.Logger) *Feed {
	return &Feed{
		eventBus: eventBus,
		now:      time.Now,
		logger:   logger,
	}
}

func (f *Feed) Push(message string) models.Notification {
	f.mu.Lock()
	f.nextID++
	n := models.Notification{
		ID:        f.nextID,
		Message:   message,
		CreatedAt: f.now().UTC().Format(time.RFC3339),
	}
	f.items = append(f.items, n)
	f.mu.Unlock()

	if err := f.eventBus.PublishJSON(events.EventNotificationPushed, n); err != nil {
		f.logger.Warn().Err(err).Msg("notification event handler failed")
	}
	return n
}

// List returns notifications newest first.
func (f *Feed) List() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, len(f.items))
	for i, n := range f.items {
		out[len(f.items)-1-i] = n
	}
	return out
}

func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if !it.Read {
			n++
		}
	}
	return n
}

func (f *Feed) MarkRead(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead returns how many notifications changed.
func (f *Feed) MarkAllRead() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for i := range f.items {
		if !f.items[i].Read {
			f.items[i].Read = true
			n++
		}
	}
	return n
}

// RunDemo pushes each demo notification after its delay. It returns when all
// are pushed or ctx is done.
func (f *Feed) RunDemo(ctx context.Context, demo []DemoNotification) {
	start := time.Now()
	for _, d := range demo {
		wait := d.Delay - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			f.Push(d.Message)
		}
	}
}
