package service

import (
	"strings"
	"time"

	"rentease/internal/models"
)

// Clock returns the current time; tests pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func (c Clock) today() string {
	return c.now().Format(models.DateLayout)
}

func trimmed(s string) string { return strings.TrimSpace(s) }
