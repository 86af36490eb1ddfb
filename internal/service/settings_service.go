package service

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"rentease/internal/domain"
	"rentease/internal/events"
	"rentease/internal/models"

	"github.com/rs/zerolog"
)

// FormatCurrency renders whole units with thousands separators, e.g. "$1,234" or "₱1,234".
func FormatCurrency(amount int64, currency string) string {
	symbol := "$"
	if currency == models.CurrencyPHP {
		symbol = "₱"
	}
	return symbol + groupThousands(amount)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

func validCurrency(c string) bool {
	return c == models.CurrencyUSD || c == models.CurrencyPHP
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// SettingsService holds dashboard preferences. Reads come from memory;
// changes are written back to the key-value store through the snapshot queue.
type SettingsService struct {
	mu        sync.RWMutex
	current   models.Settings
	kv        domain.KeyValueStore
	snapshots domain.SnapshotQueue
	eventBus  *events.EventBus
	logger    *zerolog.Logger
}

func NewSettingsService(kv domain.KeyValueStore, snapshots domain.SnapshotQueue, defaultCurrency string, eventBus *events.EventBus, logger *zerolog.Logger) *SettingsService {
	if !validCurrency(defaultCurrency) {
		defaultCurrency = models.CurrencyUSD
	}
	return &SettingsService{
		current: models.Settings{
			DarkMode:           false,
			EmailNotifications: true,
			Currency:           defaultCurrency,
		},
		kv:        kv,
		snapshots: snapshots,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Load reads persisted preferences. Dark mode is on only for "1";
// email notifications are off only for "0".
func (s *SettingsService) Load(ctx context.Context) error {
	dark, _, err := s.kv.Get(ctx, models.KeyDarkMode)
	if err != nil {
		return err
	}
	notif, _, err := s.kv.Get(ctx, models.KeyEmailNotif)
	if err != nil {
		return err
	}
	currency, ok, err := s.kv.Get(ctx, models.KeyCurrency)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.DarkMode = dark == "1"
	s.current.EmailNotifications = notif != "0"
	if ok && validCurrency(currency) {
		s.current.Currency = currency
	}
	return nil
}

func (s *SettingsService) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsService) Currency() string {
	return s.Get().Currency
}

// Format renders amount in the configured currency.
func (s *SettingsService) Format(amount int64) string {
	return FormatCurrency(amount, s.Currency())
}

func (s *SettingsService) Update(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	if patch.Currency != nil {
		c := strings.ToUpper(trimmed(*patch.Currency))
		if !validCurrency(c) {
			return models.Settings{}, ErrUnsupportedCurrency
		}
		patch.Currency = &c
	}

	s.mu.Lock()
	if patch.DarkMode != nil {
		s.current.DarkMode = *patch.DarkMode
	}
	if patch.EmailNotifications != nil {
		s.current.EmailNotifications = *patch.EmailNotifications
	}
	if patch.Currency != nil {
		s.current.Currency = *patch.Currency
	}
	updated := s.current
	s.mu.Unlock()

	s.persist(ctx, updated)
	if err := s.eventBus.PublishJSON(events.EventSettingsChanged, updated); err != nil {
		s.logger.Warn().Err(err).Msg("settings event handler failed")
	}
	return updated, nil
}

func (s *SettingsService) persist(ctx context.Context, st models.Settings) {
	values := map[string]string{
		models.KeyDarkMode:   flag(st.DarkMode),
		models.KeyEmailNotif: flag(st.EmailNotifications),
		models.KeyCurrency:   st.Currency,
	}
	for key, val := range values {
		if s.snapshots != nil {
			if err := s.snapshots.Enqueue(ctx, key, val); err == nil {
				continue
			}
		}
		if err := s.kv.Set(ctx, key, val, 0); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("failed to persist setting")
		}
	}
}
