package models

type Settings struct {
	DarkMode           bool   `json:"dark_mode"`
	EmailNotifications bool   `json:"email_notifications"`
	Currency           string `json:"currency"`
}

type SettingsPatch struct {
	DarkMode           *bool   `json:"dark_mode,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
	Currency           *string `json:"currency,omitempty"`
}

type KPIs struct {
	TotalProperties int    `json:"total_properties"`
	ActiveBookings  int    `json:"active_bookings"`
	OccupancyRate   int    `json:"occupancy_rate"`
	Revenue         int64  `json:"revenue"`
	RevenueDisplay  string `json:"revenue_display"`
}

type Alert struct {
	BookingID string `json:"booking_id"`
	Kind      string `json:"kind"` // upcoming or cancelled
	Title     string `json:"title"`
	Body      string `json:"body"`
}

const (
	AlertUpcoming  = "upcoming"
	AlertCancelled = "cancelled"
)
