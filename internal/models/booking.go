package models

import "time"

type Booking struct {
	ID            string `json:"id" yaml:"id"`
	Guest         string `json:"guest" yaml:"guest"`
	PropertyID    string `json:"property_id" yaml:"property_id"`
	CheckIn       string `json:"check_in" yaml:"check_in"`
	CheckOut      string `json:"check_out" yaml:"check_out"`
	Nights        int    `json:"nights" yaml:"nights"`
	Amount        int64  `json:"amount" yaml:"amount"`
	Status        string `json:"status" yaml:"status"` // confirmed, checked_in, cancelled, checked_out
	PaymentStatus string `json:"payment_status" yaml:"payment_status"`
	CreatedAt     string `json:"created_at" yaml:"created_at"`
}

func (b Booking) GetID() string { return b.ID }

// Active reports whether the booking counts toward occupancy.
func (b Booking) Active() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCheckedIn
}

// CheckInTime parses CheckIn; ok is false for malformed dates.
func (b Booking) CheckInTime() (time.Time, bool) {
	t, err := time.Parse(DateLayout, b.CheckIn)
	return t, err == nil
}

type BookingPatch struct {
	Guest         *string `json:"guest,omitempty"`
	PropertyID    *string `json:"property_id,omitempty"`
	CheckIn       *string `json:"check_in,omitempty"`
	CheckOut      *string `json:"check_out,omitempty"`
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
}
