package models

// Rental is a settled booking.
type Rental struct {
	ID          string `json:"id" yaml:"id"`
	BookingID   string `json:"booking_id" yaml:"booking_id"`
	PropertyID  string `json:"property_id" yaml:"property_id"`
	PeriodStart string `json:"period_start" yaml:"period_start"`
	PeriodEnd   string `json:"period_end" yaml:"period_end"`
	Nights      int    `json:"nights" yaml:"nights"`
	Gross       int64  `json:"gross" yaml:"gross"`
	Fees        int64  `json:"fees" yaml:"fees"`
	Net         int64  `json:"net" yaml:"net"`
}

func (r Rental) GetID() string { return r.ID }
