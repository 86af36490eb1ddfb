package models

type Transaction struct {
	ID        string `json:"id" yaml:"id"`
	UserID    string `json:"user_id" yaml:"user_id"`
	Date      string `json:"date" yaml:"date"`
	Type      string `json:"type" yaml:"type"`     // Payout or Refund
	Amount    int64  `json:"amount" yaml:"amount"` // negative for refunds
	BookingID string `json:"booking_id" yaml:"booking_id"`
	Note      string `json:"note" yaml:"note"`
}

func (t Transaction) GetID() string { return t.ID }
