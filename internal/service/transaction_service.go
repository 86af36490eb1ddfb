package service

import (
	"context"
	"sort"

	"rentease/internal/idgen"
	"rentease/internal/models"
	"rentease/internal/store"

	"github.com/rs/zerolog"
)

type TransactionInput struct {
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	BookingID string `json:"booking_id"`
	Note      string `json:"note"`
}

type TransactionService struct {
	store  *store.Store
	ids    idgen.Generator
	clock  Clock
	logger *zerolog.Logger
}

func NewTransactionService(st *store.Store, ids idgen.Generator, clock Clock, logger *zerolog.Logger) *TransactionService {
	return &TransactionService{
		store:  st,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// transactionsFor lists a user's transactions, newest date first.
func transactionsFor(st *store.Store, userID string) []models.Transaction {
	txs := st.Transactions.Filter(func(t models.Transaction) bool { return t.UserID == userID })
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date > txs[j].Date })
	return txs
}

func (s *TransactionService) ForUser(userID string) []models.Transaction {
	return transactionsFor(s.store, userID)
}

func (s *TransactionService) All() []models.Transaction {
	return s.store.Transactions.All()
}

// Create records a payout or refund. Refund amounts are stored negative.
func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (models.Transaction, error) {
	in.UserID = trimmed(in.UserID)
	if in.UserID == "" || in.Type == "" {
		return models.Transaction{}, ErrMissingFields
	}
	if in.Type != models.TxPayout && in.Type != models.TxRefund {
		return models.Transaction{}, ErrInvalidStatus
	}

	amount := in.Amount
	if in.Type == models.TxRefund && amount > 0 {
		amount = -amount
	}
	date := trimmed(in.Date)
	if date == "" {
		date = s.clock.today()
	}

	t := models.Transaction{
		ID:        s.ids.Next(),
		UserID:    in.UserID,
		Date:      date,
		Type:      in.Type,
		Amount:    amount,
		BookingID: trimmed(in.BookingID),
		Note:      trimmed(in.Note),
	}
	if err := s.store.Transactions.Insert(t); err != nil {
		return models.Transaction{}, err
	}
	s.logger.Info().Str("transaction_id", t.ID).Str("user_id", t.UserID).Int64("amount", t.Amount).Msg("transaction recorded")
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) bool {
	return s.store.Transactions.Delete(id)
}
