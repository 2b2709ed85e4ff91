package services

import (
	"github.com/google/uuid"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
)

// WalletService is a thin view over the append-only transaction
// ledger; a user's balance is always derived, never stored.
type WalletService struct {
	Ledger *repos.TransactionRepo
}

func NewWalletService(ledger *repos.TransactionRepo) *WalletService {
	return &WalletService{Ledger: ledger}
}

func (s *WalletService) Balance(userID string) (float64, error) {
	return s.Ledger.Balance(userID)
}

func (s *WalletService) Transactions(userID string, limit int) ([]domain.Transaction, error) {
	return s.Ledger.ListByUser(userID, limit)
}

// Credit appends a credit entry (refunds, admin adjustments, top-ups).
func (s *WalletService) Credit(userID string, amount float64, method, reference, note string) error {
	if amount <= 0 {
		return apperrors.ErrInvalidInput
	}
	return s.Ledger.Append(domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      "credit",
		Amount:    amount,
		Method:    method,
		Reference: reference,
		Note:      note,
	})
}

// Debit appends a debit entry, rejecting any that would take the
// balance negative.
func (s *WalletService) Debit(userID string, amount float64, method, reference, note string) error {
	if amount <= 0 {
		return apperrors.ErrInvalidInput
	}
	return s.Ledger.AppendDebit(domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Reference: reference,
		Note:      note,
	})
}
