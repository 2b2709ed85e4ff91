package repos

import (
	"github.com/jmoiron/sqlx"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
)

// TransactionRepo is the append-only wallet ledger; rows are never
// updated or deleted and the balance is always derived.
type TransactionRepo struct{ db *sqlx.DB }

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo { return &TransactionRepo{db: db} }

func (r *TransactionRepo) Append(t domain.Transaction) error {
	_, err := r.db.Exec(`
		INSERT INTO transactions(id, user_id, type, amount, method, reference, note, created_at)
		VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, t.ID, t.UserID, t.Type, t.Amount, t.Method, t.Reference, t.Note)
	return err
}

func (r *TransactionRepo) Balance(userID string) (float64, error) {
	var bal float64
	err := r.db.Get(&bal, `
		SELECT COALESCE(SUM(CASE type WHEN 'credit' THEN amount ELSE -amount END), 0)
		FROM transactions WHERE user_id = ?
	`, userID)
	return bal, err
}

// AppendDebit inserts a debit only if the current balance covers it.
// The balance check and the insert share one transaction so two
// concurrent debits cannot both pass the check.
func (r *TransactionRepo) AppendDebit(t domain.Transaction) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var bal float64
	if err := tx.Get(&bal, `
		SELECT COALESCE(SUM(CASE type WHEN 'credit' THEN amount ELSE -amount END), 0)
		FROM transactions WHERE user_id = ?
	`, t.UserID); err != nil {
		return err
	}
	if bal < t.Amount {
		return apperrors.ErrInsufficientFunds
	}

	if _, err := tx.Exec(`
		INSERT INTO transactions(id, user_id, type, amount, method, reference, note, created_at)
		VALUES(?,?,'debit',?,?,?,?,CURRENT_TIMESTAMP)
	`, t.ID, t.UserID, t.Amount, t.Method, t.Reference, t.Note); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *TransactionRepo) ListByUser(userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Transaction
	err := r.db.Select(&out, `
		SELECT id, user_id, type, amount,
		       COALESCE(method,'') AS method,
		       COALESCE(reference,'') AS reference,
		       COALESCE(note,'') AS note,
		       created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, userID, limit)
	return out, err
}
