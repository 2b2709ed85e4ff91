package repos

import (
	"github.com/jmoiron/sqlx"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
)

type OTPRepo struct{ db *sqlx.DB }

func NewOTPRepo(db *sqlx.DB) *OTPRepo { return &OTPRepo{db: db} }

func (r *OTPRepo) Insert(o domain.OTP) error {
	_, err := r.db.Exec(`
		INSERT INTO otps(id, identifier, code_hash, purpose, attempts, expires_at, created_at)
		VALUES(?,?,?,?,0,?,CURRENT_TIMESTAMP)
	`, o.ID, o.Identifier, o.CodeHash, o.Purpose, o.ExpiresAt)
	return err
}

// Latest returns the newest unconsumed code for the identifier/purpose
// pair; sqlx.Get surfaces sql.ErrNoRows when none exists.
func (r *OTPRepo) Latest(identifier, purpose string) (domain.OTP, error) {
	var o domain.OTP
	err := r.db.Get(&o, `
		SELECT id, identifier, code_hash, purpose, attempts, expires_at,
		       COALESCE(consumed_at,'') AS consumed_at, created_at
		FROM otps
		WHERE identifier = ? AND purpose = ? AND consumed_at = ''
		ORDER BY datetime(created_at) DESC
		LIMIT 1
	`, identifier, purpose)
	return o, err
}

func (r *OTPRepo) IncrementAttempts(id string) error {
	_, err := r.db.Exec(`UPDATE otps SET attempts = attempts + 1 WHERE id = ?`, id)
	return err
}

// Consume retires a code after a successful verification; consumed
// rows never match Latest again.
func (r *OTPRepo) Consume(id string) error {
	_, err := r.db.Exec(`UPDATE otps SET consumed_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}
