package services

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/validate"
)

var ErrBadCreds = errors.New("invalid email or password")

const maxOTPAttempts = 5

type AuthService struct {
	Users  *repos.UserRepo
	OTPs   *repos.OTPRepo
	OTPTTL time.Duration
}

func NewAuthService(users *repos.UserRepo, otps *repos.OTPRepo, otpTTL time.Duration) *AuthService {
	return &AuthService{Users: users, OTPs: otps, OTPTTL: otpTTL}
}

type RegisterInput struct {
	Email    string
	Name     string
	Phone    string
	Password string
}

func (s *AuthService) Register(in RegisterInput) (*domain.User, error) {
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, apperrors.ErrInvalidInput
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, apperrors.ErrInvalidInput
	}
	if !validate.Password(in.Password) {
		return nil, apperrors.ErrInvalidInput
	}
	if in.Phone != "" {
		if _, ok := validate.Phone(in.Phone); !ok {
			return nil, apperrors.ErrInvalidInput
		}
	}
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrInvalidInput)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Phone: in.Phone,
		Hash:  string(h),
		Role:  "USER",
	}
	if err := s.Users.Insert(u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// RequestOTP mints a 6-digit code for the identifier/purpose pair and
// returns it for delivery. Only the bcrypt hash is stored.
func (s *AuthService) RequestOTP(identifier, purpose string) (string, error) {
	if identifier == "" {
		return "", apperrors.ErrInvalidInput
	}
	if _, ok := validate.OTPPurpose(purpose); !ok {
		return "", apperrors.ErrInvalidInput
	}

	code, err := randomCode()
	if err != nil {
		return "", err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	o := domain.OTP{
		ID:         uuid.NewString(),
		Identifier: identifier,
		CodeHash:   string(h),
		Purpose:    purpose,
		ExpiresAt:  time.Now().UTC().Add(s.OTPTTL).Format(time.RFC3339),
	}
	if err := s.OTPs.Insert(o); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyOTP consumes the newest unconsumed code. Expired codes and
// codes past the attempt cap never verify; failed attempts count.
func (s *AuthService) VerifyOTP(identifier, purpose, code string) error {
	o, err := s.OTPs.Latest(identifier, purpose)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrInvalidInput
	}
	if err != nil {
		return err
	}

	exp, err := time.Parse(time.RFC3339, o.ExpiresAt)
	if err != nil || time.Now().UTC().After(exp) {
		return fmt.Errorf("%w: code expired", apperrors.ErrInvalidInput)
	}
	if o.Attempts >= maxOTPAttempts {
		return fmt.Errorf("%w: too many attempts", apperrors.ErrInvalidInput)
	}

	if bcrypt.CompareHashAndPassword([]byte(o.CodeHash), []byte(code)) != nil {
		_ = s.OTPs.IncrementAttempts(o.ID)
		return fmt.Errorf("%w: wrong code", apperrors.ErrInvalidInput)
	}

	return s.OTPs.Consume(o.ID)
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
