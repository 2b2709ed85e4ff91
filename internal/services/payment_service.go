package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/gateway"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
)

// PaymentService drives the settlement flow: create a provider order,
// verify the callback signature, confirm capture with the provider,
// and only then transition the bound order to paid.
type PaymentService struct {
	Gateway *gateway.Client
	Orders  *repos.OrderRepo
}

func NewPaymentService(gw *gateway.Client, orders *repos.OrderRepo) *PaymentService {
	return &PaymentService{Gateway: gw, Orders: orders}
}

type CreatePaymentOrderInput struct {
	Amount   float64
	Currency string
	Receipt  string
	// OrderID optionally binds the provider order to an internal order
	// so a later verify can transition it.
	OrderID string
}

func (s *PaymentService) CreateOrder(in CreatePaymentOrderInput) (*gateway.ProviderOrder, error) {
	if in.Amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if in.Currency == "" {
		in.Currency = "INR"
	}
	if in.Receipt == "" {
		in.Receipt = "rcpt_" + uuid.NewString()
	}

	po, err := s.Gateway.CreateOrder(in.Amount, in.Currency, in.Receipt)
	if err != nil {
		return nil, err
	}

	if in.OrderID != "" {
		// Binding failure does not invalidate the provider order; the
		// caller still holds a payable handle.
		if _, err := s.Orders.BindProviderOrder(in.OrderID, po.ID); err != nil {
			return nil, err
		}
	}
	return po, nil
}

type VerifyInput struct {
	OrderID   string // provider order id
	PaymentID string
	Signature string
}

// Verify is two-phase: the signature check proves the payload wasn't
// forged, the provider fetch proves funds were actually captured. Both
// must succeed before the order leaves pending; a fetch failure leaves
// it untouched.
func (s *PaymentService) Verify(in VerifyInput) (*gateway.Payment, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	in.Signature = strings.TrimSpace(in.Signature)
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, apperrors.ErrMissingFields
	}

	if !s.Gateway.Configured() {
		return nil, apperrors.ErrGatewayUnavailable
	}

	if !s.Gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		return nil, apperrors.ErrInvalidSignature
	}

	payment, err := s.Gateway.FetchPayment(in.PaymentID)
	if err != nil {
		return nil, err
	}
	// A valid signature only proves the payload wasn't forged; the
	// order transitions on captured funds, nothing less.
	if payment.Status != "captured" {
		return nil, fmt.Errorf("%w: provider reports %q", apperrors.ErrPaymentNotCaptured, payment.Status)
	}

	// Single conditional update: payment fields and status commit
	// together or not at all. No bound order is not an error — the
	// payment itself verified.
	if _, err := s.Orders.MarkPaidByProviderOrder(in.OrderID, in.PaymentID, in.Signature); err != nil {
		return nil, err
	}
	return payment, nil
}
