package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/metrics"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/services"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

type createPaymentOrderReq struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
	OrderID  string  `json:"orderId"`
}

// CreateOrder handles POST /api/payment/create-order.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	var req createPaymentOrderReq
	if err := c.BodyParser(&req); err != nil {
		metrics.GatewayOrders.WithLabelValues("bad_request").Inc()
		return fail(c, "payment.create", apperrors.ErrInvalidInput)
	}

	po, err := h.Payments.CreateOrder(services.CreatePaymentOrderInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		OrderID:  req.OrderID,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAmount):
			metrics.GatewayOrders.WithLabelValues("invalid_amount").Inc()
		case errors.Is(err, apperrors.ErrGatewayUnavailable):
			metrics.GatewayOrders.WithLabelValues("unavailable").Inc()
		}
		return fail(c, "payment.create", err)
	}

	metrics.GatewayOrders.WithLabelValues("ok").Inc()
	applog.Audit(c, "payment.create", map[string]any{"rzp_order_id": po.ID, "amount": po.Amount})
	return ok(c, fiber.StatusOK, fiber.Map{"order": po})
}

type verifyPaymentReq struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verify handles POST /api/payment/verify.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	var req verifyPaymentReq
	if err := c.BodyParser(&req); err != nil {
		metrics.PaymentVerifications.WithLabelValues("missing_fields").Inc()
		return fail(c, "payment.verify", apperrors.ErrMissingFields)
	}

	payment, err := h.Payments.Verify(services.VerifyInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrMissingFields):
			metrics.PaymentVerifications.WithLabelValues("missing_fields").Inc()
		case errors.Is(err, apperrors.ErrInvalidSignature):
			metrics.PaymentVerifications.WithLabelValues("invalid_signature").Inc()
		case errors.Is(err, apperrors.ErrPaymentNotCaptured):
			metrics.PaymentVerifications.WithLabelValues("not_captured").Inc()
		case errors.Is(err, apperrors.ErrGatewayUnavailable):
			metrics.PaymentVerifications.WithLabelValues("gateway_error").Inc()
		}
		return fail(c, "payment.verify", err)
	}

	metrics.PaymentVerifications.WithLabelValues("ok").Inc()
	applog.Audit(c, "payment.verify", map[string]any{
		"rzp_order_id":   req.OrderID,
		"rzp_payment_id": req.PaymentID,
		"status":         payment.Status,
	})
	return ok(c, fiber.StatusOK, fiber.Map{"payment": payment})
}
