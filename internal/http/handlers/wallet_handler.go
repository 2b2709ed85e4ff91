package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/services"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/validate"
)

type WalletHandler struct {
	Wallet *services.WalletService
}

// Balance handles GET /api/wallet for the logged-in user.
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	u := currentUser(c)
	bal, err := h.Wallet.Balance(u.ID)
	if err != nil {
		return fail(c, "wallet.balance", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"balance": bal})
}

// Transactions handles GET /api/wallet/transactions.
func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	u := currentUser(c)
	txs, err := h.Wallet.Transactions(u.ID, validate.Limit(c.Query("limit")))
	if err != nil {
		return fail(c, "wallet.transactions", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"transactions": txs})
}

type adjustReq struct {
	UserID string  `json:"userId"`
	Type   string  `json:"type"` // credit | debit
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// Adjust handles POST /api/admin/wallet/adjust: a manual ledger entry.
func (h *WalletHandler) Adjust(c *fiber.Ctx) error {
	var req adjustReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "admin.wallet.adjust", apperrors.ErrInvalidInput)
	}

	var err error
	switch req.Type {
	case "credit":
		err = h.Wallet.Credit(req.UserID, req.Amount, "admin-adjust", "", req.Note)
	case "debit":
		err = h.Wallet.Debit(req.UserID, req.Amount, "admin-adjust", "", req.Note)
	default:
		err = apperrors.ErrInvalidInput
	}
	if err != nil {
		return fail(c, "admin.wallet.adjust", err)
	}

	applog.Audit(c, "admin.wallet.adjust", map[string]any{
		"user_id": req.UserID, "type": req.Type, "amount": req.Amount,
	})
	return ok(c, fiber.StatusOK, fiber.Map{"message": "adjustment recorded"})
}
