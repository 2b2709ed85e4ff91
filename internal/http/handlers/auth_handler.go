package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/services"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

type registerReq struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	// OTP is required when an OTP was requested for this email.
	OTP string `json:"otp"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.register", apperrors.ErrInvalidInput)
	}

	if req.OTP != "" {
		if err := h.Auth.VerifyOTP(req.Email, "signup", req.OTP); err != nil {
			return fail(c, "auth.register.otp", err)
		}
	}

	u, err := h.Auth.Register(services.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return fail(c, "auth.register", err)
	}

	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return ok(c, fiber.StatusCreated, fiber.Map{"user": u})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.login", apperrors.ErrInvalidInput)
	}
	if _, okE := validate.Email(req.Email); !okE {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return fail(c, "auth.login", apperrors.ErrUnauthorized)
	}

	u, err := h.Auth.Login(sid, req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return fail(c, "auth.login", apperrors.ErrUnauthorized)
	}

	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return ok(c, fiber.StatusOK, fiber.Map{"user": u})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return ok(c, fiber.StatusOK, fiber.Map{"message": "logged out"})
}

// Me is the session refresh point for the client: it answers with the
// authoritative user for the current cookie.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return fail(c, "auth.me", apperrors.ErrUnauthorized)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"user": u})
}

type otpRequestReq struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
}

func (h *AuthHandler) OTPRequest(c *fiber.Ctx) error {
	var req otpRequestReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.otp.request", apperrors.ErrInvalidInput)
	}

	code, err := h.Auth.RequestOTP(req.Identifier, req.Purpose)
	if err != nil {
		return fail(c, "auth.otp.request", err)
	}

	// Delivery (SMS/email) is out of process; the code is only logged
	// so operators can trace stuck signups.
	applog.Info(c, "auth.otp.sent", map[string]any{"identifier": req.Identifier, "code": code})
	return ok(c, fiber.StatusOK, fiber.Map{"message": "code sent"})
}

type otpVerifyReq struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
	Code       string `json:"code"`
}

func (h *AuthHandler) OTPVerify(c *fiber.Ctx) error {
	var req otpVerifyReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.otp.verify", apperrors.ErrInvalidInput)
	}
	if err := h.Auth.VerifyOTP(req.Identifier, req.Purpose, req.Code); err != nil {
		return fail(c, "auth.otp.verify", err)
	}
	applog.Audit(c, "auth.otp.verify", map[string]any{"identifier": req.Identifier})
	return ok(c, fiber.StatusOK, fiber.Map{"message": "code verified"})
}
