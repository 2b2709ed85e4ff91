package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/config"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/gateway"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	PaymentHandler *PaymentHandler
	OrderHandler   *OrderHandler
	CartHandler    *CartHandler
	WalletHandler  *WalletHandler
	HealthHandler  *HealthHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, gw *gateway.Client) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)
	otpRepo := repos.NewOTPRepo(db)
	ledgerRepo := repos.NewTransactionRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	orderSvc := services.NewOrderService(orderRepo, prodRepo, ledgerRepo, cfg.TaxRate, cfg.DeliveryFee)
	paymentSvc := services.NewPaymentService(gw, orderRepo)
	authSvc := services.NewAuthService(userRepo, otpRepo, time.Duration(cfg.OTPTTLMinutes)*time.Minute)
	walletSvc := services.NewWalletService(ledgerRepo)

	return &Deps{
		Auth:           authSvc,
		AuthHandler:    &AuthHandler{Auth: authSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc, UploadsDir: cfg.UploadsDir},
		PaymentHandler: &PaymentHandler{Payments: paymentSvc},
		OrderHandler:   &OrderHandler{Orders: orderSvc},
		CartHandler:    &CartHandler{Orders: orderSvc},
		WalletHandler:  &WalletHandler{Wallet: walletSvc},
		HealthHandler:  &HealthHandler{DB: db, Gateway: gw},
	}
}
