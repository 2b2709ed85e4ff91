package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DBDSN      string
	UploadsDir string
	LogFile    string

	// Razorpay-compatible provider credentials. Empty key/secret means
	// the gateway adapter is unconfigured and payment endpoints answer
	// with a service-unavailable error.
	RazorpayKeyID   string
	RazorpaySecret  string
	RazorpayBaseURL string

	// Checkout pricing knobs.
	TaxRate     float64 // fraction of subtotal, e.g. 0.05
	DeliveryFee float64

	OTPTTLMinutes int
}

func Load() Config {
	// .env is optional; real deployments use the process environment.
	_ = godotenv.Load()

	cfg := Config{
		Port:            getenv("PORT", "5000"),
		DBDSN:           getenv("DB_DSN", "bakery.db"),
		UploadsDir:      getenv("UPLOADS_DIR", "./uploads"),
		LogFile:         getenv("LOG_FILE", ""),
		RazorpayKeyID:   os.Getenv("RAZORPAY_KEY_ID"),
		RazorpaySecret:  os.Getenv("RAZORPAY_SECRET"),
		RazorpayBaseURL: getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		TaxRate:         getfloat("TAX_RATE", 0.05),
		DeliveryFee:     getfloat("DELIVERY_FEE", 40),
		OTPTTLMinutes:   getint("OTP_TTL_MINUTES", 10),
	}

	log.Printf("[config] PORT=%s DB_DSN=%s UPLOADS_DIR=%s gateway_configured=%t",
		cfg.Port, cfg.DBDSN, cfg.UploadsDir, cfg.RazorpayKeyID != "" && cfg.RazorpaySecret != "")
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
