package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/gateway"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/metrics"
)

func paymentStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/orders", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gateway.ProviderOrder{
			ID: "order_api1", Amount: in.Amount, Currency: in.Currency,
			Receipt: in.Receipt, Status: "created",
		})
	})
	mux.HandleFunc("GET /v1/payments/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gateway.Payment{
			ID: "pay_api1", OrderID: "order_api1", Amount: 54900,
			Currency: "INR", Status: "captured", Method: "upi",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreatePaymentOrderRejectsZeroAmount(t *testing.T) {
	env := newEnv(t, paymentStub(t).URL)

	resp := env.doJSON(t, "POST", "/api/payment/create-order", map[string]any{"amount": 0}, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
	body := envelope(t, resp)
	if body["success"] != false {
		t.Fatalf("want failure envelope, got %v", body)
	}
}

func TestCreatePaymentOrderMalformedBodyCountsAsBadRequest(t *testing.T) {
	env := newEnv(t, paymentStub(t).URL)

	badBefore := testutil.ToFloat64(metrics.GatewayOrders.WithLabelValues("bad_request"))
	amountBefore := testutil.ToFloat64(metrics.GatewayOrders.WithLabelValues("invalid_amount"))

	req := httptest.NewRequest("POST", "/api/payment/create-order", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.GatewayOrders.WithLabelValues("bad_request")); got != badBefore+1 {
		t.Fatalf("bad_request should count the parse failure: before=%v after=%v", badBefore, got)
	}
	if got := testutil.ToFloat64(metrics.GatewayOrders.WithLabelValues("invalid_amount")); got != amountBefore {
		t.Fatalf("invalid_amount must not count a parse failure: before=%v after=%v", amountBefore, got)
	}
}

func TestCreatePaymentOrderUnconfiguredGatewayIs503(t *testing.T) {
	env := newEnv(t, "") // no provider credentials

	resp := env.doJSON(t, "POST", "/api/payment/create-order", map[string]any{"amount": 549}, "")
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", resp.StatusCode)
	}
}

func TestVerifyMissingFieldsIs400(t *testing.T) {
	env := newEnv(t, paymentStub(t).URL)

	resp := env.doJSON(t, "POST", "/api/payment/verify", map[string]any{
		"razorpay_order_id": "order_api1",
	}, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
}

func TestVerifyTamperedSignatureIs400AndOrderStaysPending(t *testing.T) {
	env := newEnv(t, paymentStub(t).URL)
	if _, err := env.db.Exec(`
		INSERT INTO orders(id, user_id, total_amount, payment_status, order_status, rzp_order_id)
		VALUES('o-api', 'u-buyer', 549, 'pending', 'created', 'order_api1')
	`); err != nil {
		t.Fatal(err)
	}

	resp := env.doJSON(t, "POST", "/api/payment/verify", map[string]any{
		"razorpay_order_id":   "order_api1",
		"razorpay_payment_id": "pay_api1",
		"razorpay_signature":  "deadbeef",
	}, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}

	var status string
	if err := env.db.Get(&status, `SELECT payment_status FROM orders WHERE id='o-api'`); err != nil {
		t.Fatal(err)
	}
	if status != "pending" {
		t.Fatalf("order must stay pending after a bad signature, got %s", status)
	}
}

func TestVerifyHappyPathMarksOrderPaid(t *testing.T) {
	env := newEnv(t, paymentStub(t).URL)
	if _, err := env.db.Exec(`
		INSERT INTO orders(id, user_id, total_amount, payment_status, order_status, rzp_order_id)
		VALUES('o-api', 'u-buyer', 549, 'pending', 'created', 'order_api1')
	`); err != nil {
		t.Fatal(err)
	}

	sig := env.gw.Signature("order_api1", "pay_api1")
	resp := env.doJSON(t, "POST", "/api/payment/verify", map[string]any{
		"razorpay_order_id":   "order_api1",
		"razorpay_payment_id": "pay_api1",
		"razorpay_signature":  sig,
	}, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	body := envelope(t, resp)
	payment := body["payment"].(map[string]any)
	if payment["status"] != "captured" {
		t.Fatalf("want captured payment echoed back, got %v", payment)
	}

	var row struct {
		Pay   string `db:"payment_status"`
		Order string `db:"order_status"`
	}
	if err := env.db.Get(&row, `SELECT payment_status, order_status FROM orders WHERE id='o-api'`); err != nil {
		t.Fatal(err)
	}
	if row.Pay != "paid" || row.Order != "confirmed" {
		t.Fatalf("want paid/confirmed, got %s/%s", row.Pay, row.Order)
	}
}
