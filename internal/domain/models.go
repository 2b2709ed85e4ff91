package domain

import "encoding/json"

// Product is a catalog row. Images and tags are stored as JSON arrays
// in text columns, mirroring the document shape of the catalog.
type Product struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Slug         string  `db:"slug" json:"slug"`
	Description  string  `db:"description" json:"description"`
	Price        float64 `db:"price" json:"price"`
	Category     string  `db:"category" json:"category"`
	ImagesJSON   string  `db:"images_json" json:"-"`
	Stock        int     `db:"stock" json:"stock"`
	TagsJSON     string  `db:"tags_json" json:"-"`
	Flavour      string  `db:"flavour" json:"flavour"`
	Weight       string  `db:"weight" json:"weight"`
	IsFeatured   bool    `db:"is_featured" json:"isFeatured"`
	Rating       float64 `db:"rating" json:"rating"`
	ReviewsCount int     `db:"reviews_count" json:"reviewsCount"`
	CreatedBy    string  `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    string  `db:"created_at" json:"createdAt"`
	UpdatedAt    string  `db:"updated_at" json:"updatedAt,omitempty"`

	// Decoded views of the JSON columns, populated by the service.
	Images []string `db:"-" json:"images"`
	Tags   []string `db:"-" json:"tags"`
}

// DecodeLists fills Images and Tags from their JSON columns. Broken
// JSON degrades to empty lists rather than failing a read path.
func (p *Product) DecodeLists() {
	p.Images = decodeStrings(p.ImagesJSON)
	p.Tags = decodeStrings(p.TagsJSON)
}

func decodeStrings(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{}
	}
	return out
}

// EncodeStrings renders a string slice for storage in a JSON column.
func EncodeStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// Payment methods and statuses.
const (
	PayMethodRazorpay = "razorpay"
	PayMethodCOD      = "cod"
	PayMethodWallet   = "wallet"

	PayStatusPending  = "pending"
	PayStatusPaid     = "paid"
	PayStatusFailed   = "failed"
	PayStatusRefunded = "refunded"
)

// Fulfillment statuses. Progression is monotonic along the chain;
// cancelled/returned are terminal branches reachable from any
// non-terminal state.
const (
	OrderCreated        = "created"
	OrderConfirmed      = "confirmed"
	OrderPreparing      = "preparing"
	OrderOutForDelivery = "out-for-delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
	OrderReturned       = "returned"
)

type Order struct {
	ID            string  `db:"id" json:"id"`
	UserID        string  `db:"user_id" json:"userId"`
	TotalAmount   float64 `db:"total_amount" json:"totalAmount"`
	PaymentMethod string  `db:"payment_method" json:"paymentMethod"`
	PaymentStatus string  `db:"payment_status" json:"paymentStatus"`
	RzpOrderID    string  `db:"rzp_order_id" json:"razorpayOrderId,omitempty"`
	RzpPaymentID  string  `db:"rzp_payment_id" json:"razorpayPaymentId,omitempty"`
	RzpSignature  string  `db:"rzp_signature" json:"-"`
	OrderStatus   string  `db:"order_status" json:"orderStatus"`
	DeliveredAt   string  `db:"delivered_at" json:"deliveredAt,omitempty"`
	CancelledAt   string  `db:"cancelled_at" json:"cancelledAt,omitempty"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`

	ShipName       string `db:"ship_name" json:"-"`
	ShipPhone      string `db:"ship_phone" json:"-"`
	ShipLine1      string `db:"ship_line1" json:"-"`
	ShipLine2      string `db:"ship_line2" json:"-"`
	ShipCity       string `db:"ship_city" json:"-"`
	ShipState      string `db:"ship_state" json:"-"`
	ShipPostalCode string `db:"ship_postal_code" json:"-"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// ShippingAddress is the flat address structure carried on an order.
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"addressLine1"`
	Line2      string `json:"addressLine2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

func (o *Order) Address() ShippingAddress {
	return ShippingAddress{
		Name: o.ShipName, Phone: o.ShipPhone,
		Line1: o.ShipLine1, Line2: o.ShipLine2,
		City: o.ShipCity, State: o.ShipState, PostalCode: o.ShipPostalCode,
	}
}

// OrderItem snapshots name/price/image at placement time; it is not a
// live join against the catalog.
type OrderItem struct {
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Qty       int     `db:"qty" json:"qty"`
	Image     string  `db:"image" json:"image,omitempty"`
}

// OTP purposes.
const (
	OTPSignup         = "signup"
	OTPForgotPassword = "forgot-password"
	OTPTwoFactor      = "2fa"
)

// OTP is a one-time code bound to a phone/email identifier. The code
// is stored hashed; a row is consumed on successful verification and
// never reused.
type OTP struct {
	ID         string `db:"id"`
	Identifier string `db:"identifier"`
	CodeHash   string `db:"code_hash"`
	Purpose    string `db:"purpose"`
	Attempts   int    `db:"attempts"`
	ExpiresAt  string `db:"expires_at"`
	ConsumedAt string `db:"consumed_at"`
	CreatedAt  string `db:"created_at"`
}

// Transaction is an append-only wallet ledger entry.
type Transaction struct {
	ID        string  `db:"id" json:"id"`
	UserID    string  `db:"user_id" json:"userId"`
	Type      string  `db:"type" json:"type"` // credit | debit
	Amount    float64 `db:"amount" json:"amount"`
	Method    string  `db:"method" json:"method,omitempty"`
	Reference string  `db:"reference" json:"reference,omitempty"`
	Note      string  `db:"note" json:"note,omitempty"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
}
