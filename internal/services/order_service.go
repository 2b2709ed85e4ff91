package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/cart"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
)

type OrderService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
	Ledger *repos.TransactionRepo

	TaxRate     float64
	DeliveryFee float64
}

func NewOrderService(orders *repos.OrderRepo, prods *repos.ProductRepo, ledger *repos.TransactionRepo, taxRate, deliveryFee float64) *OrderService {
	return &OrderService{Orders: orders, Prods: prods, Ledger: ledger, TaxRate: taxRate, DeliveryFee: deliveryFee}
}

type PlaceLine struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type PlaceOrderInput struct {
	UserID        string
	Lines         []PlaceLine
	Shipping      domain.ShippingAddress
	PaymentMethod string // razorpay | cod | wallet
}

// Place snapshots the catalog rows, decrements stock conditionally per
// line, and persists the order pending payment. Already-applied
// decrements are restored when a later line cannot be satisfied, so a
// failed placement never leaks reserved stock.
func (s *OrderService) Place(in PlaceOrderInput) (domain.Order, error) {
	if in.UserID == "" || len(in.Lines) == 0 {
		return domain.Order{}, apperrors.ErrInvalidInput
	}

	// Duplicate lines for the same product collapse into one, the same
	// merge rule the cart applies. order_items keys on (order, product).
	lines := make([]PlaceLine, 0, len(in.Lines))
	for _, ln := range in.Lines {
		if ln.Qty < 1 {
			ln.Qty = 1
		}
		merged := false
		for i := range lines {
			if lines[i].ProductID == ln.ProductID {
				lines[i].Qty += ln.Qty
				merged = true
				break
			}
		}
		if !merged {
			lines = append(lines, ln)
		}
	}

	// Snapshot products and build the priced line set.
	ch := cart.New()
	items := make([]domain.OrderItem, 0, len(lines))
	for _, ln := range lines {
		p, err := s.Prods.Get(ln.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, apperrors.ErrNotFound
		}
		if err != nil {
			return domain.Order{}, err
		}
		p.DecodeLists()
		img := ""
		if len(p.Images) > 0 {
			img = NormalizeImagePath(p.Images[0])
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID, Name: p.Name, Price: p.Price, Qty: ln.Qty, Image: img,
		})
		ch.Add(cart.Item{ProductID: p.ID, Name: p.Name, Price: p.Price, Image: img}, ln.Qty)
	}

	// Conditional decrement per line; roll back prior lines on failure.
	decremented := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if err := s.Prods.DecrementStock(it.ProductID, it.Qty); err != nil {
			for _, done := range decremented {
				_ = s.Prods.IncrementStock(done.ProductID, done.Qty)
			}
			return domain.Order{}, fmt.Errorf("%w: %s", apperrors.ErrInsufficientStock, it.Name)
		}
		decremented = append(decremented, it)
	}

	totals := ch.Totals(s.TaxRate, s.DeliveryFee)

	o := domain.Order{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		TotalAmount:    totals.Total,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  domain.PayStatusPending,
		OrderStatus:    domain.OrderCreated,
		ShipName:       in.Shipping.Name,
		ShipPhone:      in.Shipping.Phone,
		ShipLine1:      in.Shipping.Line1,
		ShipLine2:      in.Shipping.Line2,
		ShipCity:       in.Shipping.City,
		ShipState:      in.Shipping.State,
		ShipPostalCode: in.Shipping.PostalCode,
		Items:          items,
	}

	// Wallet orders settle immediately from the ledger.
	if in.PaymentMethod == domain.PayMethodWallet {
		err := s.Ledger.AppendDebit(domain.Transaction{
			ID:        uuid.NewString(),
			UserID:    in.UserID,
			Amount:    totals.Total,
			Method:    domain.PayMethodWallet,
			Reference: o.ID,
			Note:      "order payment",
		})
		if err != nil {
			for _, done := range decremented {
				_ = s.Prods.IncrementStock(done.ProductID, done.Qty)
			}
			return domain.Order{}, err
		}
		o.PaymentStatus = domain.PayStatusPaid
		o.OrderStatus = domain.OrderConfirmed
	}

	if err := s.Orders.Create(o); err != nil {
		for _, done := range decremented {
			_ = s.Prods.IncrementStock(done.ProductID, done.Qty)
		}
		return domain.Order{}, err
	}
	return s.get(o.ID)
}

func (s *OrderService) get(id string) (domain.Order, error) {
	o, err := s.Orders.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperrors.ErrNotFound
	}
	return o, err
}

// Get enforces ownership: a user sees only their own orders, an admin
// sees all. Denied access reads as not-found.
func (s *OrderService) Get(id string, u *domain.User) (domain.Order, error) {
	o, err := s.get(id)
	if err != nil {
		return domain.Order{}, err
	}
	if u == nil || (o.UserID != u.ID && u.Role != "ADMIN") {
		return domain.Order{}, apperrors.ErrNotFound
	}
	return o, nil
}

func (s *OrderService) ListByUser(userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID)
}

func (s *OrderService) ListLatest(limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(limit)
}

// nextStatus is the monotonic fulfillment chain.
var nextStatus = map[string]string{
	domain.OrderCreated:        domain.OrderConfirmed,
	domain.OrderConfirmed:      domain.OrderPreparing,
	domain.OrderPreparing:      domain.OrderOutForDelivery,
	domain.OrderOutForDelivery: domain.OrderDelivered,
}

func isTerminal(status string) bool {
	switch status {
	case domain.OrderDelivered, domain.OrderCancelled, domain.OrderReturned:
		return true
	}
	return false
}

// transitionAllowed: one step forward along the chain, or a jump to a
// terminal cancelled/returned branch from any non-terminal state.
func transitionAllowed(from, to string) bool {
	if isTerminal(from) {
		return false
	}
	if to == domain.OrderCancelled || to == domain.OrderReturned {
		return true
	}
	return nextStatus[from] == to
}

// UpdateStatus advances an order's fulfillment state. Cancelling
// restocks each line; cancelling a paid order also refunds the wallet
// and flips the payment status to refunded.
func (s *OrderService) UpdateStatus(id, to string) (domain.Order, error) {
	o, err := s.get(id)
	if err != nil {
		return domain.Order{}, err
	}
	if !transitionAllowed(o.OrderStatus, to) {
		return domain.Order{}, apperrors.ErrInvalidTransition
	}

	ok, err := s.Orders.UpdateStatus(id, o.OrderStatus, to)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		// Lost a race with a concurrent transition.
		return domain.Order{}, apperrors.ErrInvalidTransition
	}

	if to == domain.OrderCancelled || to == domain.OrderReturned {
		for _, it := range o.Items {
			_ = s.Prods.IncrementStock(it.ProductID, it.Qty)
		}
		if o.PaymentStatus == domain.PayStatusPaid {
			if err := s.Ledger.Append(domain.Transaction{
				ID:        uuid.NewString(),
				UserID:    o.UserID,
				Type:      "credit",
				Amount:    o.TotalAmount,
				Method:    o.PaymentMethod,
				Reference: o.ID,
				Note:      "order refund",
			}); err != nil {
				return domain.Order{}, err
			}
			if err := s.Orders.SetPaymentStatus(id, domain.PayStatusRefunded); err != nil {
				return domain.Order{}, err
			}
		}
	}

	return s.get(id)
}

// Cancel is the customer-facing path: only the owner may cancel, and
// only before the order goes out for delivery.
func (s *OrderService) Cancel(id string, u *domain.User) (domain.Order, error) {
	o, err := s.Get(id, u)
	if err != nil {
		return domain.Order{}, err
	}
	switch o.OrderStatus {
	case domain.OrderCreated, domain.OrderConfirmed, domain.OrderPreparing:
		return s.UpdateStatus(id, domain.OrderCancelled)
	}
	return domain.Order{}, apperrors.ErrInvalidTransition
}

// Quote prices a client-held cart without persisting anything.
func (s *OrderService) Quote(items []cart.Item) cart.Totals {
	return cart.FromItems(items).Totals(s.TaxRate, s.DeliveryFee)
}
