package repos

import (
	"github.com/jmoiron/sqlx"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
  id, user_id, total_amount, payment_method, payment_status,
  COALESCE(rzp_order_id,'') AS rzp_order_id,
  COALESCE(rzp_payment_id,'') AS rzp_payment_id,
  COALESCE(rzp_signature,'') AS rzp_signature,
  order_status,
  COALESCE(delivered_at,'') AS delivered_at,
  COALESCE(cancelled_at,'') AS cancelled_at,
  created_at,
  ship_name, ship_phone, ship_line1, ship_line2, ship_city, ship_state,
  ship_postal_code`

// Create inserts the order header and all line items in one
// transaction.
func (r *OrderRepo) Create(o domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, user_id, total_amount, payment_method, payment_status, order_status,
	     ship_name, ship_phone, ship_line1, ship_line2, ship_city, ship_state,
	     ship_postal_code, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, o.ID, o.UserID, o.TotalAmount, o.PaymentMethod, o.PaymentStatus, o.OrderStatus,
		o.ShipName, o.ShipPhone, o.ShipLine1, o.ShipLine2, o.ShipCity, o.ShipState,
		o.ShipPostalCode); err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, name, price, qty, image)
		  VALUES(?,?,?,?,?,?)
		`, o.ID, it.ProductID, it.Name, it.Price, it.Qty, it.Image); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return domain.Order{}, err
	}
	if err := r.db.Select(&o.Items, `
		SELECT order_id, product_id, name, price, qty, COALESCE(image,'') AS image
		FROM order_items WHERE order_id = ? ORDER BY name
	`, id); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT `+orderCols+` FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT `+orderCols+` FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}

// BindProviderOrder records the provider-side order id so a later
// verify call can locate the order.
func (r *OrderRepo) BindProviderOrder(orderID, rzpOrderID string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE orders SET rzp_order_id = ?
		WHERE id = ? AND payment_status = 'pending'
	`, rzpOrderID, orderID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkPaidByProviderOrder commits the pending→paid transition together
// with the payment correlation fields in a single statement, so no
// partial state is observable. A created order advances to confirmed
// in the same write. Returns whether an order was transitioned.
func (r *OrderRepo) MarkPaidByProviderOrder(rzpOrderID, rzpPaymentID, signature string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE orders SET
		  payment_status = 'paid',
		  rzp_payment_id = ?,
		  rzp_signature  = ?,
		  order_status = CASE WHEN order_status = 'created' THEN 'confirmed' ELSE order_status END
		WHERE rzp_order_id = ? AND payment_status = 'pending'
	`, rzpPaymentID, signature, rzpOrderID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpdateStatus moves order_status only when the current value matches
// from, keeping the progression race-free. delivered/cancelled set
// their timestamp in the same write.
func (r *OrderRepo) UpdateStatus(id, from, to string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE orders SET
		  order_status = ?,
		  delivered_at = CASE WHEN ? = 'delivered' THEN CURRENT_TIMESTAMP ELSE delivered_at END,
		  cancelled_at = CASE WHEN ? IN ('cancelled','returned') THEN CURRENT_TIMESTAMP ELSE cancelled_at END
		WHERE id = ? AND order_status = ?
	`, to, to, to, id, from)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetPaymentStatus is used by refund handling after a cancel.
func (r *OrderRepo) SetPaymentStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET payment_status = ? WHERE id = ?`, status, id)
	return err
}
