package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/shopspring/decimal"
)

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderNumber builds a collision-resistant order number from the
// current time plus a random suffix, e.g. ORD-1724932800123456789-X4K2P9.
func GenerateOrderNumber() string {
	buf := make([]byte, 6)
	rand.Read(buf)
	for i := range buf {
		buf[i] = orderNumberAlphabet[int(buf[i])%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixNano(), buf)
}

// InsertOrder persists the order header inside the caller's transaction and
// fills in the generated id and timestamps.
func InsertOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (order_number, user_id, vendor_id, status, payment_status, payment_method,
		                    total_amount, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := tx.QueryRowContext(ctx, query,
		order.OrderNumber,
		order.UserID,
		order.VendorID,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.TotalAmount,
		order.ShippingAddress,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func InsertOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []models.OrderItem) error {
	for i := range items {
		item := &items[i]
		item.OrderID = orderID

		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())
			 RETURNING id, created_at`,
			orderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `o.id, o.order_number, o.user_id, o.vendor_id, o.status, o.payment_status, o.payment_method,
	o.total_amount, o.shipping_address, o.payment_id, o.payer_id, o.transaction_id, o.paid_amount, o.paid_currency,
	o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	var paymentID, payerID, transactionID, paidCurrency sql.NullString
	var paidAmount sql.NullString

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.VendorID,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.TotalAmount,
		&order.ShippingAddress,
		&paymentID,
		&payerID,
		&transactionID,
		&paidAmount,
		&paidCurrency,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentID.Valid {
		details := &models.PaymentDetails{
			PaymentID:     paymentID.String,
			PayerID:       payerID.String,
			PaymentMethod: order.PaymentMethod,
			TransactionID: transactionID.String,
			Currency:      paidCurrency.String,
		}
		if paidAmount.Valid {
			if amount, err := decimal.NewFromString(paidAmount.String); err == nil {
				details.Amount = amount
			}
		}
		order.PaymentDetails = details
	}

	return order, nil
}

func orderItems(ctx context.Context, db *sql.DB, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, p.vendor_id, oi.quantity, oi.unit_price, oi.subtotal, oi.created_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.VendorID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	order, err := scanOrder(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := orderItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// OrderFilter scopes order reads by role. CustomerID restricts to the order
// owner; VendorID matches the order's single vendor or any line whose product
// the vendor owns.
type OrderFilter struct {
	CustomerID *int64
	VendorID   *int64
	Status     *models.OrderStatus
}

func (f OrderFilter) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		clauses = append(clauses, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if f.VendorID != nil {
		args = append(args, *f.VendorID)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			`(o.vendor_id = $%d OR EXISTS (
				SELECT 1 FROM order_items oi
				JOIN products p ON p.id = oi.product_id
				WHERE oi.order_id = o.id AND p.vendor_id = $%d))`, n, n))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		clauses = append(clauses, fmt.Sprintf("o.status = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func ListOrders(ctx context.Context, db *sql.DB, filter OrderFilter, page, pageSize int) (*OffsetPage, error) {
	where, args := filter.where()

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM orders o%s ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range orders {
		items, err := orderItems(ctx, db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

// GetOrderScoped applies the same role scoping as ListOrders to a single
// order; an order outside the caller's scope reads as not found.
func GetOrderScoped(ctx context.Context, db *sql.DB, id int64, filter OrderFilter) (*models.Order, error) {
	where, args := filter.where()
	if where == "" {
		where = " WHERE o.id = $1"
		args = []interface{}{id}
	} else {
		args = append(args, id)
		where += fmt.Sprintf(" AND o.id = $%d", len(args))
	}

	order, err := scanOrder(db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o`+where, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := orderItems(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func UpdateOrderStatus(ctx context.Context, tx *sql.Tx, id int64, status models.OrderStatus) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrOrderNotFound
	}

	return nil
}

// MarkOrderPaid records the provider receipt and moves the order to
// paid/confirmed in one statement.
func MarkOrderPaid(ctx context.Context, tx *sql.Tx, id int64, details *models.PaymentDetails) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE orders
		 SET payment_status = $1,
		     status = $2,
		     payment_id = $3,
		     payer_id = $4,
		     transaction_id = $5,
		     paid_amount = $6,
		     paid_currency = $7,
		     updated_at = NOW()
		 WHERE id = $8`,
		models.PaymentStatusPaid,
		models.OrderStatusConfirmed,
		details.PaymentID,
		details.PayerID,
		details.TransactionID,
		details.Amount,
		details.Currency,
		id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrOrderNotFound
	}

	return nil
}

// DeleteOrder removes a provisional order, the compensating action for a
// failed or abandoned deferred payment. Items cascade.
func DeleteOrder(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrOrderNotFound
	}

	return nil
}

// ListVendorOrders returns every order touching the vendor's products, newest
// first, without pagination.
func ListVendorOrders(ctx context.Context, db *sql.DB, vendorID int64) ([]models.Order, error) {
	filter := OrderFilter{VendorID: &vendorID}
	where, args := filter.where()

	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders o`+where+` ORDER BY o.created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list vendor orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range orders {
		items, err := orderItems(ctx, db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}
