package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/shopspring/decimal"
)

// CartLine is a checkout-time view of one cart row joined with its product.
type CartLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Price       decimal.Decimal
	Stock       int
	VendorID    int64
	IsArchived  bool
}

func AddCartItem(ctx context.Context, db *sql.DB, userID, productID int64, quantity int) (*models.Cart, error) {
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var stock int
		err := tx.QueryRowContext(ctx,
			`SELECT stock FROM products WHERE id = $1 AND is_archived = FALSE`,
			productID).Scan(&stock)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("get product stock: %w", err)
		}

		var cartID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO carts (user_id, created_at, updated_at)
			 VALUES ($1, NOW(), NOW())
			 ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
			 RETURNING id`,
			userID).Scan(&cartID)
		if err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}

		var existing int
		err = tx.QueryRowContext(ctx,
			`SELECT quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
			cartID, productID).Scan(&existing)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("get cart item: %w", err)
		}

		// Adding to an existing line accumulates, and the combined quantity
		// still has to fit the live stock.
		if stock < existing+quantity {
			return database.ErrInsufficientStock
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity, created_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (cart_id, product_id)
			 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
			cartID, productID, quantity)
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetCart(ctx, db, userID)
}

// GetCart returns the customer's cart priced with live product data; archived
// products are filtered out of the view.
func GetCart(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID, TotalPrice: decimal.Zero}

	err := db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	query := `
		SELECT ci.id, ci.product_id, p.name, p.price, p.stock, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1 AND p.is_archived = FALSE
		ORDER BY ci.created_at`

	rows, err := db.QueryContext(ctx, query, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ProductName,
			&item.Price,
			&item.Stock,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}

		item.ItemTotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		cart.TotalPrice = cart.TotalPrice.Add(item.ItemTotal)
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	cart.ItemsCount = len(cart.Items)

	return cart, nil
}

func UpdateCartQuantity(ctx context.Context, db *sql.DB, userID, productID int64, quantity int) (*models.Cart, error) {
	if quantity == 0 {
		return RemoveCartItem(ctx, db, userID, productID)
	}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var cartID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrCartNotFound
			}
			return fmt.Errorf("get cart: %w", err)
		}

		var stock int
		err = tx.QueryRowContext(ctx,
			`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("get product stock: %w", err)
		}

		if stock < quantity {
			return database.ErrInsufficientStock
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3`,
			quantity, cartID, productID)
		if err != nil {
			return fmt.Errorf("update cart item: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return database.ErrCartItemNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetCart(ctx, db, userID)
}

// RemoveCartItem drops a line; an emptied cart is deleted outright and nil is
// returned in its place.
func RemoveCartItem(ctx context.Context, db *sql.DB, userID, productID int64) (*models.Cart, error) {
	var emptied bool

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var cartID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrCartNotFound
			}
			return fmt.Errorf("get cart: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
			cartID, productID)
		if err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return database.ErrCartItemNotFound
		}

		var remaining int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&remaining)
		if err != nil {
			return fmt.Errorf("count cart items: %w", err)
		}

		if remaining == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
				return fmt.Errorf("delete empty cart: %w", err)
			}
			emptied = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if emptied {
		return nil, nil
	}

	return GetCart(ctx, db, userID)
}

// CartLinesForUpdate reads the customer's cart joined with product rows,
// locking the products for the remainder of the checkout transaction.
func CartLinesForUpdate(ctx context.Context, tx *sql.Tx, userID int64) ([]CartLine, error) {
	query := `
		SELECT ci.product_id, p.name, ci.quantity, p.price, p.stock, p.vendor_id, p.is_archived
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY ci.created_at
		FOR UPDATE OF p`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart lines: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var line CartLine
		err := rows.Scan(
			&line.ProductID,
			&line.ProductName,
			&line.Quantity,
			&line.Price,
			&line.Stock,
			&line.VendorID,
			&line.IsArchived,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

// DeleteCart removes the customer's cart and its lines inside the caller's
// transaction. Deleting an absent cart is a no-op.
func DeleteCart(ctx context.Context, tx *sql.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
