package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const productColumns = `id, vendor_id, category_id, name, description, price, stock, images, ratings_average, is_archived, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.VendorID,
		&product.CategoryID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		pq.Array(&product.Images),
		&product.RatingsAverage,
		&product.IsArchived,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

type CreateProductRequest struct {
	VendorID    int64
	CategoryID  int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Images      []string
}

func CreateProduct(ctx context.Context, db *sql.DB, req CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (vendor_id, category_id, name, description, price, stock, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + productColumns

	product, err := scanProduct(db.QueryRowContext(ctx, query,
		req.VendorID, req.CategoryID, req.Name, req.Description, req.Price, req.Stock, pq.Array(req.Images)))
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func ListProducts(ctx context.Context, db *sql.DB, search string, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE is_archived = FALSE AND name ILIKE '%' || $1 || '%'`,
		search).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_archived = FALSE
		  AND name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(ctx, query, search, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

// ListArchivedProducts returns the hidden products of one vendor, or of all
// vendors when vendorID is zero.
func ListArchivedProducts(ctx context.Context, db *sql.DB, vendorID int64) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_archived = TRUE AND ($1 = 0 OR vendor_id = $1)
		ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list archived products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

type UpdateProductRequest struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *int64
	Stock       *int
	Images      []string
}

// UpdateProduct applies a partial update. A zero vendorID skips the ownership
// check; vendors must pass their own ID.
func UpdateProduct(ctx context.Context, db *sql.DB, id, vendorID int64, req UpdateProductRequest) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    price = COALESCE($5, price),
		    category_id = COALESCE($6, category_id),
		    stock = COALESCE($7, stock),
		    images = COALESCE($8, images),
		    updated_at = NOW()
		WHERE id = $1 AND ($2 = 0 OR vendor_id = $2)
		RETURNING ` + productColumns

	var images interface{}
	if req.Images != nil {
		images = pq.Array(req.Images)
	}
	product, err := scanProduct(db.QueryRowContext(ctx, query,
		id, vendorID, req.Name, req.Description, req.Price, req.CategoryID, req.Stock, images))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// ArchiveProduct hides the product from the catalog instead of deleting it;
// existing order lines keep a valid reference.
func ArchiveProduct(ctx context.Context, db *sql.DB, id, vendorID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE products SET is_archived = TRUE, updated_at = NOW() WHERE id = $1 AND ($2 = 0 OR vendor_id = $2)`,
		id, vendorID)
	if err != nil {
		return fmt.Errorf("archive product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

// DecrementStock is the single stock-reservation primitive: an atomic
// conditional update that can never drive stock negative. Zero rows affected
// means the remaining stock was below the requested quantity.
func DecrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock = stock - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrInsufficientStock
	}

	return nil
}

// IncrementStock restocks a line, used when an order transitions to canceled.
func IncrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock = stock + $1,
		     updated_at = NOW()
		 WHERE id = $2`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ProductIDsByVendor(ctx context.Context, db *sql.DB, vendorID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM products WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list vendor product ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}
