package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/shopspring/decimal"
)

// AdminDashboard aggregates platform-wide counts for the admin overview.
type AdminDashboard struct {
	TotalCustomers  int64 `json:"total_customers"`
	TotalVendors    int64 `json:"total_vendors"`
	TotalAdmins     int64 `json:"total_admins"`
	TotalCategories int64 `json:"total_categories"`
	TotalProducts   int64 `json:"total_products"`
	TotalOrders     int64 `json:"total_orders"`
}

func GetAdminDashboard(ctx context.Context, db *sql.DB) (*AdminDashboard, error) {
	dash := &AdminDashboard{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = $1),
			(SELECT COUNT(*) FROM users WHERE role = $2),
			(SELECT COUNT(*) FROM users WHERE role = $3),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders)`

	err := db.QueryRowContext(ctx, query,
		models.RoleCustomer, models.RoleVendor, models.RoleAdmin).Scan(
		&dash.TotalCustomers,
		&dash.TotalVendors,
		&dash.TotalAdmins,
		&dash.TotalCategories,
		&dash.TotalProducts,
		&dash.TotalOrders,
	)
	if err != nil {
		return nil, fmt.Errorf("admin dashboard: %w", err)
	}

	return dash, nil
}

// VendorDashboard covers the vendor's catalog plus this calendar month's
// orders and revenue, computed from the frozen order-line prices.
type VendorDashboard struct {
	Products       []models.Product `json:"products"`
	TotalProducts  int64            `json:"total_products"`
	MonthlyOrders  int64            `json:"monthly_orders"`
	MonthlyRevenue decimal.Decimal  `json:"monthly_revenue"`
}

func GetVendorDashboard(ctx context.Context, db *sql.DB, vendorID int64, now time.Time) (*VendorDashboard, error) {
	dash := &VendorDashboard{MonthlyRevenue: decimal.Zero}

	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE vendor_id = $1 ORDER BY created_at DESC`,
		vendorID)
	if err != nil {
		return nil, fmt.Errorf("vendor products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		dash.Products = append(dash.Products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	dash.TotalProducts = int64(len(dash.Products))

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT o.id), COALESCE(SUM(oi.unit_price * oi.quantity), 0)
		 FROM orders o
		 JOIN order_items oi ON oi.order_id = o.id
		 WHERE o.vendor_id = $1 AND o.created_at >= $2`,
		vendorID, startOfMonth).Scan(&dash.MonthlyOrders, &dash.MonthlyRevenue)
	if err != nil {
		return nil, fmt.Errorf("vendor monthly revenue: %w", err)
	}

	return dash, nil
}
