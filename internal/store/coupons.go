package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/shopspring/decimal"
)

const couponColumns = `id, code, discount_type, value, usage_limit, valid_from, valid_to, created_at, updated_at`

const couponCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCouponCode produces an 8-character uppercase alphanumeric code.
func GenerateCouponCode() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	for i := range buf {
		buf[i] = couponCodeAlphabet[int(buf[i])%len(couponCodeAlphabet)]
	}
	return string(buf)
}

func scanCoupon(row interface{ Scan(...interface{}) error }) (*models.Coupon, error) {
	coupon := &models.Coupon{}
	err := row.Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountType,
		&coupon.Value,
		&coupon.UsageLimit,
		&coupon.ValidFrom,
		&coupon.ValidTo,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

func CreateCoupon(ctx context.Context, db *sql.DB, discountType string, value decimal.Decimal, usageLimit int, validFrom, validTo time.Time) (*models.Coupon, error) {
	query := `
		INSERT INTO coupons (code, discount_type, value, usage_limit, valid_from, valid_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + couponColumns

	coupon, err := scanCoupon(db.QueryRowContext(ctx, query,
		GenerateCouponCode(), discountType, value, usageLimit, validFrom, validTo))
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	return coupon, nil
}

func GetCouponByCode(ctx context.Context, db *sql.DB, code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	coupon, err := scanCoupon(db.QueryRowContext(ctx, query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return coupon, nil
}

func ListCoupons(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count coupons: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(coupons, total, page, pageSize), nil
}
