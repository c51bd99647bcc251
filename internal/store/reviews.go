package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
)

func CreateReview(ctx context.Context, db *sql.DB, userID, productID int64, rating int, comment string) (*models.Review, error) {
	review := &models.Review{UserID: userID, ProductID: productID, Rating: rating, Comment: comment}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return database.ErrProductNotFound
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO reviews (user_id, product_id, rating, comment, created_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 RETURNING id, created_at`,
			userID, productID, rating, comment).Scan(&review.ID, &review.CreatedAt)
		if err != nil {
			return fmt.Errorf("create review: %w", err)
		}

		// Keep the product's denormalized rating in step with its reviews.
		_, err = tx.ExecContext(ctx,
			`UPDATE products
			 SET ratings_average = (SELECT AVG(rating) FROM reviews WHERE product_id = $1),
			     updated_at = NOW()
			 WHERE id = $1`,
			productID)
		if err != nil {
			return fmt.Errorf("update product rating: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func ListReviews(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT r.id, r.user_id, u.name, r.product_id, p.name, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN products p ON p.id = r.product_id
		ORDER BY r.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.UserName,
			&review.ProductID,
			&review.ProductName,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(reviews, total, page, pageSize), nil
}

// DeleteReview removes a review and recomputes the product's denormalized
// rating in the same transaction.
func DeleteReview(ctx context.Context, db *sql.DB, id int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var productID int64
		err := tx.QueryRowContext(ctx,
			`DELETE FROM reviews WHERE id = $1 RETURNING product_id`, id).Scan(&productID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrReviewNotFound
			}
			return fmt.Errorf("delete review: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products
			 SET ratings_average = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = $1), 0),
			     updated_at = NOW()
			 WHERE id = $1`,
			productID)
		if err != nil {
			return fmt.Errorf("update product rating: %w", err)
		}

		return nil
	})
}
