package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
)

const categoryColumns = `id, name, slug, parent_id, is_deleted, created_at, updated_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (*models.Category, error) {
	category := &models.Category{}
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.ParentID,
		&category.IsDeleted,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func CreateCategory(ctx context.Context, db *sql.DB, name, slug string, parentID *int64) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, slug, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + categoryColumns

	category, err := scanCategory(db.QueryRowContext(ctx, query, name, slug, parentID))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func ListCategories(ctx context.Context, db *sql.DB, deleted bool) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_deleted = $1
		ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, deleted)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name, slug *string, parentID *int64) (*models.Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE($2, name),
		    slug = COALESCE($3, slug),
		    parent_id = COALESCE($4, parent_id),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + categoryColumns

	category, err := scanCategory(db.QueryRowContext(ctx, query, id, name, slug, parentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

func setCategoryDeleted(ctx context.Context, db *sql.DB, id int64, deleted bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE categories SET is_deleted = $1, updated_at = NOW() WHERE id = $2`,
		deleted, id)
	if err != nil {
		return fmt.Errorf("set category deleted: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCategoryNotFound
	}

	return nil
}

func SoftDeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	return setCategoryDeleted(ctx, db, id, true)
}

func RestoreCategory(ctx context.Context, db *sql.DB, id int64) error {
	return setCategoryDeleted(ctx, db, id, false)
}
