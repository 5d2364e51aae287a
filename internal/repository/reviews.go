package repository

import (
	"context"
	"fmt"

	"github.com/velora/storefront/internal/domain"
)

// ListReviews returns reviews newest first, optionally filtered by product.
func (r *Repository) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	query := `SELECT id, product_id, user_name, rating, COALESCE(comment, ''), created_at
	          FROM reviews`
	args := []interface{}{}
	if productID != "" {
		query += ` WHERE product_id = $1`
		args = append(args, productID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserName, &rev.Rating,
			&rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return reviews, nil
}

func (r *Repository) CreateReview(ctx context.Context, review *domain.Review) error {
	query := `INSERT INTO reviews (product_id, user_name, rating, comment, created_at)
	          VALUES ($1, $2, $3, $4, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		review.ProductID,
		review.UserName,
		review.Rating,
		review.Comment)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}
