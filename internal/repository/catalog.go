package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velora/storefront/internal/domain"
)

// ListProducts returns the full active product set ordered by id ascending.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT id, name, description, price, currency, image_main, image_alt, slug
	          FROM products ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var imageMain, imageAlt, slug sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency,
			&imageMain, &imageAlt, &slug); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		p.ImageMain = imageMain.String
		p.ImageAlt = imageAlt.String
		p.Slug = slug.String
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

// LatestBanner returns the most recent featured banner, or nil when none exists.
func (r *Repository) LatestBanner(ctx context.Context) (*domain.Banner, error) {
	query := `SELECT id, image_url, title, subtitle, created_at
	          FROM featured_banner ORDER BY created_at DESC LIMIT 1`

	var b domain.Banner
	var title, subtitle sql.NullString
	err := r.db.QueryRowContext(ctx, query).Scan(&b.ID, &b.ImageURL, &title, &subtitle, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest banner: %w", err)
	}

	b.Title = title.String
	b.Subtitle = subtitle.String
	return &b, nil
}
