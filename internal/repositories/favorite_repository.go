package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

// FavoriteRepository manages a user's favorite products.
type FavoriteRepository interface {
	ListFavorites(ctx context.Context, userID int) ([]models.ProductListing, error)
	AddFavorite(ctx context.Context, userID, productID int) error
	RemoveFavorite(ctx context.Context, userID, productID int) error
}

// FavoriteRepo is a sqlx-backed repository.
type FavoriteRepo struct {
	db *sqlx.DB
}

// NewFavoriteRepo constructs FavoriteRepo.
func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepo {
	return &FavoriteRepo{db: db}
}

// ListFavorites returns the user's favorited products, most recent first.
func (r *FavoriteRepo) ListFavorites(ctx context.Context, userID int) ([]models.ProductListing, error) {
	query := `SELECT p.id, p.seller_id, p.name, p.description, p.price, p.category, p.is_active, p.created_at,
            s.business_name
        FROM favorites f
        JOIN products p ON p.id = f.product_id
        JOIN sellers s ON s.id = p.seller_id
        WHERE f.user_id = $1
        ORDER BY f.created_at DESC`
	var listings []models.ProductListing
	err := r.db.SelectContext(ctx, &listings, query, userID)
	return listings, err
}

// AddFavorite marks a product as favorite. Already-favorited is a no-op.
func (r *FavoriteRepo) AddFavorite(ctx context.Context, userID, productID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, product_id) VALUES ($1, $2)
         ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	return err
}

// RemoveFavorite drops a product from favorites. Absent rows are a no-op.
func (r *FavoriteRepo) RemoveFavorite(ctx context.Context, userID, productID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}
