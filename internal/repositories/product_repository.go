package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSellerNotFound  = errors.New("seller not found")
)

// ProductRepository reads the product catalog. Writes are owned by the
// external catalog service.
type ProductRepository interface {
	GetProduct(ctx context.Context, productID int) (models.Product, error)
	GetSeller(ctx context.Context, sellerID int) (models.Seller, error)
	ListProducts(ctx context.Context, category, search string) ([]models.ProductListing, error)
}

// ProductRepo is a sqlx-backed repository.
type ProductRepo struct {
	db *sqlx.DB
}

// NewProductRepo constructs ProductRepo.
func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// GetProduct fetches a product by id.
func (r *ProductRepo) GetProduct(ctx context.Context, productID int) (models.Product, error) {
	var product models.Product
	err := r.db.GetContext(ctx, &product,
		`SELECT id, seller_id, name, description, price, category, is_active, created_at
         FROM products WHERE id=$1`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return product, err
}

// GetSeller fetches a seller profile by id.
func (r *ProductRepo) GetSeller(ctx context.Context, sellerID int) (models.Seller, error) {
	var seller models.Seller
	err := r.db.GetContext(ctx, &seller,
		`SELECT id, user_id, business_name, city, created_at FROM sellers WHERE id=$1`, sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Seller{}, ErrSellerNotFound
	}
	return seller, err
}

// ListProducts returns active listings, newest first, optionally filtered by
// category and a name/description search term.
func (r *ProductRepo) ListProducts(ctx context.Context, category, search string) ([]models.ProductListing, error) {
	query := `SELECT p.id, p.seller_id, p.name, p.description, p.price, p.category, p.is_active, p.created_at,
            s.business_name
        FROM products p
        JOIN sellers s ON s.id = p.seller_id
        WHERE p.is_active = TRUE
        AND ($1 = '' OR p.category = $1)
        AND ($2 = '' OR p.name ILIKE '%' || $2 || '%' OR p.description ILIKE '%' || $2 || '%')
        ORDER BY p.created_at DESC`
	var listings []models.ProductListing
	err := r.db.SelectContext(ctx, &listings, query, category, search)
	return listings, err
}
