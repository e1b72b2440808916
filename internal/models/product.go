package models

import "time"

// Seller is a user's seller profile. Onboarding is handled by an external
// service; chats only need the profile to resolve the seller's user account.
type Seller struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	BusinessName string    `db:"business_name" json:"business_name"`
	City         string    `db:"city" json:"city"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Product is a marketplace listing. Full catalog CRUD is external; the chat
// service reads products for chat context, listings and favorites.
type Product struct {
	ID          int       `db:"id" json:"id"`
	SellerID    int       `db:"seller_id" json:"seller_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ProductListing is a product joined with its seller's business name.
type ProductListing struct {
	Product
	BusinessName string `db:"business_name" json:"business_name"`
}
