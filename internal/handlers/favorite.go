package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-service/internal/repositories"
)

// FavoriteHandler manages the user's favorite products.
type FavoriteHandler struct {
	favoriteRepo repositories.FavoriteRepository
	productRepo  repositories.ProductRepository
}

// NewFavoriteHandler builds a FavoriteHandler.
func NewFavoriteHandler(favoriteRepo repositories.FavoriteRepository, productRepo repositories.ProductRepository) *FavoriteHandler {
	return &FavoriteHandler{favoriteRepo: favoriteRepo, productRepo: productRepo}
}

// ListFavorites returns the caller's favorited products.
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID := c.GetInt("userID")

	favorites, err := h.favoriteRepo.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": favorites})
}

// AddFavorite favorites a product for the caller.
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	productID, ok := h.resolveProduct(c)
	if !ok {
		return
	}

	if err := h.favoriteRepo.AddFavorite(c.Request.Context(), c.GetInt("userID"), productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

// RemoveFavorite drops a product from the caller's favorites.
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	productID, ok := h.resolveProduct(c)
	if !ok {
		return
	}

	if err := h.favoriteRepo.RemoveFavorite(c.Request.Context(), c.GetInt("userID"), productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *FavoriteHandler) resolveProduct(c *gin.Context) (int, bool) {
	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}

	if _, err := h.productRepo.GetProduct(c.Request.Context(), productID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "product not found"})
		return 0, false
	}
	return productID, true
}
