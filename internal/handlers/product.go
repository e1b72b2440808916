package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-service/internal/repositories"
)

// ProductHandler exposes the read-only catalog surface. Catalog writes are
// owned by the external product service.
type ProductHandler struct {
	productRepo repositories.ProductRepository
}

// NewProductHandler builds a ProductHandler.
func NewProductHandler(productRepo repositories.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

// ListProducts returns active listings, optionally filtered by category and
// search term.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	listings, err := h.productRepo.ListProducts(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": listings})
}

// GetProduct returns a single product.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.productRepo.GetProduct(c.Request.Context(), productID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "product not found"})
		return
	}
	if !product.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}
