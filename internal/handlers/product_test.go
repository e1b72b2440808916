package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"market-service/internal/mocks"
	"market-service/internal/models"
	"market-service/internal/repositories"
)

func setupProductRouter(handler *ProductHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/products", handler.ListProducts)
	r.GET("/products/:product_id", handler.GetProduct)
	return r
}

func TestListProductsSuccess(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	router := setupProductRouter(NewProductHandler(productRepo))

	productRepo.On("ListProducts", mock.Anything, "electronics", "lamp").Return([]models.ProductListing{
		{Product: models.Product{ID: 5, Name: "Lamp", Category: "electronics"}, BusinessName: "Bob's"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/products?category=electronics&q=lamp", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.ProductListing
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["products"], 1)
	require.Equal(t, "Bob's", resp["products"][0].BusinessName)

	productRepo.AssertExpectations(t)
}

func TestListProductsRepoError(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	router := setupProductRouter(NewProductHandler(productRepo))

	productRepo.On("ListProducts", mock.Anything, "", "").Return(([]models.ProductListing)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestGetProductSuccess(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	router := setupProductRouter(NewProductHandler(productRepo))

	productRepo.On("GetProduct", mock.Anything, 5).Return(models.Product{ID: 5, Name: "Lamp", IsActive: true}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/products/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var product models.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&product))
	require.Equal(t, "Lamp", product.Name)

	productRepo.AssertExpectations(t)
}

func TestGetProductNotFound(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	router := setupProductRouter(NewProductHandler(productRepo))

	productRepo.On("GetProduct", mock.Anything, 5).Return(models.Product{}, repositories.ErrProductNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/products/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductInactiveHidden(t *testing.T) {
	productRepo := new(mocks.ProductRepositoryMock)
	router := setupProductRouter(NewProductHandler(productRepo))

	productRepo.On("GetProduct", mock.Anything, 5).Return(models.Product{ID: 5, IsActive: false}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/products/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
