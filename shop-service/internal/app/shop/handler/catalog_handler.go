package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogServiceInterface interface {
	QueryProducts(ctx context.Context, query *entity.ProductQuery) (*entity.ProductPage, error)
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
	ListCategories(ctx context.Context, languageCode string) ([]entity.CategoryView, error)
	FeaturedGroups(ctx context.Context, languageCode string, perGroup int) ([]entity.FeaturedGroup, error)
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	UpdateProduct(ctx context.Context, productID string, req *entity.UpdateProductRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

// CatalogHandler обрабатывает HTTP запросы каталога
type CatalogHandler struct {
	catalogService   CatalogServiceInterface
	validator        *validator.Validate
	defaultLanguage  string
	featuredPerGroup int
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService CatalogServiceInterface, defaultLanguage string, featuredPerGroup int) *CatalogHandler {
	return &CatalogHandler{
		catalogService:   catalogService,
		validator:        validator.New(),
		defaultLanguage:  defaultLanguage,
		featuredPerGroup: featuredPerGroup,
	}
}

// parseProductQuery читает параметры выборки каталога
// Возвращает false, если ответ об ошибке уже записан
func parseProductQuery(c *gin.Context) (*entity.ProductQuery, bool) {
	query := &entity.ProductQuery{
		Keyword: c.Query("keyword"),
		Sort:    entity.ProductSort(c.Query("sort")),
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return nil, false
		}
		query.CategoryID = &id
	}

	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	// Аннотации in_cart/in_wishlist для анонимного зрителя, предъявившего свои ID
	if raw := c.Query("cart_id"); raw != "" {
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			query.ViewerCartID = &id
		}
	}
	if raw := c.Query("wishlist_id"); raw != "" {
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			query.ViewerWishlistID = &id
		}
	}

	return query, true
}

// GetProducts обрабатывает GET /products
// Параметры: keyword, category_id, sort, page, page_size, cart_id, wishlist_id
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	query, ok := parseProductQuery(c)
	if !ok {
		return
	}

	page, err := h.catalogService.QueryProducts(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query products"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// ListProducts обрабатывает GET /admin/products
// Та же выборка, но скрытые товары всегда включены
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	query, ok := parseProductQuery(c)
	if !ok {
		return
	}
	query.IncludeHidden = true

	page, err := h.catalogService.QueryProducts(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query products"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProduct обрабатывает GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetFeatured обрабатывает GET /products/featured
func (h *CatalogHandler) GetFeatured(c *gin.Context) {
	languageCode := c.DefaultQuery("lang", h.defaultLanguage)

	perGroup := h.featuredPerGroup
	if raw := c.Query("per_group"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			perGroup = parsed
		}
	}

	groups, err := h.catalogService.FeaturedGroups(c.Request.Context(), languageCode, perGroup)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedLanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get featured products"})
		return
	}

	c.JSON(http.StatusOK, groups)
}

// GetCategories обрабатывает GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	languageCode := c.DefaultQuery("lang", h.defaultLanguage)

	categories, err := h.catalogService.ListCategories(c.Request.Context(), languageCode)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedLanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      len(categories),
	})
}

// CreateCategory обрабатывает POST /admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedLanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory обрабатывает PUT /admin/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		case errors.Is(err, service.ErrUnsupportedLanguage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory обрабатывает DELETE /admin/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		case errors.Is(err, service.ErrCategoryInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "Category still referenced by products"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Category deleted successfully",
	})
}

// CreateProduct обрабатывает POST /admin/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		}
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct обрабатывает PUT /admin/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /admin/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product deleted successfully",
	})
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
