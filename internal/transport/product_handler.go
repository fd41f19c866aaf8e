package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"catalog-api/internal/client"
	"catalog-api/internal/dto"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPage     = 0
	defaultPageSize = 10
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/import", h.ImportProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/", h.GetAllProducts)
		r.Get("/filter", h.GetProductsByPriceRange)
		r.Get("/categories", h.GetAllUniqueCategories)
		r.Get("/{id}", h.GetProductByID)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ImportProducts fetches the external catalog and persists it
func (h *ProductHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	imported, err := h.productService.ImportProducts(r.Context())
	if err != nil {
		if errors.Is(err, client.ErrExternalAPI) {
			h.logger.Error("Import failed: external API unreachable", zap.Error(err))
			middleware.RespondWithError(w, r, http.StatusServiceUnavailable, err.Error())
			return
		}

		h.logger.Error("Import failed", zap.Error(err))
		middleware.RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, imported)
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductDTO

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))

		if fieldErrors := middleware.FormatValidationErrors(err); len(fieldErrors) > 0 {
			middleware.RespondWithValidationErrors(w, fieldErrors)
			return
		}

		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.productService.CreateProduct(r.Context(), req)
	if err != nil {
		h.logger.Error("Create product failed", zap.Error(err))
		middleware.RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

// GetProductByID handles fetching one product
func (h *ProductHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetProductByID(r.Context(), id)
	if err != nil {
		h.respondNotFoundOrInternal(w, r, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetAllProducts handles paginated listing
func (h *ProductHandler) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	page, size := parsePageParams(r)

	pageResponse, err := h.productService.GetAllProducts(r.Context(), page, size)
	if err != nil {
		h.logger.Error("List products failed", zap.Error(err))
		middleware.RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, pageResponse)
}

// UpdateProduct handles partial product update
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req dto.ProductDTO
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update product validation failed", zap.Error(err))

		if fieldErrors := middleware.FormatValidationErrors(err); len(fieldErrors) > 0 {
			middleware.RespondWithValidationErrors(w, fieldErrors)
			return
		}

		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.productService.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.respondNotFoundOrInternal(w, r, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteProduct handles product deletion
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		h.respondNotFoundOrInternal(w, r, err, id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProductsByPriceRange handles price-range listing
func (h *ProductHandler) GetProductsByPriceRange(w http.ResponseWriter, r *http.Request) {
	minPrice, err := decimal.NewFromString(r.URL.Query().Get("minPrice"))
	if err != nil {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid minPrice")
		return
	}

	maxPrice, err := decimal.NewFromString(r.URL.Query().Get("maxPrice"))
	if err != nil {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid maxPrice")
		return
	}

	page, size := parsePageParams(r)

	pageResponse, err := h.productService.GetProductsByPriceRange(r.Context(), minPrice, maxPrice, page, size)
	if err != nil {
		h.logger.Error("Price range listing failed", zap.Error(err))
		middleware.RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, pageResponse)
}

// GetAllUniqueCategories handles listing distinct category names
func (h *ProductHandler) GetAllUniqueCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.productService.GetAllUniqueCategories(r.Context())
	if err != nil {
		h.logger.Error("List categories failed", zap.Error(err))
		middleware.RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *ProductHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProductHandler) respondNotFoundOrInternal(w http.ResponseWriter, r *http.Request, err error, id uuid.UUID) {
	if errors.Is(err, repository.ErrProductNotFound) {
		middleware.RespondWithError(w, r, http.StatusNotFound,
			fmt.Sprintf("product not found with id: %s", id))
		return
	}

	h.logger.Error("Product operation failed", zap.Error(err), zap.String("product_id", id.String()))
	middleware.RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
}

// parsePageParams reads zero-based page and size query parameters, falling
// back to defaults on missing or unusable values
func parsePageParams(r *http.Request) (page, size int) {
	page = defaultPage
	size = defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}

	return page, size
}
