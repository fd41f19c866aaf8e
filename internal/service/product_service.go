package service

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/client"
	"catalog-api/internal/domain"
	"catalog-api/internal/dto"
	"catalog-api/internal/mapper"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	ImportProducts(ctx context.Context) ([]dto.ProductDTO, error)
	CreateProduct(ctx context.Context, productDTO dto.ProductDTO) (*dto.ProductDTO, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*dto.ProductDTO, error)
	GetAllProducts(ctx context.Context, page, size int) (*dto.PageResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, productDTO dto.ProductDTO) (*dto.ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProductsByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, size int) (*dto.PageResponse, error)
	GetAllUniqueCategories(ctx context.Context) ([]string, error)
}

type productService struct {
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	catalogClient client.CatalogClient
	logger        *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	catalogClient client.CatalogClient,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		catalogClient: catalogClient,
		logger:        logger,
	}
}

// ImportProducts fetches the external catalog, reconciles category names
// against existing rows, and persists the whole batch in one transaction.
// An empty upstream list is not an error. Result order follows the upstream
// response.
func (s *productService) ImportProducts(ctx context.Context) ([]dto.ProductDTO, error) {
	records, err := s.catalogClient.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		s.logger.Warn("External API returned an empty product list")
		return []dto.ProductDTO{}, nil
	}

	// New category names seen in this batch share one unsaved row, so a
	// batch with two "clothing" records produces a single category.
	pending := map[string]*domain.Category{}
	newCategories := []*domain.Category{}
	products := make([]*domain.Product, 0, len(records))

	for i := range records {
		product := mapper.ToEntity(&records[i])
		product.ID = uuid.Nil

		if product.Category != nil {
			name := product.Category.Name

			existing, err := s.categoryRepo.FindByName(ctx, name)
			switch {
			case err == nil:
				product.Category = existing
			case errors.Is(err, repository.ErrCategoryNotFound):
				if unsaved, ok := pending[name]; ok {
					product.Category = unsaved
				} else {
					pending[name] = product.Category
					newCategories = append(newCategories, product.Category)
				}
			default:
				return nil, fmt.Errorf("failed to resolve category: %w", err)
			}
		}

		products = append(products, product)
	}

	if err := s.productRepo.CreateBatch(ctx, newCategories, products); err != nil {
		return nil, fmt.Errorf("failed to persist imported products: %w", err)
	}

	s.logger.Info("Imported products from external API",
		zap.Int("count", len(products)),
		zap.Int("new_categories", len(newCategories)),
	)

	result := make([]dto.ProductDTO, 0, len(products))
	for _, product := range products {
		result = append(result, *mapper.ToDTO(product))
	}

	return result, nil
}

// CreateProduct persists a new product, resolving its category by name or
// creating it when no row with that name exists yet
func (s *productService) CreateProduct(ctx context.Context, productDTO dto.ProductDTO) (*dto.ProductDTO, error) {
	product := mapper.ToEntity(&productDTO)
	product.ID = uuid.Nil

	if product.Category != nil {
		category, err := s.resolveOrCreateCategory(ctx, product.Category.Name)
		if err != nil {
			return nil, err
		}
		product.Category = category
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Created product",
		zap.String("product_id", product.ID.String()),
		zap.String("title", product.Title),
	)

	return mapper.ToDTO(product), nil
}

// GetProductByID retrieves one product
func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*dto.ProductDTO, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToDTO(product), nil
}

// GetAllProducts retrieves one zero-based page of products
func (s *productService) GetAllProducts(ctx context.Context, page, size int) (*dto.PageResponse, error) {
	products, total, err := s.productRepo.List(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return buildPageResponse(products, page, size, total), nil
}

// UpdateProduct merges non-null wire fields into the stored product. When the
// payload names a category different from the current one (or the product had
// none), it is resolved or created exactly as during import.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, productDTO dto.ProductDTO) (*dto.ProductDTO, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mapper.UpdateEntityFromDTO(&productDTO, product)

	if productDTO.Category != nil {
		newName := *productDTO.Category
		if product.Category == nil || product.Category.Name != newName {
			category, err := s.resolveOrCreateCategory(ctx, newName)
			if err != nil {
				return nil, err
			}
			product.Category = category
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Updated product", zap.String("product_id", id.String()))

	return mapper.ToDTO(product), nil
}

// DeleteProduct removes a product and its owned rating; the category stays
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Deleted product", zap.String("product_id", id.String()))
	return nil
}

// GetProductsByPriceRange retrieves one zero-based page of products priced
// within [minPrice, maxPrice], bounds inclusive
func (s *productService) GetProductsByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, size int) (*dto.PageResponse, error) {
	products, total, err := s.productRepo.FindByPriceRange(ctx, minPrice, maxPrice, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by price range: %w", err)
	}
	return buildPageResponse(products, page, size, total), nil
}

// GetAllUniqueCategories lists the distinct category names in use
func (s *productService) GetAllUniqueCategories(ctx context.Context) ([]string, error) {
	names, err := s.productRepo.ListCategoryNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return names, nil
}

// resolveOrCreateCategory looks a category up by name and inserts a new row
// when none exists. No transactional guard: two concurrent callers racing on
// the same new name can both insert it. Known limitation.
func (s *productService) resolveOrCreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	category = &domain.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func buildPageResponse(products []*domain.Product, page, size int, total int64) *dto.PageResponse {
	content := make([]dto.ProductDTO, 0, len(products))
	for _, product := range products {
		content = append(content, *mapper.ToDTO(product))
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &dto.PageResponse{
		Content:       content,
		PageNo:        page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          page >= totalPages-1,
	}
}
