package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access. A product
// owns its rating row: every write path keeps the two in lockstep inside one
// transaction. Categories are shared and never deleted here.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	CreateBatch(ctx context.Context, newCategories []*domain.Category, products []*domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Product, int64, error)
	FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, pageSize int) ([]*domain.Product, int64, error)
	ListCategoryNames(ctx context.Context) ([]string, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productSelect = `
	SELECT p.id, p.title, p.price, p.description,
	       p.category_id, c.name, c.created_at,
	       p.image, p.rating_id, r.rate, r.count,
	       p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON p.category_id = c.id
	LEFT JOIN ratings r ON p.rating_id = r.id
`

// Create inserts a product and its owned rating in one transaction. The
// referenced category must already be persisted.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertProduct(ctx, tx, product); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CreateBatch persists an imported batch atomically: new categories first,
// then every product with its rating. Order of products is preserved.
func (r *productRepository) CreateBatch(ctx context.Context, newCategories []*domain.Category, products []*domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, category := range newCategories {
		if category.ID == uuid.Nil {
			category.ID = uuid.New()
		}
		if category.CreatedAt.IsZero() {
			category.CreatedAt = time.Now()
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)`,
			category.ID, category.Name, category.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
	}

	for _, product := range products {
		if err := insertProduct(ctx, tx, product); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// insertProduct inserts the rating (if any) and the product row itself,
// assigning identifiers and timestamps where missing.
func insertProduct(ctx context.Context, tx *sql.Tx, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}

	var ratingID interface{}
	if product.Rating != nil {
		if product.Rating.ID == uuid.Nil {
			product.Rating.ID = uuid.New()
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO ratings (id, rate, count) VALUES ($1, $2, $3)`,
			product.Rating.ID, product.Rating.Rate, product.Rating.Count,
		)
		if err != nil {
			return fmt.Errorf("failed to create rating: %w", err)
		}
		ratingID = product.Rating.ID
	}

	var categoryID interface{}
	if product.Category != nil {
		categoryID = product.Category.ID
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO products (id, title, price, description, category_id, image, rating_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ID,
		product.Title,
		product.Price,
		product.Description,
		categoryID,
		product.Image,
		ratingID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update rewrites the product row and upserts its owned rating in one
// transaction. A nil rating on the entity leaves any stored rating alone.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ratingID interface{}
	if product.Rating != nil {
		if product.Rating.ID == uuid.Nil {
			product.Rating.ID = uuid.New()
			_, err = tx.ExecContext(ctx,
				`INSERT INTO ratings (id, rate, count) VALUES ($1, $2, $3)`,
				product.Rating.ID, product.Rating.Rate, product.Rating.Count,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE ratings SET rate = $2, count = $3 WHERE id = $1`,
				product.Rating.ID, product.Rating.Rate, product.Rating.Count,
			)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert rating: %w", err)
		}
		ratingID = product.Rating.ID
	}

	var categoryID interface{}
	if product.Category != nil {
		categoryID = product.Category.ID
	}

	product.UpdatedAt = time.Now()

	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET title = $2, price = $3, description = $4, category_id = $5,
		     image = $6, rating_id = COALESCE($7, rating_id), updated_at = $8
		 WHERE id = $1`,
		product.ID,
		product.Title,
		product.Price,
		product.Description,
		categoryID,
		product.Image,
		ratingID,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a product and cascades to its owned rating. The referenced
// category is left untouched.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ratingID uuid.NullUUID
	err = tx.QueryRowContext(ctx,
		`DELETE FROM products WHERE id = $1 RETURNING rating_id`, id,
	).Scan(&ratingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if ratingID.Valid {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE id = $1`, ratingID.UUID); err != nil {
			return fmt.Errorf("failed to delete rating: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a product with its category and rating
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves one page of products in insertion order. The page index is
// zero-based.
func (r *productRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Product, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := page * pageSize

	rows, err := r.db.QueryContext(ctx,
		productSelect+` ORDER BY p.created_at ASC, p.id LIMIT $1 OFFSET $2`,
		pageSize, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// FindByPriceRange retrieves one page of products whose price lies within
// [minPrice, maxPrice], bounds inclusive. The page index is zero-based.
func (r *productRepository) FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, pageSize int) ([]*domain.Product, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE price >= $1 AND price <= $2`,
		minPrice, maxPrice,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products by price range: %w", err)
	}

	offset := page * pageSize

	rows, err := r.db.QueryContext(ctx,
		productSelect+` WHERE p.price >= $1 AND p.price <= $2
		 ORDER BY p.created_at ASC, p.id LIMIT $3 OFFSET $4`,
		minPrice, maxPrice, pageSize, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find products by price range: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListCategoryNames returns the distinct names of categories referenced by at
// least one product
func (r *productRepository) ListCategoryNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT c.name
		FROM products p
		JOIN categories c ON p.category_id = c.id
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list category names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category name: %w", err)
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category names: %w", err)
	}

	return names, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanProduct
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(s scanner) (*domain.Product, error) {
	product := &domain.Product{}

	var (
		description     sql.NullString
		categoryID      uuid.NullUUID
		categoryName    sql.NullString
		categoryCreated sql.NullTime
		image           sql.NullString
		ratingID        uuid.NullUUID
		ratingRate      sql.NullFloat64
		ratingCount     sql.NullInt64
	)

	err := s.Scan(
		&product.ID,
		&product.Title,
		&product.Price,
		&description,
		&categoryID,
		&categoryName,
		&categoryCreated,
		&image,
		&ratingID,
		&ratingRate,
		&ratingCount,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Description = description.String
	product.Image = image.String

	if categoryID.Valid {
		product.Category = &domain.Category{
			ID:        categoryID.UUID,
			Name:      categoryName.String,
			CreatedAt: categoryCreated.Time,
		}
	}

	if ratingID.Valid {
		product.Rating = &domain.Rating{
			ID:    ratingID.UUID,
			Rate:  ratingRate.Float64,
			Count: int(ratingCount.Int64),
		}
	}

	return product, nil
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
