package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"catalog-api/internal/config"
	"catalog-api/internal/dto"

	"github.com/shopspring/decimal"
)

// ErrExternalAPI marks any failure talking to the external catalog: the
// transport boundary maps it to 503.
var ErrExternalAPI = errors.New("error calling external api")

// CatalogClient fetches product records from the external catalog
type CatalogClient interface {
	FetchProducts(ctx context.Context) ([]dto.ProductDTO, error)
}

// productRecord is the upstream schema. It is assumed, not negotiated, and
// carries no identifier we could use: the upstream ids are in a foreign
// keyspace and are dropped.
type productRecord struct {
	Title       *string          `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Rating      *dto.RatingDTO   `json:"rating"`
}

type catalogClient struct {
	httpClient *http.Client
	apiURL     string
}

// NewCatalogClient creates a CatalogClient for the configured endpoint
func NewCatalogClient(cfg config.ExternalConfig) CatalogClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &catalogClient{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     cfg.APIURL,
	}
}

// FetchProducts issues one synchronous GET and decodes the JSON product list
func (c *catalogClient) FetchProducts(ctx context.Context) ([]dto.ProductDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrExternalAPI, resp.StatusCode)
	}

	var records []productRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}

	products := make([]dto.ProductDTO, 0, len(records))
	for _, record := range records {
		products = append(products, dto.ProductDTO{
			Title:       record.Title,
			Price:       record.Price,
			Description: record.Description,
			Category:    record.Category,
			Image:       record.Image,
			Rating:      record.Rating,
		})
	}

	return products, nil
}
