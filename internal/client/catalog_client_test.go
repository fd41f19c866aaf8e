package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-api/internal/config"
)

func newTestClient(url string) CatalogClient {
	return NewCatalogClient(config.ExternalConfig{APIURL: url, TimeoutSeconds: 5})
}

func TestFetchProductsDecodesList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "title": "Shirt", "price": 19.99, "category": "clothing", "rating": {"rate": 4.2, "count": 10}},
			{"id": 2, "title": "Mug", "price": 4.5}
		]`))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL).FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(products))
	}
	if *products[0].Title != "Shirt" {
		t.Errorf("Expected title Shirt, got %s", *products[0].Title)
	}
	if products[0].Rating == nil || *products[0].Rating.Rate != 4.2 {
		t.Errorf("Expected rating 4.2, got %+v", products[0].Rating)
	}
	// Upstream ids live in a foreign keyspace and are dropped
	if products[0].ID != nil {
		t.Errorf("Expected upstream id to be dropped, got %v", products[0].ID)
	}
}

func TestFetchProductsWithoutIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"title": "Shirt", "price": 19.99, "category": "clothing"}]`))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL).FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(products))
	}
	if products[0].ID != nil {
		t.Errorf("Expected no id, got %v", products[0].ID)
	}
	if *products[0].Category != "clothing" {
		t.Errorf("Expected category clothing, got %s", *products[0].Category)
	}
}

func TestFetchProductsEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL).FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("Expected empty list, got %d products", len(products))
	}
}

func TestFetchProductsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchProducts(context.Background())
	if !errors.Is(err, ErrExternalAPI) {
		t.Fatalf("Expected ErrExternalAPI, got %v", err)
	}
}

func TestFetchProductsUnreachableHost(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").FetchProducts(context.Background())
	if !errors.Is(err, ErrExternalAPI) {
		t.Fatalf("Expected ErrExternalAPI, got %v", err)
	}
}

func TestFetchProductsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchProducts(context.Background())
	if !errors.Is(err, ErrExternalAPI) {
		t.Fatalf("Expected ErrExternalAPI, got %v", err)
	}
}
