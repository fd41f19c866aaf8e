package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductDTO is the wire representation of a product: flat category name,
// nested rating. Optional fields are pointers so a partial update can tell
// "absent" from "zero".
type ProductDTO struct {
	ID          *uuid.UUID       `json:"id,omitempty"`
	Title       *string          `json:"title" validate:"required,notblank"`
	Price       *decimal.Decimal `json:"price" validate:"required,gt=0"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    *string          `json:"category,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Rating      *RatingDTO       `json:"rating,omitempty"`
}

// RatingDTO is the nested rating wire shape
type RatingDTO struct {
	Rate  *float64 `json:"rate"`
	Count *int     `json:"count"`
}

// PageResponse wraps one page of products plus pagination metadata
type PageResponse struct {
	Content       []ProductDTO `json:"content"`
	PageNo        int          `json:"pageNo"`
	PageSize      int          `json:"pageSize"`
	TotalElements int64        `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
	Last          bool         `json:"last"`
}
