package mapper

import (
	"catalog-api/internal/domain"
	"catalog-api/internal/dto"
)

// ToEntity converts a wire product to its entity shape. A category name maps
// to an unsaved Category carrying only the name; resolving it against
// existing rows is the caller's responsibility. A nil input maps to nil.
func ToEntity(d *dto.ProductDTO) *domain.Product {
	if d == nil {
		return nil
	}

	product := &domain.Product{}

	if d.ID != nil {
		product.ID = *d.ID
	}
	if d.Title != nil {
		product.Title = *d.Title
	}
	if d.Price != nil {
		product.Price = *d.Price
	}
	if d.Description != nil {
		product.Description = *d.Description
	}
	if d.Image != nil {
		product.Image = *d.Image
	}

	if d.Category != nil {
		product.Category = &domain.Category{Name: *d.Category}
	}

	if d.Rating != nil {
		rating := &domain.Rating{}
		if d.Rating.Rate != nil {
			rating.Rate = *d.Rating.Rate
		}
		if d.Rating.Count != nil {
			rating.Count = *d.Rating.Count
		}
		product.Rating = rating
	}

	return product
}

// ToDTO converts an entity to its wire shape: flattened category name and
// nested rating. A nil input maps to nil.
func ToDTO(p *domain.Product) *dto.ProductDTO {
	if p == nil {
		return nil
	}

	id := p.ID
	title := p.Title
	price := p.Price

	d := &dto.ProductDTO{
		ID:    &id,
		Title: &title,
		Price: &price,
	}

	if p.Description != "" {
		description := p.Description
		d.Description = &description
	}
	if p.Image != "" {
		image := p.Image
		d.Image = &image
	}

	if p.Category != nil {
		name := p.Category.Name
		d.Category = &name
	}

	if p.Rating != nil {
		rate := p.Rating.Rate
		count := p.Rating.Count
		d.Rating = &dto.RatingDTO{Rate: &rate, Count: &count}
	}

	return d
}

// UpdateEntityFromDTO merges non-nil wire fields into an existing entity.
// Rating fields merge one by one, creating the rating lazily when the entity
// has none. The category is never touched here: reassignment needs a
// find-or-create lookup, which belongs to the service.
func UpdateEntityFromDTO(d *dto.ProductDTO, p *domain.Product) {
	if d == nil || p == nil {
		return
	}

	if d.Title != nil {
		p.Title = *d.Title
	}
	if d.Price != nil {
		p.Price = *d.Price
	}
	if d.Description != nil {
		p.Description = *d.Description
	}
	if d.Image != nil {
		p.Image = *d.Image
	}

	if d.Rating != nil {
		if p.Rating == nil {
			p.Rating = &domain.Rating{}
		}
		if d.Rating.Rate != nil {
			p.Rating.Rate = *d.Rating.Rate
		}
		if d.Rating.Count != nil {
			p.Rating.Count = *d.Rating.Count
		}
	}
}
