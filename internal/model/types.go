// Package model defines domain types used by the service.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog listing. Key is the external integer identifier;
// ObjectID is the storage identity and never changes after insert.
type Product struct {
	ObjectID       primitive.ObjectID `json:"_id,omitzero" bson:"_id,omitempty"`
	Key            int64              `json:"id" bson:"id"`
	Name           string             `json:"name" bson:"name"`
	Description    string             `json:"description" bson:"description"`
	Price          int64              `json:"price" bson:"price"`
	Category       string             `json:"category" bson:"category"`
	Images         []string           `json:"images" bson:"images"`
	Specifications map[string]any     `json:"specifications" bson:"specifications"`
	Variations     []Variation        `json:"variations" bson:"variations"`
	Featured       bool               `json:"featured" bson:"featured"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
	Tags           []string           `json:"tags" bson:"tags"`
}

// Variation is a purchasable size/color option of a product.
type Variation struct {
	Size  string `json:"size,omitempty" bson:"size,omitempty"`
	Color string `json:"color,omitempty" bson:"color,omitempty"`
	Price int64  `json:"price" bson:"price"`
	Stock int64  `json:"stock" bson:"stock"`
	SKU   string `json:"sku" bson:"sku"`
}

// ProductSummary is the reduced form used in statistics.
type ProductSummary struct {
	Key   int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name           *string
	Description    *string
	Price          *int64
	Category       *string
	Images         *[]string
	Specifications *map[string]any
	Variations     *[]Variation
	Featured       *bool
	Tags           *[]string
	UpdatedAt      time.Time
}

// Apply merges the patch into p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Images != nil {
		p.Images = *pp.Images
	}
	if pp.Specifications != nil {
		p.Specifications = *pp.Specifications
	}
	if pp.Variations != nil {
		p.Variations = *pp.Variations
	}
	if pp.Featured != nil {
		p.Featured = *pp.Featured
	}
	if pp.Tags != nil {
		p.Tags = *pp.Tags
	}
	if !pp.UpdatedAt.IsZero() {
		p.UpdatedAt = pp.UpdatedAt
	}
}

// Ad media types.
const (
	AdTypeVideo = "video"
	AdTypeImage = "image"
)

// Ad is a rotating media advertisement.
type Ad struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type      string             `json:"type" bson:"type"`
	URL       string             `json:"url" bson:"url"`
	Title     string             `json:"title" bson:"title"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Pagination describes one page of a product listing.
type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// ProductPage is a page of products with its pagination metadata.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// CategoryProducts lists every product of one category.
type CategoryProducts struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

// Stats aggregates catalog counters.
type Stats struct {
	TotalProducts          int64            `json:"totalProducts"`
	Categories             int              `json:"categories"`
	ProductsWithVariations int              `json:"productsWithVariations"`
	FeaturedProducts       int64            `json:"featuredProducts"`
	TotalStock             int64            `json:"totalStock"`
	LatestProducts         []ProductSummary `json:"latestProducts"`
	CategoriesList         []string         `json:"categoriesList"`
}

// Product lifecycle event types.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent records a product mutation for downstream consumers.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductKey int64     `json:"product_id"`
	Name       string    `json:"name,omitempty"`
	Sequence   uint64    `json:"sequence"`
	OccurredAt time.Time `json:"occurred_at"`
}
