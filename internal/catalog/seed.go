package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

// SeedOutcome describes one run of the sample data seeder.
type SeedOutcome struct {
	Existing int64
	Inserted int
	Keys     []int64
	Err      error
}

// SeedSampleProducts inserts SampleProducts when the catalog is empty.
func SeedSampleProducts(ctx context.Context, st Store, now time.Time) SeedOutcome {
	n, err := st.CountProducts(ctx, ProductQuery{})
	if err != nil {
		return SeedOutcome{Err: fmt.Errorf("count products: %w", err)}
	}
	if n > 0 {
		return SeedOutcome{Existing: n}
	}
	products := SampleProducts(now)
	if err := st.InsertProducts(ctx, products); err != nil {
		return SeedOutcome{Err: fmt.Errorf("insert sample products: %w", err)}
	}
	out := SeedOutcome{Inserted: len(products)}
	for _, p := range products {
		out.Keys = append(out.Keys, p.Key)
	}
	return out
}

const unsplash = "https://images.unsplash.com/"

func img(id string) string { return unsplash + id + "?w=800&h=800&fit=crop" }

// SampleProducts is the demo catalog: one product per category, keys 1..5.
func SampleProducts(now time.Time) []model.Product {
	now = now.UTC().Truncate(time.Millisecond)
	return []model.Product{
		{
			Key:         1,
			Name:        "Premium Wireless Headphones",
			Description: "Noise-cancelling wireless headphones with 30-hour battery life. Perfect for music lovers and professionals.",
			Price:       8499,
			Category:    "electronics",
			Images: []string{
				img("photo-1505740420928-5e560c06d30e"),
				img("photo-1487215078519-e21cc028cb29"),
			},
			Specifications: map[string]any{
				"brand":        "AudioTech Pro",
				"battery":      "30 hours",
				"connectivity": "Bluetooth 5.2",
				"color":        "Matte Black",
				"warranty":     "1 Year",
			},
			Variations: []model.Variation{
				{Color: "Black", Price: 8499, Stock: 15, SKU: "AUD-BLK-001"},
				{Color: "White", Price: 8999, Stock: 8, SKU: "AUD-WHT-001"},
				{Color: "Blue", Price: 8799, Stock: 5, SKU: "AUD-BLU-001"},
			},
			Featured:  true,
			CreatedAt: now,
			UpdatedAt: now,
			Tags:      []string{"electronics", "audio", "headphones", "wireless"},
		},
		{
			Key:         2,
			Name:        "Men's Premium Cotton Shirt",
			Description: "100% premium cotton shirt with perfect stitching. Comfortable for all-day wear in office or casual outings.",
			Price:       1999,
			Category:    "clothing",
			Images: []string{
				img("photo-1596755094514-f87e34085b2c"),
				img("photo-1618354691792-d1d42acfd860"),
			},
			Specifications: map[string]any{
				"fabric": "100% Premium Cotton",
				"fit":    "Regular Fit",
				"care":   "Machine Wash Cold",
				"origin": "Made in Pakistan",
				"collar": "Classic Button-Down",
			},
			Variations: []model.Variation{
				{Size: "S", Color: "Sky Blue", Price: 1999, Stock: 20, SKU: "SHIRT-S-BLU"},
				{Size: "M", Color: "Sky Blue", Price: 1999, Stock: 25, SKU: "SHIRT-M-BLU"},
				{Size: "L", Color: "Sky Blue", Price: 1999, Stock: 15, SKU: "SHIRT-L-BLU"},
			},
			Featured:  true,
			CreatedAt: now,
			UpdatedAt: now,
			Tags:      []string{"clothing", "shirt", "men", "cotton"},
		},
		{
			Key:         3,
			Name:        "French Lavender Luxury Perfume",
			Description: "Authentic French lavender perfume with 24-hour lasting fragrance. Made with natural essential oils in Grasse, France.",
			Price:       6499,
			Category:    "perfumes",
			Images:      []string{img("photo-1541643600914-78b084683601")},
			Specifications: map[string]any{
				"fragrance": "French Lavender",
				"duration":  "24 hours",
				"gender":    "Unisex",
				"origin":    "Grasse, France",
			},
			Variations: []model.Variation{
				{Size: "50ml", Price: 6499, Stock: 30, SKU: "PERF-50ML"},
				{Size: "100ml", Price: 11999, Stock: 15, SKU: "PERF-100ML"},
			},
			Featured:  true,
			CreatedAt: now,
			UpdatedAt: now,
			Tags:      []string{"perfume", "fragrance", "luxury", "lavender"},
		},
		{
			Key:         4,
			Name:        "Professional Running Shoes",
			Description: "Lightweight running shoes with advanced air cushioning technology. Perfect for jogging, gym, and sports activities.",
			Price:       4999,
			Category:    "footwear",
			Images:      []string{img("photo-1542291026-7eec264c27ff")},
			Specifications: map[string]any{
				"material": "Breathable Mesh & Rubber",
				"weight":   "280 grams",
				"type":     "Running Shoes",
				"gender":   "Men",
			},
			Variations: []model.Variation{
				{Size: "8", Color: "Black/Red", Price: 4999, Stock: 12, SKU: "SHOE-8-BR"},
				{Size: "9", Color: "Black/Red", Price: 4999, Stock: 18, SKU: "SHOE-9-BR"},
			},
			Featured:  false,
			CreatedAt: now,
			UpdatedAt: now,
			Tags:      []string{"footwear", "shoes", "sports", "running"},
		},
		{
			Key:         5,
			Name:        "Genuine Leather Women's Handbag",
			Description: "Elegant genuine leather handbag with multiple compartments. Spacious enough for laptop, perfect for office and travel.",
			Price:       12999,
			Category:    "bags",
			Images:      []string{img("photo-1584917865442-de89df76afd3")},
			Specifications: map[string]any{
				"material":     "100% Genuine Leather",
				"compartments": "3 Main + 6 Pockets",
				"closure":      "Zipper & Magnetic",
				"style":        "Professional Tote",
			},
			Variations: []model.Variation{
				{Color: "Classic Brown", Price: 12999, Stock: 10, SKU: "BAG-BROWN"},
				{Color: "Elegant Black", Price: 13499, Stock: 12, SKU: "BAG-BLACK"},
			},
			Featured:  true,
			CreatedAt: now,
			UpdatedAt: now,
			Tags:      []string{"bags", "handbag", "leather", "women"},
		},
	}
}
