package catalog

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

const latestProductsLimit = 5

// Stats aggregates catalog counters in one call.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	if err := s.ready(); err != nil {
		return model.Stats{}, err
	}
	total, err := s.store.CountProducts(ctx, ProductQuery{})
	if err != nil {
		return model.Stats{}, fmt.Errorf("count products: %w", err)
	}
	cats, err := s.categories(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	withVariations, err := s.store.Products(ctx, ProductQuery{WithVariations: true})
	if err != nil {
		return model.Stats{}, fmt.Errorf("products with variations: %w", err)
	}
	var stock int64
	for _, p := range withVariations {
		for _, v := range p.Variations {
			stock += v.Stock
		}
	}
	featured, err := s.store.CountProducts(ctx, ProductQuery{FeaturedOnly: true})
	if err != nil {
		return model.Stats{}, fmt.Errorf("count featured: %w", err)
	}
	latest, err := s.store.Products(ctx, ProductQuery{Sort: SortNewestFirst, Limit: latestProductsLimit})
	if err != nil {
		return model.Stats{}, fmt.Errorf("latest products: %w", err)
	}
	summaries := make([]model.ProductSummary, 0, len(latest))
	for _, p := range latest {
		summaries = append(summaries, model.ProductSummary{Key: p.Key, Name: p.Name, Price: p.Price})
	}
	return model.Stats{
		TotalProducts:          total,
		Categories:             len(cats),
		ProductsWithVariations: len(withVariations),
		FeaturedProducts:       featured,
		TotalStock:             stock,
		LatestProducts:         summaries,
		CategoriesList:         cats,
	}, nil
}
