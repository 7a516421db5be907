package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

// ListAds returns every ad, newest first.
func (s *Service) ListAds(ctx context.Context) ([]model.Ad, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ads, err := s.store.Ads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	if ads == nil {
		ads = []model.Ad{}
	}
	return ads, nil
}

// CreateAd validates and stores a new ad. The title defaults to
// "Video Ad" or "Image Ad".
func (s *Service) CreateAd(ctx context.Context, in AdInput) (model.Ad, error) {
	if err := s.ready(); err != nil {
		return model.Ad{}, err
	}
	if in.Type == "" || in.URL == "" {
		return model.Ad{}, invalid("type and url are required")
	}
	if in.Type != model.AdTypeVideo && in.Type != model.AdTypeImage {
		return model.Ad{}, invalid("type must be video or image")
	}
	ad := model.Ad{Type: in.Type, URL: in.URL, Title: in.Title, CreatedAt: s.timestamp()}
	if ad.Title == "" {
		ad.Title = defaultAdTitle(in.Type)
	}
	if err := s.store.InsertAd(ctx, &ad); err != nil {
		return model.Ad{}, fmt.Errorf("insert ad: %w", err)
	}
	return ad, nil
}

func defaultAdTitle(typ string) string {
	if typ == model.AdTypeVideo {
		return "Video Ad"
	}
	return "Image Ad"
}

// DeleteAd removes the ad whose identity is the hex string id.
func (s *Service) DeleteAd(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return invalid("Invalid ad id")
	}
	if err := s.store.DeleteAd(ctx, oid); err != nil {
		return fmt.Errorf("delete ad %s: %w", id, err)
	}
	return nil
}
