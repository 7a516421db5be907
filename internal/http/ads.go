package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
)

func (a *App) listAdsHandler(w http.ResponseWriter, r *http.Request) {
	ads, err := a.Catalog.ListAds(r.Context())
	if err != nil {
		writeError(w, r, err, msgAdMissing, "Failed to fetch ads")
		return
	}
	WriteJSON(w, http.StatusOK, ads, "")
}

func (a *App) createAdHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Catalog.Connected() {
		writeError(w, r, catalog.ErrStoreUnavailable, "", "")
		return
	}
	var in catalog.AdInput
	if !decodeBody(w, r, &in) {
		return
	}
	ad, err := a.Catalog.CreateAd(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "", "Failed to add ad")
		return
	}
	WriteJSON(w, http.StatusCreated, ad, "")
}

func (a *App) deleteAdHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.DeleteAd(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, msgAdMissing, "Failed to delete ad")
		return
	}
	WriteJSON(w, http.StatusOK, nil, "Ad deleted")
}
