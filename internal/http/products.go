package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
)

// pathKey parses the {id} segment. Unparsable keys can never match a
// product, so callers answer them with 404.
func pathKey(r *http.Request) (int64, bool) {
	return catalog.ParseKey(r.PathValue("id"))
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := catalog.ParseKey(q.Get("page"))
	limit, _ := catalog.ParseKey(q.Get("limit"))
	res, err := a.Catalog.ListProducts(r.Context(), catalog.ListParams{
		Category:     q.Get("category"),
		FeaturedOnly: q.Get("featured") == "true",
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		writeError(w, r, err, msgProductMissing, "Failed to fetch products")
		return
	}
	WriteJSON(w, http.StatusOK, res, "")
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Catalog.Connected() {
		writeError(w, r, catalog.ErrStoreUnavailable, "", "")
		return
	}
	key, ok := pathKey(r)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, msgProductMissing, "")
		return
	}
	p, err := a.Catalog.GetProduct(r.Context(), key)
	if err != nil {
		writeError(w, r, err, msgProductMissing, "Failed to fetch product")
		return
	}
	WriteJSON(w, http.StatusOK, p, "")
}

func (a *App) productsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	res, err := a.Catalog.ProductsByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		writeError(w, r, err, msgProductMissing, "Failed to fetch products")
		return
	}
	WriteJSON(w, http.StatusOK, res, "")
}

func (a *App) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	cats, err := a.Catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err, "", "Failed to fetch categories")
		return
	}
	WriteJSON(w, http.StatusOK, cats, "")
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Catalog.Connected() {
		writeError(w, r, catalog.ErrStoreUnavailable, "", "")
		return
	}
	var in catalog.ProductInput
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := a.Catalog.CreateProduct(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "", "Failed to add product")
		return
	}
	WriteJSON(w, http.StatusCreated, p, "Product added successfully")
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Catalog.Connected() {
		writeError(w, r, catalog.ErrStoreUnavailable, "", "")
		return
	}
	var in catalog.ProductUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	key, ok := pathKey(r)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, msgProductMissing, "")
		return
	}
	p, err := a.Catalog.UpdateProduct(r.Context(), key, in)
	if err != nil {
		writeError(w, r, err, msgProductMissing, "Failed to update product")
		return
	}
	WriteJSON(w, http.StatusOK, p, "Product updated successfully")
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Catalog.Connected() {
		writeError(w, r, catalog.ErrStoreUnavailable, "", "")
		return
	}
	key, ok := pathKey(r)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, msgProductMissing, "")
		return
	}
	if err := a.Catalog.DeleteProduct(r.Context(), key); err != nil {
		writeError(w, r, err, msgProductMissing, "Failed to delete product")
		return
	}
	WriteJSON(w, http.StatusOK, nil, "Product deleted successfully")
}

func (a *App) statsHandler(w http.ResponseWriter, r *http.Request) {
	s, err := a.Catalog.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, "", "Failed to fetch statistics")
		return
	}
	WriteJSON(w, http.StatusOK, s, "")
}
