package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", app.apiHealthHandler)
	mux.HandleFunc("GET /api/products", app.listProductsHandler)
	mux.HandleFunc("GET /api/products/{id}", app.getProductHandler)
	mux.HandleFunc("GET /api/products/category/{category}", app.productsByCategoryHandler)
	mux.HandleFunc("GET /api/categories", app.categoriesHandler)
	mux.HandleFunc("POST /api/products", app.createProductHandler)
	mux.HandleFunc("PUT /api/products/{id}", app.updateProductHandler)
	mux.HandleFunc("DELETE /api/products/{id}", app.deleteProductHandler)
	mux.HandleFunc("GET /api/stats", app.statsHandler)
	mux.HandleFunc("GET /api/ads", app.listAdsHandler)
	mux.HandleFunc("POST /api/ads", app.createAdHandler)
	mux.HandleFunc("DELETE /api/ads/{id}", app.deleteAdHandler)

	mux.HandleFunc("GET /health", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)

	mux.HandleFunc("GET /{$}", app.storefrontHandler)
	mux.HandleFunc("GET /admin", app.adminHandler)
	mux.HandleFunc("GET /admin/", app.adminHandler)
	mux.HandleFunc("/", app.fallbackHandler)

	return WithRequestID(WithLogging(WithRecover(WithCORS(WithBodyLimit(app.Cfg.MaxBodyBytes, mux)))))
}
