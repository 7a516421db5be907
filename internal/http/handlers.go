package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/config"
	"github.com/fairyhunter13/storefront-catalog-service/internal/events"
	httpopenapi "github.com/fairyhunter13/storefront-catalog-service/internal/http/openapi"
)

// isoMillis matches the timestamp format browsers produce with toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type App struct {
	Cfg     config.Config
	Catalog *catalog.Service
	Events  *events.Dispatcher
	started time.Time
}

// NewApp builds the handler set. d may be nil when events are disabled.
func NewApp(cfg config.Config, svc *catalog.Service, d *events.Dispatcher) *App {
	return &App{Cfg: cfg, Catalog: svc, Events: d, started: time.Now()}
}

func now() string { return time.Now().UTC().Format(isoMillis) }

func (a *App) databaseState() string {
	if a.Catalog.Connected() {
		return "connected"
	}
	return "disconnected"
}

// decodeBody reads a JSON body into v. An empty body leaves v at its zero
// value. It writes the error response itself and reports whether to go on.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteJSONError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge, err.Error())
		return false
	}
	WriteJSONError(w, http.StatusBadRequest, msgInvalidJSON, err.Error())
	return false
}

type healthResponse struct {
	Status    string  `json:"status"`
	Database  string  `json:"database"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
}

func (a *App) apiHealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Database:  a.databaseState(),
		Uptime:    time.Since(a.started).Seconds(),
		Timestamp: now(),
	}, "")
}

type livenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, livenessResponse{
		Status:    "Server is running",
		Timestamp: now(),
		Database:  a.databaseState(),
	}, "")
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"database":   a.databaseState(),
		"uptime_sec": time.Since(a.started).Seconds(),
	}
	if a.Events != nil {
		m["events"] = a.Events.Metrics()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

const docsHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Storefront Catalog API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsHTML))
}
