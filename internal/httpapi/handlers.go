package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"

	"sadco.org/internal/audit"
	"sadco.org/internal/auth"
	"sadco.org/internal/obs"
	"sadco.org/internal/survey"
)

// ReadyProbe — readiness check (DB ping when a pool is attached).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the survey service, the authorizer and the
// download audit trail.
type API struct {
	mux        *http.ServeMux
	surveys    survey.Service
	authorizer *auth.Authorizer
	audits     *audit.Recorder
	readyProbe ReadyProbe
	version    string
}

func New(surveys survey.Service, authorizer *auth.Authorizer, audits *audit.Recorder, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		surveys:    surveys,
		authorizer: authorizer,
		audits:     audits,
		readyProbe: rp,
		version:    version,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// survey catalogue
	a.mux.HandleFunc("/survey/surveys", a.handleSurveyList)
	a.mux.HandleFunc("/survey/surveys/search", a.handleSurveySearch)
	a.mux.HandleFunc("/survey/surveys/", a.handleSurveyDetail)
	a.mux.HandleFunc("/survey/hydro/", a.handleHydroDetail)

	// downloads
	a.mux.HandleFunc("/survey/download/", a.handleSurveyDownload)
	a.mux.HandleFunc("/vos/surveys/search", a.handleVosSearch)
	a.mux.HandleFunc("/vos/download", a.handleVosDownload)

	// audit trail
	a.mux.HandleFunc("/download/my_downloads", a.handleMyDownloads)
	a.mux.HandleFunc("/download/all_downloads", a.handleAllDownloads)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	})

	var h http.Handler = a.mux
	h = obs.Instrument(h)
	h = Logging(h)
	h = RequestID(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 50, 25)
	h = SecurityHeaders(h)
	h = c.Handler(h)
	return h
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "sadco-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "sadco-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// handleServiceError maps domain errors onto response codes. Authorization
// denials deliberately carry no detail beyond the status.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrForbidden),
		errors.Is(err, auth.ErrClientNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		writeError(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, survey.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, survey.ErrUnsupportedCategory):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
