// Package server relays dictionary lookups from HTTP clients to the generative-language upstream.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/qamus/internal/config"
	"github.com/at-ishikawa/qamus/internal/inference"
	"github.com/at-ishikawa/qamus/internal/lexicon"
)

const (
	IndexPath  = "/"
	HealthPath = "/health"
	DataPath   = "/api/data"

	healthyStatus  = "healthy"
	healthyMessage = "Qamus server is running."
)

// Handler serves the index page, the liveness check, and the relay endpoint.
// It only holds state that is fixed for the lifetime of the process.
type Handler struct {
	cfg       *config.Config
	client    inference.Client
	options   lexicon.Options
	indexPage []byte
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewHandler(cfg *config.Config, client inference.Client, options lexicon.Options, indexPage []byte) *Handler {
	return &Handler{
		cfg:       cfg,
		client:    client,
		options:   options,
		indexPage: indexPage,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    slog.Default(),
	}
}

// Routes returns the mux of all routes. Unknown paths get the default 404.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+IndexPath+"{$}", h.handleIndex)
	mux.HandleFunc("GET "+HealthPath, h.handleHealth)
	mux.HandleFunc(DataPath, h.handleData)
	return mux
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.indexPage); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write the index page", slog.Any("error", err))
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  healthyStatus,
		Message: healthyMessage,
	})
}
