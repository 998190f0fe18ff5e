package server

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/qamus/internal/config"
	"github.com/at-ishikawa/qamus/internal/server/middleware"
)

const readHeaderTimeout = 10 * time.Second

// NewHTTPServer wraps handler with the middleware and serves both HTTP/1.1 and cleartext HTTP/2
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *http.Server {
	wrapped := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)(handler)

	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           h2c.NewHandler(wrapped, &http2.Server{}),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}
