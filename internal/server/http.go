package server

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/logging"
	"github.com/muurk/budgetgrid/internal/version"
)

// Health is the body of GET /health
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Connections int    `json:"connections"`
	Commits     uint64 `json:"commits"`
	Reverts     uint64 `json:"reverts"`
}

// Handler returns the server's routes: the WebSocket endpoint and /health
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+s.config.Path, s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := Health{
		Status:      "ok",
		Version:     version.Version,
		Connections: s.GetActiveConnections(),
		Commits:     s.commits.Load(),
		Reverts:     s.reverts.Load(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h); err != nil {
		logging.Error("Failed to write health response",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
	}
}

// LogHTTPRequestDetails logs the upgrade request at debug level
func LogHTTPRequestDetails(req *http.Request, remoteAddr string) {
	headers := make(map[string]string, len(req.Header))
	for key, values := range req.Header {
		headers[key] = strings.Join(values, ", ")
	}

	logging.Debug("WebSocket upgrade request",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("host", req.Host),
		zap.String("sec_websocket_version", req.Header.Get("Sec-WebSocket-Version")),
		zap.String("user_agent", req.Header.Get("User-Agent")),
		zap.Any("headers", headers),
	)
}
