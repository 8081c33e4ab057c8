package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
)

const serviceName = "Animal Identification API"

type SpeciesResolver interface {
	Identify(ctx context.Context, image []byte, location *string) (domain.Identification, error)
}

// Server is the stateless HTTP surface: one action-dispatched route,
// no session state of any kind.
type Server struct {
	resolver SpeciesResolver
	log      *slog.Logger
}

func NewServer(resolver SpeciesResolver, log *slog.Logger) http.Handler {
	s := &Server{
		resolver: resolver,
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/identify", s.handleRequest)
	mux.HandleFunc("/", handleNotFound)

	return chainMiddlewares(mux,
		withCORS,
		withLogging(log),
		withRecovery(log),
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type identifyRequest struct {
	Action      string `json:"action,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	ImageBuffer []byte `json:"imageBuffer,omitempty"`
	Location    string `json:"location,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

type identifyResponse struct {
	Success bool                   `json:"success"`
	Data    *domain.Identification `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

// handleRequest dispatches on the action field: `health` | `identify`,
// default `identify`. The action may come from the query string or the
// JSON body.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req identifyRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	action := r.URL.Query().Get("action")
	if action == "" {
		action = req.Action
	}
	if action == "" {
		action = "identify"
	}

	switch action {
	case "health":
		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   serviceName,
		})
	case "identify":
		s.handleIdentify(w, r, req)
	default:
		badRequest(w, fmt.Sprintf("Unknown action: %s. Use 'identify' or 'health'.", action))
	}
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request, req identifyRequest) {
	image := req.ImageBuffer
	if len(image) == 0 && req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			badRequest(w, "invalid imageBase64")
			return
		}
		image = decoded
	}
	if len(image) == 0 {
		badRequest(w, "No image provided. Send imageBase64 in request body.")
		return
	}

	var location *string
	if req.Location != "" {
		location = &req.Location
	}

	result, err := s.resolver.Identify(r.Context(), image, location)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, identifyResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, identifyResponse{
		Success: true,
		Data:    &result,
	})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "Not Found",
	})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, identifyResponse{
		Success: false,
		Error:   msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
