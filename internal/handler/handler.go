package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/portfolio/backend/internal/repository"
)

// Handler serves the endpoints that only need the store connection.
type Handler struct {
	db          repository.DB
	frontendURL string
	cors        func(http.Handler) http.Handler
}

func New(db repository.DB, frontendURL string) *Handler {
	return &Handler{
		db:          db,
		frontendURL: frontendURL,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   []string{frontendURL},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	}
}

// CORS allows the frontend origin to call the API with credentials.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return h.cors(next)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
