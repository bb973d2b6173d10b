package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/pkg/auth"
)

const maxPageSize = 100

// AdminHandler serves the admin login and the submission management API.
type AdminHandler struct {
	contactService service.ContactService
	adminAuth      service.AdminAuth
	secureCookies  bool
}

// NewAdminHandler creates an AdminHandler. secureCookies marks the session
// cookie Secure and should be set in production.
func NewAdminHandler(contactService service.ContactService, adminAuth service.AdminAuth, secureCookies bool) *AdminHandler {
	return &AdminHandler{contactService: contactService, adminAuth: adminAuth, secureCookies: secureCookies}
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func writeInternalError(w http.ResponseWriter, op string, err error) {
	slog.Error("admin request failed", "op", op, "error", err)
	writeFailure(w, http.StatusInternalServerError, "Internal server error")
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, []string{"password"})
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, _, err := h.adminAuth.Login(r.Context(), form["password"])
	if err != nil {
		if kind, _ := service.KindOf(err); kind == service.KindAuth {
			writeFailure(w, http.StatusUnauthorized, "Invalid password")
			return
		}
		writeInternalError(w, "login", err)
		return
	}

	auth.SetSessionCookie(w, token, h.adminAuth.TTL(), h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Logout handles POST /api/admin/logout. It always clears the cookie.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName()); err == nil && cookie.Value != "" {
		if err := h.adminAuth.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to revoke admin session", "error", err)
		}
	}
	auth.ClearSessionCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Session handles GET /api/admin/session behind the gate.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"expires_at":    sess.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// List handles GET /api/admin/submissions.
// Query params: q, page (1-based), limit (1..100). Without limit every row is returned.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	q := service.ListQuery{Query: r.URL.Query().Get("q"), Page: 1}
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			q.Page = n
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			q.Limit = min(n, maxPageSize)
		}
	}

	page, err := h.contactService.List(r.Context(), q)
	if err != nil {
		writeInternalError(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func submissionID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// Get handles GET /api/admin/submissions/{id}.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := submissionID(r)
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid submission id")
		return
	}
	sub, err := h.contactService.Get(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeFailure(w, http.StatusNotFound, "Submission not found")
		return
	}
	if err != nil {
		writeInternalError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Delete handles DELETE /api/admin/submissions/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := submissionID(r)
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid submission id")
		return
	}
	removed, err := h.contactService.Delete(r.Context(), id)
	if err != nil {
		writeInternalError(w, "delete", err)
		return
	}
	if !removed {
		writeFailure(w, http.StatusNotFound, "Submission not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.contactService.Stats(r.Context())
	if err != nil {
		writeInternalError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Export handles GET /api/admin/submissions/export.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.contactService.Export(r.Context(), &buf); err != nil {
		writeInternalError(w, "export", err)
		return
	}
	filename := "contact-submissions-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
