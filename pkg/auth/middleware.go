package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"
)

type contextKey string

const sessionKey contextKey = "admin_session"

// SessionFromContext は context から管理者セッションを取得する
func SessionFromContext(ctx context.Context) (*Session, bool) {
	v, ok := ctx.Value(sessionKey).(*Session)
	return v, ok
}

// WithSession は context に管理者セッションをセットする
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionValidator resolves a cookie value to a live session.
type SessionValidator func(ctx context.Context, token string) (*Session, error)

// RequireAdmin は管理画面用の認証ミドルウェア。
// API パス (/api/) は 401 JSON、それ以外は loginPath へリダイレクトする。
// ログインページ自体は常に通す。
func RequireAdmin(validate SessionValidator, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := cleanPath(r.URL.Path)
			if isLoginPath(p, loginPath) {
				next.ServeHTTP(w, r)
				return
			}

			var sess *Session
			if cookie, err := r.Cookie(SessionCookieName()); err == nil && cookie.Value != "" {
				sess, _ = validate(r.Context(), cookie.Value)
			}
			if sess == nil {
				deny(w, r, p, loginPath)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// cleanPath resolves dot segments and repeated slashes the way the file
// server will, so the gate decides on the path that is actually served.
func cleanPath(p string) string {
	return path.Clean("/" + p)
}

// isLoginPath matches the login page in its extensionless, .html and
// directory-index forms. p must already be cleaned.
func isLoginPath(p, loginPath string) bool {
	return p == loginPath || p == loginPath+".html" || strings.HasPrefix(p, loginPath+"/")
}

func deny(w http.ResponseWriter, r *http.Request, p, loginPath string) {
	if strings.HasPrefix(p, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Unauthorized"})
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}
