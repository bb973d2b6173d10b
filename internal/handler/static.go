package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticSite serves a pre-built site from dir. Extensionless paths fall back
// to "<path>.html" so exported pages such as /admin/login resolve.
func StaticSite(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean("/" + r.URL.Path)
		served := p
		switch {
		case p != "/" && path.Ext(p) == "" && !exists(dir, p) && exists(dir, p+".html"):
			served = p + ".html"
		case p != "/" && strings.HasSuffix(r.URL.Path, "/"):
			served = p + "/"
		}
		// Serve the same cleaned path the router matched and the gate checked.
		r2 := r.Clone(r.Context())
		r2.URL.Path = served
		r2.URL.RawPath = ""
		fs.ServeHTTP(w, r2)
	})
}

func exists(dir, urlPath string) bool {
	name := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))
	_, err := os.Stat(name)
	return err == nil
}
