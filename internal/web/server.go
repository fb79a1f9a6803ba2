package web

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/easypass/internal/config"
	"github.com/hpungsan/easypass/internal/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const shutdownTimeout = 5 * time.Second

// NewServer creates and configures the HTTP server for the management UI.
func NewServer(db *sql.DB, cfg *config.Config, version string) (*http.Server, error) {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		renderer: NewRenderer(templateSub, version),
	}

	// The UI serves secrets, so it answers only to its own host names
	// (no DNS rebinding) and refuses cross-site writes.
	cop := http.NewCrossOriginProtection()
	cop.SetDenyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refuse(w, r, "cross-origin request refused")
	}))
	handler := hostGuard(allowedHosts(cfg.WebBind), cfg.WebPort, cop.Handler(routes(h, staticSub)))

	return &http.Server{
		Addr:              net.JoinHostPort(cfg.WebBind, strconv.Itoa(cfg.WebPort)),
		Handler:           securityHeaders(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func routes(h *Handlers, static fs.FS) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/credentials", http.StatusFound)
	})
	mux.HandleFunc("GET /credentials", h.HandleList)
	mux.HandleFunc("POST /credentials", h.HandleCreate)
	mux.HandleFunc("GET /credentials/{id}", h.HandleDetail)
	mux.HandleFunc("POST /credentials/{id}", h.HandleUpdate)
	mux.HandleFunc("POST /credentials/{id}/note", h.HandleNote)
	mux.HandleFunc("DELETE /credentials/{id}", h.HandleDelete)
	mux.HandleFunc("POST /credentials/{id}/delete", h.HandleDelete)
	mux.HandleFunc("GET /groups", h.HandleGroups)
	mux.HandleFunc("POST /groups", h.HandleGroupAdd)
	mux.HandleFunc("DELETE /groups/{name}", h.HandleGroupDelete)
	mux.HandleFunc("POST /groups/{name}/delete", h.HandleGroupDelete)
	mux.HandleFunc("GET /generate", h.HandleGenerate)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return mux
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// allowedHosts lists the Host names the UI answers to: loopback names,
// plus the bind address, or every local address for a wildcard bind.
func allowedHosts(bind string) map[string]bool {
	hosts := map[string]bool{"localhost": true, "127.0.0.1": true, "::1": true}

	bind = strings.ToLower(strings.Trim(bind, "[]"))
	ip := net.ParseIP(bind)
	if bind != "" && (ip == nil || !ip.IsUnspecified()) {
		hosts[bind] = true
		return hosts
	}

	if name, err := os.Hostname(); err == nil {
		hosts[strings.ToLower(name)] = true
	}
	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, a := range addrs {
			if ipNet, ok := a.(*net.IPNet); ok {
				hosts[ipNet.IP.String()] = true
			}
		}
	}
	return hosts
}

// hostGuard refuses requests whose Host header is not one of hosts on
// port. Port 0 (an ephemeral listener) accepts any port.
func hostGuard(hosts map[string]bool, port int, next http.Handler) http.Handler {
	wantPort := strconv.Itoa(port)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, p, err := net.SplitHostPort(r.Host)
		if err != nil {
			host, p = r.Host, "80"
		}
		host = strings.ToLower(strings.Trim(host, "[]"))
		if !hosts[host] || (port != 0 && p != wantPort) {
			refuse(w, r, fmt.Sprintf("host %q not allowed", r.Host))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// refuse answers 403 in the negotiated format.
func refuse(w http.ResponseWriter, r *http.Request, msg string) {
	slog.Warn("request refused", "component", "web", "method", r.Method, "path", r.URL.Path, "host", r.Host, "origin", r.Header.Get("Origin"), "reason", msg)
	epErr := errors.NewForbidden(msg)
	if wantsJSON(r) {
		renderJSONError(w, epErr)
		return
	}
	http.Error(w, msg, epErr.Status)
}

// Run serves srv until ctx is cancelled, then shuts it down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	logger := slog.With("component", "web")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("management UI listening", "url", "http://"+srv.Addr)
	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
