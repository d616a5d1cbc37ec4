// Package server provides the local preview HTTP server: the generated site
// with live-reload script injection, a health endpoint, and optional
// Prometheus metrics.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// Server serves the output tree for local preview.
type Server struct {
	cfg        *config.Config
	outputDir  string
	hub        *LiveReloadHub
	httpServer *http.Server
}

// New creates a preview server over outputDir. registry may be nil when
// metrics are disabled.
func New(cfg *config.Config, outputDir string, hub *LiveReloadHub, registry *prom.Registry) *Server {
	mux := http.NewServeMux()

	fileHandler := http.FileServer(http.Dir(outputDir))
	if cfg.Serve.LiveReload && hub != nil {
		mux.Handle("/livereload", hub)
		mux.Handle("/", injectLiveReload(fileHandler))
	} else {
		mux.Handle("/", fileHandler)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	})

	if cfg.Serve.Metrics.Enabled && registry != nil {
		mux.Handle(cfg.Serve.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return &Server{
		cfg:       cfg,
		outputDir: outputDir,
		hub:       hub,
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Serve.Port),
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// No write timeout: the SSE endpoint holds connections open.
			IdleTimeout: 300 * time.Second,
		},
	}
}

// Start runs the server until ctx is done, then shuts it down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", s.httpServer.Addr, "output", s.outputDir)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	if s.hub != nil {
		s.hub.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// injectLiveReload buffers HTML responses and appends the live-reload client
// script before </body>.
func injectLiveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		isHTMLPage := path == "/" || strings.HasSuffix(path, "/") || strings.HasSuffix(path, ".html")
		if !isHTMLPage {
			next.ServeHTTP(w, r)
			return
		}

		rec := &bufferingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		body := rec.buf.Bytes()
		isHTML := strings.HasPrefix(w.Header().Get("Content-Type"), "text/html")
		if rec.status != http.StatusOK || !isHTML {
			// Redirects and errors keep their original headers and body.
			w.WriteHeader(rec.status)
			if len(body) > 0 {
				if _, err := w.Write(body); err != nil {
					slog.Debug("preview write", "error", err)
				}
			}
			return
		}

		script := []byte("<script>" + LiveReloadScript + "</script>")
		if idx := bytes.LastIndex(body, []byte("</body>")); idx >= 0 {
			var out bytes.Buffer
			out.Grow(len(body) + len(script))
			out.Write(body[:idx])
			out.Write(script)
			out.Write(body[idx:])
			body = out.Bytes()
		} else {
			body = append(body, script...)
		}

		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(rec.status)
		if _, err := w.Write(body); err != nil {
			slog.Debug("preview write", "error", err)
		}
	})
}

// bufferingWriter captures a response so the script can be appended before it
// is sent.
type bufferingWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (b *bufferingWriter) WriteHeader(code int) {
	b.status = code
}

func (b *bufferingWriter) Write(data []byte) (int, error) {
	return b.buf.Write(data)
}
