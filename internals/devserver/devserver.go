// Package devserver serves the latest build of a pack over http, so a local
// Minecraft server can point its resource pack url at it
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/minepkg/propack/pkg/manifest"
)

// Server serves the files of one build directory
type Server struct {
	dir  string
	name string
	log  *zap.Logger
}

// New returns a server for the pack called name built into dir
func New(dir string, name string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{dir: dir, name: name, log: log}
}

// Info is returned by the index route
type Info struct {
	Name string `json:"name"`
	Sha1 string `json:"sha1"`
	URL  string `json:"url"`
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sha, err := s.sha1()
		if err != nil {
			http.Error(w, "pack not built yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		info := Info{Name: s.name, Sha1: sha, URL: "http://" + r.Host + "/pack.zip"}
		if err := json.NewEncoder(w).Encode(info); err != nil {
			s.log.Warn("could not write response", zap.Error(err))
		}
	})
	r.Get("/pack.zip", s.serveFile(".zip", "application/zip"))
	r.Get("/pack.sha1", s.serveFile(".sha1", "text/plain; charset=utf-8"))
	r.Get("/pack.propack", s.serveFile(manifest.PackExtension, "application/json"))
	return r
}

func (s *Server) sha1() (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, s.name+".sha1"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s *Server) serveFile(ext string, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := filepath.Join(s.dir, s.name+ext)
		f, err := os.Open(target)
		if err != nil {
			http.Error(w, "pack not built yet", http.StatusNotFound)
			return
		}
		defer f.Close()
		stat, err := f.Stat()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, s.name+ext, stat.ModTime(), f)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("serving pack", zap.String("addr", addr), zap.String("dir", s.dir))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
