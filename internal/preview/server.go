// Package preview serves the resolved site configuration over HTTP while a
// site file is being edited. Changes to the file trigger a reload, and
// connected browsers are told over Server-Sent Events.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Grainular-Nord/nord.dev/internal/emit"
	"github.com/Grainular-Nord/nord.dev/internal/site"
)

const defaultDebounce = 100 * time.Millisecond

// Config holds configuration for the preview server.
type Config struct {
	// SiteFile is the site definition to watch. Empty serves the built-in site.
	SiteFile string
	Source   site.VersionSource
	Logger   *slog.Logger
	Debounce time.Duration
}

// Server serves the current resolved configuration.
type Server struct {
	siteFile string
	source   site.VersionSource
	logger   *slog.Logger
	debounce time.Duration
	events   reloadEvents

	mu       sync.RWMutex
	current  *site.Site
	lastErr  error
	reloaded time.Time
}

// NewServer creates a preview server. Call Reload before serving.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Server{
		siteFile: cfg.SiteFile,
		source:   cfg.Source,
		logger:   logger,
		debounce: debounce,
	}
}

// Reload loads, validates and resolves the site. On success the served
// configuration is replaced and clients are notified; on failure the
// previous configuration stays in place.
func (s *Server) Reload(ctx context.Context) error {
	resolved, err := s.build(ctx)
	if err == nil && ctx.Err() != nil {
		// Shutting down: do not publish a configuration nobody asked for.
		return fmt.Errorf("reload abandoned: %w", context.Cause(ctx))
	}

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.current = resolved
		s.reloaded = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.events.publish()
	return nil
}

func (s *Server) build(ctx context.Context) (*site.Site, error) {
	def, err := site.LoadOrDefault(s.siteFile)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid site definition: %w", err)
	}
	return def.Resolve(ctx, s.source)
}

// Current returns the served configuration, or nil before the first
// successful reload.
func (s *Server) Current() *site.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Handler returns the HTTP routes of the preview server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/config.json", s.handleConfig(emit.FormatJSON, "application/json"))
	r.Get("/config.yaml", s.handleConfig(emit.FormatYAML, "application/yaml"))
	r.Get("/__reload", s.handleSSE)
	return r
}

func (s *Server) handleConfig(f emit.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.RLock()
		cur, lastErr, reloaded := s.current, s.lastErr, s.reloaded
		s.mu.RUnlock()

		if cur == nil {
			msg := "site configuration not built yet"
			if lastErr != nil {
				msg = lastErr.Error()
			}
			http.Error(w, msg, http.StatusServiceUnavailable)
			return
		}

		var buf bytes.Buffer
		if err := emit.Encode(&buf, cur, f); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Last-Modified", reloaded.UTC().Format(http.TimeFormat))
		if lastErr != nil {
			w.Header().Set("X-Reload-Error", lastErr.Error())
		}
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.events.open()
	defer s.events.close(ch)

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

// Serve serves on ln until ctx is cancelled. When a site file is
// configured it is watched for changes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.siteFile != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		// Watch the directory: editors often replace files by rename.
		if err := watcher.Add(filepath.Dir(s.siteFile)); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", s.siteFile, err)
		}
		eg.Go(func() error {
			defer func() { _ = watcher.Close() }()
			s.watchLoop(egctx, watcher)
			return nil
		})
	}

	s.logger.Info("serving site configuration", "addr", "http://"+ln.Addr().String()+"/config.json")

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down preview server")
		// SSE handlers return once BaseContext is cancelled.
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchLoop reloads the site after changes to the site file, debounced.
// Reloads run on this goroutine, one at a time, so Serve returns only after
// the last one has finished.
func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	target := filepath.Clean(s.siteFile)
	pending := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pending:
			if ctx.Err() != nil {
				return
			}
			s.logger.Info("site file changed, reloading", "file", target)
			if err := s.Reload(ctx); err != nil {
				s.logger.Error("reload failed", "error", err)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
