package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgraster"
	"github.com/benoitkugler/svgrender/svgtext"
)

const (
	requestIDHeader = "X-Request-Id"
	shutdownTimeout = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the renderer over HTTP",
		Long: `Serve the renderer over HTTP.

POST /render?format=png|jpeg|pdf&id=&width=&height= with the SVG document
as body returns the rendered image.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")

	return cmd
}

func runServe(ctx context.Context, cfg Config) error {
	logger := loggerFromContext(ctx)
	shaper, err := newShaper(cfg.Text, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(cfg, shaper, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// server renders the documents posted to it. The shaper is shared
// by all the requests.
type server struct {
	cfg    Config
	shaper *svgtext.Shaper
}

func newRouter(cfg Config, shaper *svgtext.Shaper, logger *log.Logger) http.Handler {
	s := &server{cfg: cfg, shaper: shaper}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Post("/render", s.render)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// requestLogger tags each request with a random id, echoed in
// the response headers and attached to the request logger.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set(requestIDHeader, id)
			l := logger.With("request_id", id)
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), l)))
			l.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Millisecond),
			)
		})
	}
}

func (s *server) render(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r.Context())

	cfg := s.cfg.Render
	query := r.URL.Query()
	if f := query.Get("format"); f != "" {
		cfg.Format = f
	}
	for _, v := range []struct {
		name string
		dst  *float64
	}{
		{"width", &cfg.Width},
		{"height", &cfg.Height},
		{"dpi", &cfg.DPI},
	} {
		q := query.Get(v.name)
		if q == "" {
			continue
		}
		f, err := strconv.ParseFloat(q, 64)
		if err != nil || f < 0 {
			http.Error(w, "invalid "+v.name, http.StatusBadRequest)
			return
		}
		*v.dst = f
	}
	if cfg.DPI <= 0 {
		http.Error(w, "invalid dpi", http.StatusBadRequest)
		return
	}
	j, err := newJob(cfg, s.shaper, logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	j.subtree = query.Get("id")

	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	doc, err := svgdoc.ReadDocument(body, svgdoc.WithLogger(logger))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		logger.Debug("invalid document", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := j.run(doc, &buf); err != nil {
		switch {
		case errors.Is(err, svgdraw.ErrUnknownID):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, svgraster.ErrEmptyViewport):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			logger.Warn("rendering failed", "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", j.contentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}
