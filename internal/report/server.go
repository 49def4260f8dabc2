package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"amlaw/internal/config"
	"amlaw/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func NewRouter(svc *Service) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/years", func(w http.ResponseWriter, r *http.Request) {
			years, err := svc.Years()
			if err != nil {
				writeError(w, r, svc.logger, err)
				return
			}
			render.JSON(w, r, map[string][]int{"years": years})
		})

		r.Get("/top", func(w http.ResponseWriter, r *http.Request) {
			q, err := parseQuery(r)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, errorResponse{Error: err.Error()})
				return
			}
			res, err := svc.Top(q)
			if err != nil {
				writeError(w, r, svc.logger, err)
				return
			}
			render.JSON(w, r, res)
		})

		r.Post("/cache/invalidate", func(w http.ResponseWriter, r *http.Request) {
			svc.Cache().Invalidate()
			render.NoContent(w, r)
		})
	})

	return r
}

func parseQuery(r *http.Request) (Query, error) {
	values := r.URL.Query()
	q := Query{Field: strings.TrimSpace(values.Get("field"))}

	year, err := strconv.Atoi(strings.TrimSpace(values.Get("year")))
	if err != nil {
		return Query{}, errors.New("year must be an integer")
	}
	q.Year = year

	if n := strings.TrimSpace(values.Get("n")); n != "" {
		parsed, err := strconv.Atoi(n)
		if err != nil || parsed < 1 {
			return Query{}, ErrInvalidLimit
		}
		q.N = parsed
	}
	if cols := strings.TrimSpace(values.Get("columns")); cols != "" {
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Columns = append(q.Columns, c)
			}
		}
	}
	return q, nil
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownYear), errors.Is(err, storage.ErrTableNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidLimit), errors.Is(err, ErrUnknownField):
		status = http.StatusBadRequest
	default:
		logger.Error("report request failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

// Serve runs the report API until ctx is cancelled, then shuts down within
// the given grace period.
func Serve(ctx context.Context, addr string, svc *Service, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		svc.logger.Info("report server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	svc.logger.Info("report server stopped")
	return nil
}

// ServeConfig opens the configured store and serves the report API on
// REPORT_ADDR until ctx is cancelled.
func ServeConfig(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := storage.OpenConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := NewService(db, cfg, logger)
	return Serve(ctx, cfg.ReportAddr, svc, time.Duration(cfg.ReportShutdownMs)*time.Millisecond)
}

// ListenAndServe is ServeConfig stopped by SIGINT or SIGTERM.
func ListenAndServe(cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return ServeConfig(ctx, cfg, logger)
}
