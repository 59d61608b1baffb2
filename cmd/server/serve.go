package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/service"
)

func serveCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Connect RPC server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().Int("port", 8080, "port to listen on (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("Starting billsplit", "config", cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	repo, store, err := openRepository(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer store.Close()

	repo.Subscribe(func(snap models.Snapshot) {
		slog.Debug("Collection changed", "bills", len(snap.Bills), "active_bill_id", snap.ActiveBillID)
	})

	mux := http.NewServeMux()

	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.MetricsInterceptor(m))
	billPath, billHandler := service.NewBillServiceHandler(service.NewBillService(repo), interceptors)
	mux.Handle(billPath, billHandler)

	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(corsMiddleware(cfg.CORSOrigin, mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

const (
	corsAllowHeaders  = "Content-Type, Accept-Encoding, Content-Encoding, Connect-Protocol-Version, Connect-Timeout-Ms, Connect-Accept-Encoding, Connect-Content-Encoding"
	corsExposeHeaders = "Content-Encoding, Connect-Accept-Encoding, Connect-Content-Encoding"
)

// corsMiddleware lets browsers on origin call the RPC endpoints. Preflight
// requests are answered directly. POST bodies must be JSON since BillService
// only speaks the JSON codec.
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", "7200")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if r.Method == http.MethodPost {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				http.Error(w, "content type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
