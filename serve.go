package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orderdesk/middleware"
	"orderdesk/notify"
	"orderdesk/order"
	"orderdesk/pages"
	"orderdesk/ratelim"
	"orderdesk/routes"
	"orderdesk/session"
	"orderdesk/summary"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the catalog and serve the ordering page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cat, err := loadCatalog(loadCtx, cfg)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("products", cat.Len()),
		zap.Int("categories", len(cat.Categories())),
	)
	warnPDFFont(cfg, cat, logger)

	store, redisClient, err := newStore(loadCtx, cfg)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		return err
	}

	// initialize notification hub
	hub := notify.NewHub(logger.Named("notify"))
	go hub.Run()

	manager := session.NewManager(store, cat, order.ClockIn(loc), hub, logger.Named("session"))
	srv, err := pages.NewServer(manager, summary.New(cfg.Summary.Labels), pages.Options{
		PDF:    summary.PDFOptions{FontPath: cfg.Summary.PDFFont},
		QRSize: cfg.Summary.QRSize,
	}, logger.Named("pages"))
	if err != nil {
		return err
	}

	rateLimiter := ratelim.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	router := routes.New(srv, hub, rateLimiter)

	// apply middleware: logging → security headers → CORS → sessions → router
	sessions := middleware.NewSessions(secret, cfg.Session.CookieName, logger.Named("sessions"))
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: true,
	}).Handler(sessions.Handler(router))

	handler := middleware.Logging(logger.Named("http"))(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// on shutdown: stop the hub, close Redis
	server.RegisterOnShutdown(func() {
		logger.Info("🛑 Shutting down notification hub...")
		hub.Stop()
		if redisClient != nil {
			_ = redisClient.Close()
		}
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// wait for interrupt, SIGTERM or a failed listener
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
	case err := <-errCh:
		return err
	}

	logger.Info("🛑 Shutdown signal received; shutting down gracefully...")
	timeout, err := cfg.ShutdownTimeout()
	if err != nil {
		return err
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("✅ Server stopped cleanly")
	return nil
}
