package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catering-dispatch/internal/adapter/jsonfile"
	"catering-dispatch/internal/adapter/logger"
	"catering-dispatch/internal/adapter/maps"
	"catering-dispatch/internal/adapter/ws"
	"catering-dispatch/internal/app/agent"
	"catering-dispatch/internal/app/refresh"
	"catering-dispatch/internal/app/seed"
	"catering-dispatch/internal/app/store"
	"catering-dispatch/internal/config"

	httpAdapter "catering-dispatch/internal/adapter/http"
)

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "", "Service mode: dispatch-server, viewer, seed")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	seedCount := flag.Int("seed-count", 5, "Number of demo orders (for seed mode)")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	lgr := logger.New(*mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch *mode {
	case "dispatch-server":
		runDispatchServer(ctx, cancel, cfg, lgr)

	case "viewer":
		runViewer(ctx, cancel, cfg, lgr)

	case "seed":
		orderRepo := jsonfile.NewOrderRepository(cfg.Store.OrdersFile)
		driverRepo := jsonfile.NewDriverRepository(cfg.Store.DriversFile)
		if err := seed.Run(orderRepo, driverRepo, *seedCount); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		lgr.Info("seed_completed", fmt.Sprintf("Seeded %d demo orders", *seedCount), "", nil)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runDispatchServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, lgr logger.Logger) {
	// Initialize repositories
	orderRepo := jsonfile.NewOrderRepository(cfg.Store.OrdersFile)
	driverRepo := jsonfile.NewDriverRepository(cfg.Store.DriversFile)

	drivers, err := driverRepo.Load()
	if err != nil {
		log.Fatalf("Failed to load drivers: %v", err)
	}

	// Initialize the canonical store
	orderStore, err := store.NewService(orderRepo, lgr)
	if err != nil {
		log.Fatalf("Failed to initialize order store: %v", err)
	}

	// Initialize broadcast hub
	hub := ws.NewHub(lgr)
	go hub.Run(ctx)

	// Initialize travel time refresher
	estimator := maps.NewClient(cfg.Routing.Endpoint, cfg.Routing.APIKey, cfg.Routing.Timeout())
	refresher := refresh.NewService(orderStore, estimator, hub, lgr, cfg.Routing.OriginAddress, cfg.Refresh.Interval())
	go refresher.Run(ctx)

	// WebSocket server
	wsHandler := ws.NewHandler(hub, orderStore, drivers, lgr, cfg.Hub.PingInterval())
	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/", wsHandler.ServeWS)
	wsServer := &http.Server{Addr: cfg.Server.WSAddr, Handler: wsMux}

	// HTTP convenience server
	orderHandler := httpAdapter.NewOrderHandler(orderStore, hub, lgr)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders", orderHandler.GetOrders)
	mux.HandleFunc("/broadcast", orderHandler.Broadcast)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	apiServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", "Dispatch server started", "", map[string]interface{}{
		"ws_addr":   cfg.Server.WSAddr,
		"http_addr": cfg.Server.HTTPAddr,
	})

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down dispatch server", "", nil)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := wsServer.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during WebSocket server shutdown", "", nil, err)
		}
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during HTTP server shutdown", "", nil, err)
		}
	}()

	errCh := make(chan error, 2)
	go func() { errCh <- wsServer.ListenAndServe() }()
	go func() { errCh <- apiServer.ListenAndServe() }()

	// Inability to bind a listening socket is the one fatal failure class.
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}
}

func runViewer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, lgr logger.Logger) {
	overrides := jsonfile.NewOverrideCache(cfg.Client.OverrideCacheFile)

	a := agent.New(agent.Config{
		URL:         cfg.Client.ServerURL,
		MaxAttempts: cfg.Client.MaxReconnectAttempts,
		BackoffBase: cfg.Client.BackoffBase(),
		BackoffCap:  cfg.Client.BackoffCap(),
	}, agent.Dial, overrides, lgr, func(s agent.ConnState) {
		lgr.Info("connection_state", fmt.Sprintf("Connection state: %s", s), "", map[string]interface{}{
			"state": s.String(),
		})
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint
		lgr.Info("shutdown_initiated", "Shutting down viewer", "", nil)
		a.Close()
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("Viewer stopped: %v", err)
	}
}
