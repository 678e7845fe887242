package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"storefront-service/internal/api"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/config"
	"storefront-service/internal/logging"
	"storefront-service/internal/store"
)

const (
	defaultAppName = "StorefrontService"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	logger = logger.With(zap.String("service", defaultAppName))
	logger.Info("configuration loaded",
		zap.String("app_env", cfg.AppEnv),
		zap.String("log_level", cfg.LogLevel),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.String("cart_store", cfg.CartStore),
		zap.String("currency", cfg.Pricing.Currency))

	// --- Database Connection (optional) ---
	var (
		db      *sql.DB
		dbStore *store.PostgresStore
	)
	if cfg.Postgres.Enabled() {
		db, dbStore = setupDB(logger, cfg.Postgres)
	} else {
		logger.Info("POSTGRES_HOST not set, running without a database")
	}

	// --- Catalog ---
	source, err := buildCatalogSource(cfg.Catalog, dbStore, logger)
	if err != nil {
		logger.Fatal("failed to build catalog source", zap.Error(err))
	}
	loader := catalog.NewLoader(source, cfg.Catalog.TTL, logger.Named("catalog"))
	if _, err := loader.Refresh(context.Background()); err != nil {
		// The storefront still starts; requests retry the load.
		logger.Warn("initial catalog load failed", zap.Error(err))
	}

	// --- Cart Sessions ---
	policy, err := cart.NewShippingPolicy(cfg.Pricing.FreeShippingThreshold, cfg.Pricing.FlatShippingFee)
	if err != nil {
		logger.Fatal("invalid shipping policy", zap.Error(err))
	}
	var cartStore cart.Store = store.NewMemoryCartStore()
	if cfg.CartStore == config.CartStorePostgres {
		cartStore = dbStore
	}
	submitter, err := buildOrderSubmitter(cfg.Order, logger)
	if err != nil {
		logger.Fatal("failed to build order submitter", zap.Error(err))
	}
	sessions := cart.NewSessions(cartStore, policy, submitter, logger.Named("cart"))

	// --- Initialize API Handlers ---
	var productStore store.ProductStorer
	if dbStore != nil {
		productStore = dbStore
	}
	httpAPIHandler := api.NewHTTPHandler(loader, sessions, productStore, logger.Named("http"))
	grpcAPIHandler := api.NewGRPCHandler(loader, policy, logger.Named("grpc"))

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger)
	registerHealthCheck(httpRouter, logger, db, loader)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		logger.Info("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer := setupGRPCServer(logger, grpcAPIHandler)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Fatal("failed to listen for gRPC", zap.String("port", cfg.GrpcServer.Port), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("port", cfg.GrpcServer.Port))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatal("gRPC server Serve error", zap.Error(err))
		}
		logger.Info("gRPC server has stopped")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, dbStore, shutdownComplete)

	<-shutdownComplete
	logger.Info("service shutdown sequence finished")
}

func setupDB(logger *zap.Logger, pc config.PostgresConfig) (*sql.DB, *store.PostgresStore) {
	db, err := sql.Open("postgres", pc.DSN())
	if err != nil {
		logger.Fatal("failed to initialize database connection", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	dbStore := store.NewPostgresStore(db, logger.Named("store"))
	if err := dbStore.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to apply database schema", zap.Error(err))
	}
	logger.Info("database connection established", zap.String("host", pc.Host), zap.String("dbname", pc.DBName))
	return db, dbStore
}

func buildCatalogSource(cc config.CatalogConfig, dbStore *store.PostgresStore, logger *zap.Logger) (catalog.Source, error) {
	switch cc.Source {
	case config.CatalogSourceREST, config.CatalogSourceSheet:
		format := catalog.FormatEnvelope
		if cc.Source == config.CatalogSourceSheet {
			format = catalog.FormatArray
		}
		return catalog.NewHTTPSource(catalog.HTTPSourceConfig{
			URL:      cc.URL,
			Format:   format,
			Timeout:  cc.Timeout,
			RetryMax: cc.RetryMax,
			Logger:   logger.Named("catalog-source"),
		})
	case config.CatalogSourcePostgres:
		if dbStore == nil {
			return nil, errors.New("postgres catalog source requires a database")
		}
		return catalog.SourceFunc(dbStore.ListRawRecords), nil
	case config.CatalogSourceStatic:
		return catalog.NewStaticSource(catalog.SeedRecords()), nil
	}
	return nil, fmt.Errorf("unknown catalog source %q", cc.Source)
}

func buildOrderSubmitter(oc config.OrderConfig, logger *zap.Logger) (cart.OrderSubmitter, error) {
	if oc.Endpoint == "" {
		logger.Info("ORDER_ENDPOINT not set, orders are accepted locally")
		return cart.NewLocalOrderSubmitter(logger.Named("orders")), nil
	}
	return cart.NewHTTPOrderSubmitter(cart.HTTPOrderSubmitterConfig{
		Endpoint: oc.Endpoint,
		Timeout:  oc.Timeout,
		RetryMax: oc.RetryMax,
		Logger:   logger.Named("orders"),
	})
}

func setupBaseMiddleware(router *chi.Mux, logger *zap.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	logger.Info("base HTTP middleware registered")
}

func registerHealthCheck(router *chi.Mux, logger *zap.Logger, db *sql.DB, loader *catalog.Loader) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "disabled"
		if db != nil {
			dbStatus = "healthy"
			if err := db.PingContext(ctx); err != nil {
				dbStatus = "unhealthy"
				logger.Warn("health check DB ping failed", zap.Error(err))
			}
		}

		catalogStatus := "healthy"
		products := 0
		if snap, err := loader.Snapshot(ctx); err != nil {
			catalogStatus = "unhealthy"
			logger.Warn("health check catalog load failed", zap.Error(err))
		} else {
			products = len(snap.Products)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // Always 200, but payload indicates detailed status
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"database":    dbStatus,
			"catalog":     catalogStatus,
			"products":    products,
		})
	})
	logger.Info("HTTP health check registered", zap.String("path", healthPath))
}

func setupGRPCServer(logger *zap.Logger, grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer()

	api.RegisterStorefrontServer(s, grpcAPIHandler)
	logger.Info("gRPC service registered", zap.String("service", api.StorefrontServiceName))

	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	logger.Info("gRPC health check service registered")

	reflection.Register(s)
	logger.Info("gRPC reflection service registered")

	return s
}

func waitForShutdown(
	logger *zap.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	dbStore *store.PostgresStore,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Info("received signal, starting graceful shutdown", zap.String("signal", receivedSignal.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	logger.Info("attempting to gracefully shut down gRPC server")
	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	logger.Info("attempting to gracefully shut down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		logger.Info("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		logger.Warn("gRPC server graceful shutdown timed out, forcing stop", zap.Error(shutdownCtx.Err()))
		grpcServer.Stop()
	}

	if dbStore != nil {
		if err := dbStore.Close(); err != nil {
			logger.Warn("error closing database connection", zap.Error(err))
		}
	}

	logger.Info("graceful shutdown sequence completed")
}
