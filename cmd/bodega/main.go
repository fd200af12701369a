package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/bodega-ims/bodega-ims/internal/app"
	"github.com/bodega-ims/bodega-ims/internal/auth"
	"github.com/bodega-ims/bodega-ims/internal/export"
	"github.com/bodega-ims/bodega-ims/internal/inventory"
	"github.com/bodega-ims/bodega-ims/internal/masterdata"
	"github.com/bodega-ims/bodega-ims/internal/observability"
	"github.com/bodega-ims/bodega-ims/internal/overview"
	"github.com/bodega-ims/bodega-ims/internal/purchasing"
	"github.com/bodega-ims/bodega-ims/internal/shared"
	"github.com/bodega-ims/bodega-ims/internal/users"
	"github.com/bodega-ims/bodega-ims/jobs"
)

// catalogAdapter bridges the catalog service into the inventory engine.
type catalogAdapter struct {
	md *masterdata.Service
}

func (a *catalogAdapter) ProductRef(ctx context.Context, id string) (inventory.ProductRef, error) {
	p, err := a.md.GetProduct(ctx, id)
	if err != nil {
		return inventory.ProductRef{}, err
	}
	return inventory.ProductRef{ID: p.ID, SKU: p.SKU, Name: p.Name}, nil
}

func (a *catalogAdapter) WarehouseRef(ctx context.Context, id string) (inventory.WarehouseRef, error) {
	w, err := a.md.GetWarehouse(ctx, id)
	if err != nil {
		return inventory.WarehouseRef{}, err
	}
	return inventory.WarehouseRef{ID: w.ID, Name: w.Name}, nil
}

// ledgerAdapter gives the catalog its view of the stock ledger.
type ledgerAdapter struct {
	inv *inventory.Service
}

func (a *ledgerAdapter) RecordProductCreation(ctx context.Context, productID, sku, name, actor string) error {
	_, err := a.inv.RecordCreation(ctx, inventory.ProductRef{ID: productID, SKU: sku, Name: name}, actor)
	return err
}

func (a *ledgerAdapter) WriteOffProduct(ctx context.Context, productID, sku, name, actor string) error {
	_, err := a.inv.RemoveProductEntries(ctx, inventory.ProductRef{ID: productID, SKU: sku, Name: name}, actor)
	return err
}

func (a *ledgerAdapter) TotalOfProduct(ctx context.Context, productID string) (int64, error) {
	return a.inv.TotalOfProduct(ctx, productID)
}

// purchasingCatalogAdapter resolves order references against the catalog.
type purchasingCatalogAdapter struct {
	md *masterdata.Service
}

func (a *purchasingCatalogAdapter) ProductInfo(ctx context.Context, id string) (purchasing.ProductInfo, error) {
	p, err := a.md.GetProduct(ctx, id)
	if err != nil {
		return purchasing.ProductInfo{}, err
	}
	return purchasing.ProductInfo{ID: p.ID, SKU: p.SKU, Name: p.Name, Price: p.Price}, nil
}

func (a *purchasingCatalogAdapter) SupplierExists(ctx context.Context, id string) error {
	_, err := a.md.GetSupplier(ctx, id)
	return err
}

func (a *purchasingCatalogAdapter) CompanyExists(ctx context.Context, id string) error {
	_, err := a.md.GetCompany(ctx, id)
	return err
}

func (a *purchasingCatalogAdapter) WarehouseExists(ctx context.Context, id string) error {
	_, err := a.md.GetWarehouse(ctx, id)
	return err
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	idempotencyStore := shared.NewIdempotencyStore(redisClient, cfg.IdempotencyRetention)
	auditTrail := shared.NewAuditTrail(logger, cfg.AuditTrailLimit)
	metrics := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, logger)
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	catalog := &catalogAdapter{}
	inventoryRepo := inventory.NewRepository()
	inventoryService := inventory.NewService(inventoryRepo, catalog, auditTrail, jobClient, logger)

	masterdataRepo := masterdata.NewRepository()
	masterdataService := masterdata.NewService(masterdataRepo, &ledgerAdapter{inv: inventoryService}, auditTrail, logger)
	catalog.md = masterdataService

	purchasingRepo := purchasing.NewRepository()
	purchasingService := purchasing.NewService(purchasingRepo, &purchasingCatalogAdapter{md: masterdataService}, inventoryService, idempotencyStore, auditTrail, logger)

	userService := users.NewService(users.NewRepository(), auditTrail)
	bootstrapAdmin(ctx, logger, cfg, userService)
	authService := auth.NewService(userService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		AuthHandler:       auth.NewHandler(logger, authService, sessionManager),
		UsersHandler:      users.NewHandler(logger, userService),
		InventoryHandler:  inventory.NewHandler(logger, inventoryService, metrics),
		MasterDataHandler: masterdata.NewHandler(logger, masterdataService),
		PurchasingHandler: purchasing.NewHandler(logger, purchasingService),
		ExportHandler:     export.NewHandler(logger, inventoryService),
		OverviewHandler:   overview.NewHandler(logger, inventoryService, masterdataService, purchasingService),
		JobHandler:        jobs.NewHandler(inspector, logger),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// bootstrapAdmin seeds the first admin account so a fresh instance is
// reachable. Skipped when no password is configured or the email is taken.
func bootstrapAdmin(ctx context.Context, logger *slog.Logger, cfg *app.Config, svc *users.Service) {
	if cfg.BootstrapAdminPassword == "" {
		return
	}
	if _, err := svc.FindByEmail(ctx, cfg.BootstrapAdminEmail); err == nil {
		return
	}
	_, err := svc.CreateUser(ctx, users.UserInput{
		Email:    cfg.BootstrapAdminEmail,
		Name:     "Administrator",
		Role:     users.RoleAdmin,
		IsActive: true,
		Password: cfg.BootstrapAdminPassword,
	}, "system")
	if err != nil {
		logger.Warn("bootstrap admin", slog.Any("error", err))
		return
	}
	logger.Info("bootstrap admin created", slog.String("email", cfg.BootstrapAdminEmail))
}
