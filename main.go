package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/snackhouse/configs"
	"github.com/Zhima-Mochi/snackhouse/internal/application/access"
	apporder "github.com/Zhima-Mochi/snackhouse/internal/application/order"
	apppayment "github.com/Zhima-Mochi/snackhouse/internal/application/payment"
	domcustomer "github.com/Zhima-Mochi/snackhouse/internal/domain/customer"
	dompayment "github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/snackhouse/internal/domain/product"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/gateway"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/observability/telemetry"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/observability/zaplogger"
	infraoutbox "github.com/Zhima-Mochi/snackhouse/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/rediscache"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/webhook"
	"github.com/Zhima-Mochi/snackhouse/internal/observability"
	httppresentation "github.com/Zhima-Mochi/snackhouse/internal/presentation/http"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := configs.Load(getenvDefault("CONFIG_DIR", "configs"), os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}

	logger := zaplogger.New(cfg.App.Name, cfg.App.Env)
	defer func() { _ = logger.Sync() }()

	metrics := prometrics.New(cfg.App.Name)
	tel := telemetry.New(oteltrace.New(cfg.App.Name), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores, seeded with a small catalog so the API is usable out of the box.
	orderRepo := memory.NewOrderRepository()
	productRepo := memory.NewProductRepository(seedCatalog()...)
	customerRepo := memory.NewCustomerRepository(seedCustomers()...)
	paymentRepo := memory.NewPaymentRepository()

	bus := infraoutbox.NewBus(logger)
	bus.Start(ctx)
	defer bus.Stop(context.Background())

	var (
		processor dompayment.Processor
		deferred  *gateway.Deferred
	)
	switch cfg.Payment.Mode {
	case "deferred":
		deferred = gateway.NewDeferred(cfg.Payment.DeferredDelay, logger)
		processor = deferred
	default:
		processor = gateway.NewMock(cfg.Payment.ApprovalRate)
	}

	facade := access.New(orderRepo, productRepo, customerRepo, processor)

	var statusCache apporder.StatusCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer func() { _ = rdb.Close() }()
		statusCache = rediscache.New(rdb, cfg.Redis.StatusTTL)
	}

	orderSvc := apporder.NewService(facade, statusCache, tel)

	adapter := webhook.New(webhook.Config{
		ProcessorURL: cfg.Payment.ProcessorURL,
		APIHost:      cfg.Payment.APIHost,
		Timeout:      cfg.Payment.RegisterTimeout,
	}, logger)
	paymentSvc := apppayment.NewService(facade, paymentRepo, adapter, bus, tel)
	if deferred != nil {
		deferred.Bind(paymentSvc)
	}

	worker := apporder.NewWorker(facade, bus, statusCache, tel)
	worker.Start()

	handler := httppresentation.NewHandler(orderSvc, paymentSvc, tel)
	server := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("http_server_starting", observability.F("addr", cfg.App.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_failed", observability.F("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown_initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_server_shutdown_failed", observability.F("error", err.Error()))
	}
	logger.Info("shutdown_complete")
}

func seedCatalog() []*domproduct.Product {
	return []*domproduct.Product{
		{ID: 1, Name: "Classic Burger", Category: domproduct.CategorySnack, Price: 18.90, Description: "Beef patty, cheddar, house sauce"},
		{ID: 2, Name: "Veggie Burger", Category: domproduct.CategorySnack, Price: 17.50, Description: "Chickpea patty, grilled vegetables"},
		{ID: 3, Name: "Fries", Category: domproduct.CategorySide, Price: 8.00, Description: "Crispy, lightly salted"},
		{ID: 4, Name: "Onion Rings", Category: domproduct.CategorySide, Price: 9.50, Description: "Beer-battered"},
		{ID: 5, Name: "Cola", Category: domproduct.CategoryDrink, Price: 6.00},
		{ID: 6, Name: "Lemonade", Category: domproduct.CategoryDrink, Price: 7.00, Description: "Fresh squeezed"},
	}
}

func seedCustomers() []*domcustomer.Customer {
	return []*domcustomer.Customer{
		{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"},
		{ID: 2, Name: "Alan Turing", Email: "alan@example.com"},
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
