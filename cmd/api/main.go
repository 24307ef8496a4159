package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danghoang/sportygear-backend/api/routes"
	"github.com/danghoang/sportygear-backend/internal/blogs"
	"github.com/danghoang/sportygear-backend/internal/cart"
	"github.com/danghoang/sportygear-backend/internal/catalog"
	"github.com/danghoang/sportygear-backend/internal/gateway/momo"
	"github.com/danghoang/sportygear-backend/internal/gateway/vnpay"
	"github.com/danghoang/sportygear-backend/internal/inventory"
	"github.com/danghoang/sportygear-backend/internal/orders"
	"github.com/danghoang/sportygear-backend/internal/payments"
	"github.com/danghoang/sportygear-backend/internal/products"
	"github.com/danghoang/sportygear-backend/internal/reviews"
	"github.com/danghoang/sportygear-backend/internal/suppliers"
	"github.com/danghoang/sportygear-backend/internal/users"
	"github.com/danghoang/sportygear-backend/internal/vouchers"
	"github.com/danghoang/sportygear-backend/internal/wishlist"
	"github.com/danghoang/sportygear-backend/pkg/auth/session"
	"github.com/danghoang/sportygear-backend/pkg/cloudinary"
	"github.com/danghoang/sportygear-backend/pkg/config"
	"github.com/danghoang/sportygear-backend/pkg/db"
	"github.com/danghoang/sportygear-backend/pkg/logger"
	"github.com/danghoang/sportygear-backend/pkg/mailer"
	"github.com/danghoang/sportygear-backend/pkg/metrics"
	"github.com/danghoang/sportygear-backend/pkg/migrate"
	"github.com/danghoang/sportygear-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	usersRepo := users.NewRepository(gdb)
	inventoryRepo := inventory.NewRepository(gdb)

	usersService, err := users.NewService(usersRepo, sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	suppliersService, err := suppliers.NewService(gdb)
	if err != nil {
		logg.Error(context.Background(), "failed to create suppliers service", err)
		os.Exit(1)
	}
	productsService, err := products.NewService(products.NewRepository(gdb), inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}
	vouchersService, err := vouchers.NewService(vouchers.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create vouchers service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.NewRepository(gdb), inventoryRepo, vouchersService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	wishlistService, err := wishlist.NewService(wishlist.NewRepository(gdb), inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}
	reviewsService, err := reviews.NewService(reviews.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}
	blogsService, err := blogs.NewService(gdb)
	if err != nil {
		logg.Error(context.Background(), "failed to create blogs service", err)
		os.Exit(1)
	}

	var receiptMailer *mailer.Mailer
	if cfg.SMTP.Enabled() {
		receiptMailer = mailer.New(cfg.SMTP, logg)
	} else {
		logg.Warn(context.Background(), "smtp not configured, receipt emails disabled")
	}

	ordersService, err := orders.NewService(dbClient, orders.NewRepository(gdb), inventoryRepo, vouchersService, usersRepo, receiptMailer, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	momoClient := momo.NewClient(cfg.MoMo)
	vnpayClient := vnpay.NewClient(cfg.VNPay)

	paymentsService, err := payments.NewService(dbClient, payments.NewRepository(gdb), ordersService, momoClient, vnpayClient, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	mediaClient, err := cloudinary.New(cfg.Cloudinary, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cloudinary client", err)
		os.Exit(1)
	}
	if mediaClient == nil {
		logg.Warn(context.Background(), "cloudinary not configured, media uploads disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.New(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Metrics:  httpMetrics,
			Gatherer: registry,

			Users:     usersService,
			Catalog:   catalogService,
			Suppliers: suppliersService,
			Products:  productsService,
			Vouchers:  vouchersService,
			Cart:      cartService,
			Wishlist:  wishlistService,
			Orders:    ordersService,
			Reviews:   reviewsService,
			Payments:  paymentsService,
			Blogs:     blogsService,

			MoMo:  momoClient,
			VNPay: vnpayClient,
			Media: mediaClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
