package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mollywear-backend/config"
	"mollywear-backend/internal/cart"
	"mollywear-backend/internal/delivery/http/middleware"
	v1 "mollywear-backend/internal/delivery/http/v1"
	"mollywear-backend/internal/infrastructure/cache"
	"mollywear-backend/internal/infrastructure/mailer"
	"mollywear-backend/internal/infrastructure/payment"
	"mollywear-backend/internal/repository/postgres"
	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/logger"
	"mollywear-backend/pkg/storage"
	"mollywear-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL")

	// Repositories
	userRepo := postgres.NewUserRepository(pgxPool)
	productRepo := postgres.NewProductRepository(pgxPool)
	orderRepo := postgres.NewOrderRepository(pgxPool)
	returnRepo := postgres.NewReturnRepository(pgxPool)
	couponRepo := postgres.NewCouponRepository(pgxPool)
	settingsRepo := postgres.NewSettingsRepository(pgxPool)
	cartStore := postgres.NewCartStore(pgxPool)
	wishlistStore := postgres.NewWishlistStore(pgxPool)
	txManager := postgres.NewTransactionManager(pgxPool)

	// In-memory cache. Default expiration 30m, cleanup every 60m.
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	// Session cart containers
	cartManager := cart.NewManager(
		cartStore,
		wishlistStore,
		couponRepo,
		productRepo,
		*log,
		cfg.SessionIdleTTL,
	)

	// External clients
	paymentClient := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentKeyID, cfg.PaymentKeySecret)
	mailClient := mailer.NewClient(cfg.MailerBaseURL, cfg.MailerAPIKey, cfg.MailerFromEmail)

	r2Storage, err := storage.NewR2Storage(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
	}

	// Usecases
	authUC := usecase.NewAuthUsecase(userRepo, mailClient, memCache, cfg.OTPExpiry, cfg.AccessTokenExpiry)
	catalogUC := usecase.NewCatalogUsecase(productRepo, memCache, cfg)
	couponUC := usecase.NewCouponUsecase(couponRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, couponRepo, settingsRepo, cartStore, paymentClient, txManager)
	returnUC := usecase.NewReturnUsecase(returnRepo, orderRepo, productRepo, txManager)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, memCache, cfg)

	// Handlers
	secureCookies := cfg.Env == "production"
	authHandler := v1.NewAuthHandler(authUC, cartManager, cfg.AccessTokenExpiry, secureCookies)
	cartHandler := v1.NewCartHandler(cartManager, cfg.MaxCartQuantity)
	wishlistHandler := v1.NewWishlistHandler(cartManager, productRepo)
	catalogHandler := v1.NewCatalogHandler(catalogUC)
	orderHandler := v1.NewOrderHandler(orderUC, returnUC, cartManager)
	settingsHandler := v1.NewSettingsHandler(settingsUC)
	uploadHandler := v1.NewUploadHandler(r2Storage, cfg.MaxUploadSizeMB)
	adminCatalogHandler := v1.NewAdminCatalogHandler(catalogUC)
	adminCouponHandler := v1.NewAdminCouponHandler(couponUC)
	adminOrderHandler := v1.NewAdminOrderHandler(orderUC, returnUC)
	adminSettingsHandler := v1.NewAdminSettingsHandler(settingsUC, authUC)

	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/v1/auth/request-otp", authHandler.RequestOTP)
	mux.HandleFunc("POST /api/v1/auth/verify-otp", authHandler.VerifyOTP)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/v1/auth/me", middleware.AuthMiddleware(http.HandlerFunc(authHandler.Me)))

	// User Profile / Address
	mux.Handle("PUT /api/v1/user/profile", middleware.AuthMiddleware(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("GET /api/v1/user/addresses", middleware.AuthMiddleware(http.HandlerFunc(authHandler.GetAddresses)))
	mux.Handle("POST /api/v1/user/addresses", middleware.AuthMiddleware(http.HandlerFunc(authHandler.AddAddress)))
	mux.Handle("PUT /api/v1/user/addresses/{id}", middleware.AuthMiddleware(http.HandlerFunc(authHandler.UpdateAddress)))
	mux.Handle("DELETE /api/v1/user/addresses/{id}", middleware.AuthMiddleware(http.HandlerFunc(authHandler.DeleteAddress)))

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.GetProducts)
	mux.HandleFunc("GET /api/v1/products/{slug}", catalogHandler.GetProductBySlug)
	mux.HandleFunc("GET /api/v1/categories", catalogHandler.GetCategories)

	// Storefront settings (Public)
	mux.HandleFunc("GET /api/v1/settings/drop-countdown", settingsHandler.GetDropCountdown)
	mux.HandleFunc("GET /api/v1/settings/shipping-zones", settingsHandler.GetShippingZones)

	// Cart (session-scoped, guests included)
	mux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart)
	mux.HandleFunc("POST /api/v1/cart", cartHandler.AddToCart)
	mux.HandleFunc("DELETE /api/v1/cart/{productId}", cartHandler.RemoveFromCart)
	mux.HandleFunc("DELETE /api/v1/cart", cartHandler.ClearCart)
	mux.HandleFunc("POST /api/v1/cart/coupon", cartHandler.ApplyCoupon)
	mux.HandleFunc("DELETE /api/v1/cart/coupon", cartHandler.RemoveCoupon)

	// Wishlist (session-scoped)
	mux.HandleFunc("GET /api/v1/wishlist", wishlistHandler.GetWishlist)
	mux.HandleFunc("POST /api/v1/wishlist", wishlistHandler.AddToWishlist)
	mux.HandleFunc("DELETE /api/v1/wishlist/{productId}", wishlistHandler.RemoveFromWishlist)
	mux.HandleFunc("POST /api/v1/wishlist/{productId}/move-to-cart", wishlistHandler.MoveToCart)

	// Orders (Protected)
	mux.Handle("POST /api/v1/checkout", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.Checkout)))
	mux.Handle("GET /api/v1/orders", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetMyOrders)))
	mux.Handle("GET /api/v1/orders/{id}", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetMyOrder)))
	mux.Handle("POST /api/v1/returns", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.RequestReturn)))
	mux.Handle("GET /api/v1/returns", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetMyReturns)))

	// Uploads
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}
	mux.Handle("POST /api/v1/upload", adminOnly(uploadHandler.UploadFile))

	// Admin Catalog
	mux.Handle("GET /api/v1/admin/products", adminOnly(adminCatalogHandler.ListProducts))
	mux.Handle("GET /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.GetProduct))
	mux.Handle("POST /api/v1/admin/products", adminOnly(adminCatalogHandler.CreateProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.UpdateProduct))
	mux.Handle("PATCH /api/v1/admin/products/{id}/status", adminOnly(adminCatalogHandler.UpdateProductStatus))
	mux.Handle("DELETE /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.DeleteProduct))
	mux.Handle("POST /api/v1/admin/inventory/adjust", adminOnly(adminCatalogHandler.AdjustStock))
	mux.Handle("GET /api/v1/admin/categories", adminOnly(adminCatalogHandler.ListCategories))
	mux.Handle("POST /api/v1/admin/categories", adminOnly(adminCatalogHandler.CreateCategory))
	mux.Handle("PUT /api/v1/admin/categories/{id}", adminOnly(adminCatalogHandler.UpdateCategory))
	mux.Handle("DELETE /api/v1/admin/categories/{id}", adminOnly(adminCatalogHandler.DeleteCategory))

	// Admin Coupons
	mux.Handle("GET /api/v1/admin/coupons", adminOnly(adminCouponHandler.ListCoupons))
	mux.Handle("GET /api/v1/admin/coupons/{id}", adminOnly(adminCouponHandler.GetCoupon))
	mux.Handle("POST /api/v1/admin/coupons", adminOnly(adminCouponHandler.CreateCoupon))
	mux.Handle("PUT /api/v1/admin/coupons/{id}", adminOnly(adminCouponHandler.UpdateCoupon))
	mux.Handle("DELETE /api/v1/admin/coupons/{id}", adminOnly(adminCouponHandler.DeleteCoupon))

	// Admin Orders & Returns
	mux.Handle("GET /api/v1/admin/orders", adminOnly(adminOrderHandler.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", adminOnly(adminOrderHandler.GetOrder))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", adminOnly(adminOrderHandler.UpdateOrderStatus))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/payment-status", adminOnly(adminOrderHandler.UpdatePaymentStatus))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", adminOnly(adminOrderHandler.GetOrderHistory))
	mux.Handle("GET /api/v1/admin/returns", adminOnly(adminOrderHandler.ListReturns))
	mux.Handle("POST /api/v1/admin/returns/{id}/review", adminOnly(adminOrderHandler.ReviewReturn))
	mux.Handle("POST /api/v1/admin/returns/{id}/complete", adminOnly(adminOrderHandler.CompleteReturn))

	// Admin Settings
	mux.Handle("GET /api/v1/admin/settings/drop-countdown", adminOnly(adminSettingsHandler.GetDropCountdown))
	mux.Handle("PUT /api/v1/admin/settings/drop-countdown", adminOnly(adminSettingsHandler.SetDropCountdown))
	mux.Handle("GET /api/v1/admin/settings/shipping-zones", adminOnly(adminSettingsHandler.ListShippingZones))
	mux.Handle("POST /api/v1/admin/settings/shipping-zones", adminOnly(adminSettingsHandler.CreateShippingZone))
	mux.Handle("PATCH /api/v1/admin/settings/shipping-zones/{id}", adminOnly(adminSettingsHandler.UpdateShippingZone))
	mux.Handle("DELETE /api/v1/admin/settings/shipping-zones/{id}", adminOnly(adminSettingsHandler.DeleteShippingZone))
	mux.Handle("GET /api/v1/admin/users", adminOnly(adminSettingsHandler.ListUsers))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	addr := fmt.Sprintf(":%s", cfg.Port)

	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,
		100,
		time.Minute,
		3*time.Minute,
	)

	handler := middleware.SessionMiddleware(mux)
	handler = middleware.NewCORSMiddleware(cfg)(handler)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()
	cartManager.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
