package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tripmarket/internal/cache"
	"tripmarket/internal/config"
	"tripmarket/internal/database"
	"tripmarket/internal/middleware"
	"tripmarket/internal/modules/auth"
	"tripmarket/internal/modules/booking"
	"tripmarket/internal/modules/catalog"
	"tripmarket/internal/modules/payment"
	"tripmarket/internal/notification"
	jwtsvc "tripmarket/internal/pkg/jwt"
	"tripmarket/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := notification.NewHub()
	defer hub.Close()
	sender := notification.NewSender(hub)
	wsHandler := notification.NewHandler(hub)

	calCache := cache.NewCalendarCache(config.NewRedisClient(), cfg.CalendarTTL)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(packageRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingService := booking.NewService(bookingRepo, packageRepo, sender, calCache)
	bookingHandler := booking.NewHandler(bookingService)

	paymentService := payment.NewService(paymentRepo, bookingRepo, sender, cfg.PaymentSecret, log.Printf)
	paymentHandler := payment.NewHandler(paymentService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		bookingHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterWebhookRoutes(v1)

		// authenticated
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
			wsHandler.RegisterRoutes(protected)

			vendor := protected.Group("/")
			vendor.Use(middleware.VendorOnly())
			{
				catalogHandler.RegisterVendorRoutes(vendor)
			}
		}
	}

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
