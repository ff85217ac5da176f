package router

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"petconnect/internal/api/v1/handler"
	"petconnect/internal/config"
	"petconnect/internal/database"
	"petconnect/internal/middleware"
	"petconnect/internal/repository"
	"petconnect/internal/service"
	"petconnect/internal/storage"
)

// New wires the full request path: store, object storage, services, handlers
// and middleware. The returned pool is owned by the caller and closed on
// shutdown.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("database connection established")

	s3Client, err := storage.NewClient(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	images := storage.NewS3ImageStore(s3Client, cfg.S3Bucket, cfg.S3URL)

	validate := validator.New(validator.WithRequiredStructEnabled())

	// Billing stays nil without credentials; order creation then fails
	// closed with a 503.
	var razorpayClient *razorpay.Client
	if cfg.BillingConfigured() {
		razorpayClient = razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		logger.Info().Msg("payment gateway configured")
	} else {
		logger.Warn().Msg("payment credentials absent, billing disabled")
	}

	userRepo := repository.NewUserRepo(pool)
	petRepo := repository.NewPetRepo(pool)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, logger)
	petSvc := service.NewPetService(petRepo, userRepo, images, logger)
	billingSvc := service.NewBillingService(razorpayClient, logger)
	adminSvc := service.NewAdminService(userRepo, petRepo, logger)

	authHandler := handler.NewAuthHandler(authSvc, validate)
	petHandler := handler.NewPetHandler(petSvc, validate)
	userHandler := handler.NewUserHandler(authSvc, adminSvc, validate)
	billingHandler := handler.NewBillingHandler(billingSvc, validate)

	authMw := middleware.Auth(cfg.JWTSecret, logger)

	mux := http.NewServeMux()
	authHandler.RegisterRoutes(mux, authMw)
	petHandler.RegisterRoutes(mux, authMw)
	userHandler.RegisterRoutes(mux, authMw)
	billingHandler.RegisterRoutes(mux, authMw)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: cfg.AllowCredentials,
	})

	return middleware.Logger(logger)(c.Handler(mux)), pool, nil
}
