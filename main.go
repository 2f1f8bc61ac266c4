package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/storage"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=storefront port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("S3_BUCKET", "storefront-assets")
	viper.AutomaticEnv()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// --- Database ---
	db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database")
	}

	// --- Object storage ---
	uploader, err := storage.NewS3Uploader(storage.Config{
		Region:          viper.GetString("AWS_REGION"),
		AccessKeyID:     viper.GetString("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: viper.GetString("AWS_SECRET_ACCESS_KEY"),
		Bucket:          viper.GetString("S3_BUCKET"),
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize object storage")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Services ---
	tokenTTL := time.Duration(viper.GetInt("TOKEN_TTL_HOURS")) * time.Hour
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"), tokenTTL)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo)

	// --- HTTP app ---
	app := NewApp(authService, productService, orderService, userRepo, uploader)

	// --- Start HTTP server ---
	appPort := viper.GetString("APP_PORT")
	logrus.WithField("port", appPort).Info("starting server")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			logrus.WithError(err).Fatal("server failed to start")
		}
	}()

	<-quit
	logrus.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Error("error during shutdown")
	}
	logrus.Info("server stopped")
}

// NewApp assembles the fiber application: middleware, route groups, and the
// 404/500 envelopes.
func NewApp(
	authService *services.AuthService,
	productService *services.ProductService,
	orderService *services.OrderService,
	userRepo repositories.UserRepository,
	uploader storage.Uploader,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New())
	app.Use(logger.New())

	authRequired := middleware.AuthRequired(authService, userRepo)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api, authRequired, adminOnly)
	handlers.NewProductHandler(productService, uploader).RegisterRoutes(api)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, authRequired, adminOnly)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "E-commerce API with Authentication is running successfully!",
		})
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})

	return app
}
