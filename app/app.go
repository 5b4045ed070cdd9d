package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopwave/config"
	"shopwave/controllers"
	"shopwave/handler"
	"shopwave/libs"
	"shopwave/middleware"
	"shopwave/repositories"
	"shopwave/routes"
	"shopwave/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// App holds the router and every long lived dependency behind it.
type App struct {
	Router *gin.Engine
	Carts  *services.CartService
	Orders *services.OrderService

	logger *zap.Logger
	db     *pgxpool.Pool
	mongo  *mongo.Database
	redis  *redis.Client
	rabbit *libs.ChannelPool
}

// New connects the stores and wires the HTTP surface. Postgres and Mongo
// are required; redis, cloudinary, SMTP and RabbitMQ are optional.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	auth, err := middleware.NewAuthenticator(middleware.AuthConfig{
		Secret:       cfg.AuthJWTSecret,
		PublicKeyPEM: cfg.AuthJWTPublicKey,
		CookieName:   cfg.AuthCookieName,
		AdminEmails:  cfg.AdminEmails,
	})
	if err != nil {
		return nil, err
	}

	policy := services.ShippingPolicyByName(cfg.ShippingPolicy)

	if a.db, err = config.ConnectDB(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if a.mongo, err = config.ConnectMongo(ctx, cfg, logger); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.redis = config.ConnectRedis(ctx, cfg, logger)

	productRepo := repositories.NewProductRepository(a.mongo)
	userDataRepo := repositories.NewUserDataRepository(a.mongo)
	if err := productRepo.EnsureIndexes(ctx); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("product indexes: %w", err)
	}
	if err := userDataRepo.EnsureIndexes(ctx); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("user data indexes: %w", err)
	}
	orderRepo := repositories.NewOrderRepository(a.db)
	customerRepo := repositories.NewCustomerRepository(a.db)
	productCache := repositories.NewProductCache(a.redis, cfg.ProductCacheTTL, logger)

	var images services.ImageStore
	uploader, err := libs.NewImageUploader(libs.CloudinaryConfig{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
		MaxSize:   cfg.MaxUploadSize,
	})
	if err != nil {
		logger.Warn("image uploads disabled", zap.Error(err))
	} else {
		images = uploader
	}

	var mailer services.OrderMailer
	if m, err := libs.NewMailer(libs.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}); err != nil {
		logger.Warn("order confirmation mail disabled", zap.Error(err))
	} else {
		mailer = m
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		pool, err := libs.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQQueue, cfg.ChannelPoolSize, logger)
		if err != nil {
			logger.Warn("order events disabled", zap.Error(err))
		} else {
			a.rabbit = pool
			publisher = libs.NewPublisher(pool)
		}
	}

	productSvc := services.NewProductService(productRepo, productCache, images, logger)
	a.Carts = services.NewCartService(userDataRepo, services.NewProductCatalog(productRepo, logger), services.CartServiceConfig{
		Policy:      policy,
		SaveTimeout: cfg.CartSaveTimeout,
		IdleTTL:     cfg.CartIdleTTL,
	}, logger)
	a.Orders = services.NewOrderService(a.Carts, orderRepo, publisher, mailer, logger)

	checks := map[string]handler.Pinger{
		"postgres": orderRepo,
		"mongo":    productRepo,
	}
	if a.redis != nil {
		checks["redis"] = productCache
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Router = gin.New()
	a.Router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORSMiddleware(cfg.OriginURL))
	a.Router.MaxMultipartMemory = cfg.MaxUploadSize

	routes.SetupRoutes(a.Router, routes.Controllers{
		Auth:      auth,
		Health:    handler.NewHealth(checks),
		Cart:      controllers.NewCartController(a.Carts, productSvc),
		Products:  controllers.NewProductController(productSvc),
		Orders:    controllers.NewOrderController(a.Orders),
		Customers: controllers.NewCustomerController(services.NewCustomerService(customerRepo)),
		UserData:  controllers.NewUserDataController(services.NewUserDataService(userDataRepo)),
		Dashboard: controllers.NewDashboardController(services.NewDashboardService(orderRepo, productSvc)),
	})

	logger.Info("application ready",
		zap.String("env", cfg.AppEnv),
		zap.String("shipping_policy", policy.Name()),
		zap.Bool("cache", a.redis != nil),
		zap.Bool("uploads", images != nil),
		zap.Bool("mail", mailer != nil),
		zap.Bool("events", publisher != nil))
	return a, nil
}

// Close drains pending cart saves and order notifications, then releases
// the connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Carts != nil {
		if err := a.Carts.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Orders != nil {
		if err := a.Orders.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.rabbit != nil {
		a.rabbit.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.mongo != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Client().Disconnect(disconnectCtx); err != nil {
			errs = append(errs, fmt.Errorf("close mongo: %w", err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	return errors.Join(errs...)
}
