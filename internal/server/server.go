package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farellandr/tixflow/config"
	"github.com/farellandr/tixflow/internal/applog"
	"github.com/farellandr/tixflow/internal/handlers"
	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/farellandr/tixflow/internal/lock"
	"github.com/farellandr/tixflow/internal/middleware"
	"github.com/farellandr/tixflow/internal/notify"
	"github.com/farellandr/tixflow/internal/payment"
	"github.com/farellandr/tixflow/internal/render"
	"github.com/farellandr/tixflow/internal/repositories"
	"github.com/farellandr/tixflow/internal/services"
	"github.com/farellandr/tixflow/internal/tickets"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Catalog *handlers.CatalogHandler
	Orders  *handlers.OrderHandler
}

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	logger := applog.New(cfg.Debug)

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	xenditClient, err := config.InitXenditClient(cfg.Xendit)
	if err != nil {
		return err
	}

	ticketRepo := repositories.NewTicketRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	userRepo := repositories.NewUserRepository(db)
	discountRepo := repositories.NewDiscountRepository(db)

	issuer := tickets.NewIssuer(cfg.QRSecret)

	orderService := services.NewOrderService(services.OrderServiceProperty{
		Logger: logger,
		Timeouts: services.Timeouts{
			Order:   cfg.Timeouts.Order,
			Payment: cfg.Timeouts.Payment,
			Render:  cfg.Timeouts.Render,
			Mail:    cfg.Timeouts.Mail,
		},
		Payments:  payment.NewXenditProvider(xenditClient),
		Tickets:   ticketRepo,
		Orders:    orderRepo,
		Events:    eventRepo,
		Users:     userRepo,
		Discounts: discountRepo,
		Issuer:    issuer,
		Renderer:  render.NewRenderer(issuer),
		Notifier:  notify.NewDispatcher(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From),
		Locker:    lock.NewRedisLocker(redisClient, cfg.Timeouts.LockTTL),
	})
	catalogService := services.NewCatalogService(logger, eventRepo, ticketRepo, discountRepo)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)

	router := NewRouter(logger, cfg, Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Catalog: handlers.NewCatalogHandler(catalogService),
		Orders:  handlers.NewOrderHandler(orderService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Timeouts.Order + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server startup failed: %w", err)
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

func NewRouter(logger *logrus.Logger, cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery(), middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(func(c *gin.Context) {
		helpers.RespondWithError(c, http.StatusNotFound, "Route not found.")
	})

	setupRoutes(r, cfg.JWTSecret, h)
	return r
}

func setupRoutes(r *gin.Engine, jwtSecret string, h Handlers) {
	public := r.Group("/v1")
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", h.Catalog.ListEvents)
			eventPublic.GET("/:id", h.Catalog.GetEvent)
		}
		public.GET("/tickets/:id", h.Catalog.GetTicketType)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware(jwtSecret))
	{
		protected.GET("/profile", h.Auth.Profile)
		protected.POST("/events", h.Catalog.CreateEvent)
		protected.POST("/tickets", h.Catalog.CreateTicketType)

		discounts := protected.Group("/discounts")
		{
			discounts.POST("", h.Catalog.CreateDiscount)
			discounts.POST("/applications", h.Catalog.ApplyDiscounts)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("/create-order", h.Orders.CreateOrder)
			orders.GET("", h.Orders.ListOrders)
			orders.GET("/:id", h.Orders.GetOrder)
			orders.GET("/order-by-qr/:qrCodeId", h.Orders.GetOrderByQR)
			orders.POST("/update-ticket-used", h.Orders.RedeemTicket)
			orders.POST("/:id/resend", h.Orders.ResendTickets)
		}
	}
}
