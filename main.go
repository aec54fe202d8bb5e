package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"eventhub/internal/auth"
	"eventhub/internal/cart"
	"eventhub/internal/cart/cart_api"
	cart_db "eventhub/internal/cart/db"
	cartlock "eventhub/internal/cart/redis"
	"eventhub/internal/config"
	"eventhub/internal/database/migrations"
	"eventhub/internal/events"
	events_db "eventhub/internal/events/db"
	"eventhub/internal/events/event_api"
	"eventhub/internal/kafka"
	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/sse"
	"eventhub/internal/tickets"
	tickets_db "eventhub/internal/tickets/db"
	"eventhub/internal/tickets/qr"
	"eventhub/internal/tickets/ticket_api"
	"eventhub/internal/users"
	users_db "eventhub/internal/users/db"
	"eventhub/internal/users/user_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	if cfg.Database.DSN == "" {
		logger.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "PostgreSQL connection successful")
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting eventhub API initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	if os.Getenv("AUTO_MIGRATE") != "false" {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.RunMigrations(); err != nil {
			logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		logger.Info("DATABASE", "Schema migrations applied")
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		requiredTopics := []string{cfg.Kafka.Topics.CartUpdated, cfg.Kafka.Topics.TicketsPurchased}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.CartUpdated, cfg.Kafka.Topics.TicketsPurchased)
		defer producer.Close()
	} else {
		logger.Warn("KAFKA", "Kafka disabled, lifecycle events will not be published")
	}

	emitter := sse.NewPurchaseEventEmitter()
	qrGenerator := qr.NewGenerator(os.Getenv("QR_SECRET_KEY"))

	userService := users.NewService(&users_db.DB{Bun: bunDB}, cfg.Auth.MaxLoginFails, cfg.Auth.LockoutDuration)
	eventService := events.NewService(&events_db.DB{Bun: bunDB})
	ticketService := tickets.NewTicketService(&tickets_db.DB{Bun: bunDB})

	var cartPublisher cart.Publisher
	if producer != nil {
		cartPublisher = producer
	}
	cartService := cart.NewService(
		&cart_db.DB{Bun: bunDB},
		cartlock.NewLock(redisClient),
		cartPublisher,
		qrGenerator,
		emitter,
	)

	userHandler := user_api.NewHandler(userService, cfg.Auth, logger)
	eventHandler := event_api.NewHandler(eventService, emitter, logger)
	cartHandler := cart_api.NewHandler(cartService, logger)
	ticketHandler := ticket_api.NewHandler(ticketService, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Route("/api", func(r chi.Router) {
		r.Post("/users/signup", userHandler.Signup)
		r.Post("/auth/login", userHandler.Login)
		r.Post("/auth/logout", userHandler.Logout)
		r.Get("/events", eventHandler.ListEvents)
		r.Get("/events/{eventId}", eventHandler.GetEvent)
		r.Get("/tickets/count", ticketHandler.GetTotalTicketsCount)

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.JWTSecret))

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleHost))
				r.Post("/events", eventHandler.CreateEvent)
				r.Put("/events/{eventId}", eventHandler.UpdateEvent)
				r.Delete("/events/{eventId}", eventHandler.DeleteEvent)
				r.Get("/events/{eventId}/purchases/stream", eventHandler.StreamPurchases)
			})

			r.Route("/users/{userId}", func(r chi.Router) {
				r.Use(auth.RequireSelf)
				r.Post("/cart", cartHandler.AddToCart)
				r.Get("/cart", cartHandler.GetCart)
				r.Patch("/cart-item", cartHandler.UpdateCartItem)
				r.Delete("/cart-item", cartHandler.RemoveCartItem)
				r.Post("/purchase", cartHandler.PurchaseAll)
				r.Post("/purchase-single", cartHandler.PurchaseSingle)
				r.Get("/tickets", ticketHandler.GetTickets)
			})
		})
	})
	logger.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("eventhub API running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "eventhub API shutdown complete")
	}
}
