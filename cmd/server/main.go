// @title         sitebase auth API
// @version       1.0
// @description   Authentication subsystem of the sitebase web platform: registration, login, session cookies and profile management over a schema-described table store.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/akorchemkin/sitebase/api/http"
	"github.com/akorchemkin/sitebase/api/http/handlers"
	_ "github.com/akorchemkin/sitebase/docs"
	"github.com/akorchemkin/sitebase/pkg/auth"
	"github.com/akorchemkin/sitebase/pkg/config"
	"github.com/akorchemkin/sitebase/pkg/health"
	"github.com/akorchemkin/sitebase/pkg/health/checkers"
	"github.com/akorchemkin/sitebase/pkg/lock"
	"github.com/akorchemkin/sitebase/pkg/security/jwt"
	"github.com/akorchemkin/sitebase/pkg/security/password"
	"github.com/akorchemkin/sitebase/pkg/tablestore"
	"github.com/akorchemkin/sitebase/pkg/tablestore/memory"
	pgstore "github.com/akorchemkin/sitebase/pkg/tablestore/postgres"
)

func main() {
	app := fiber.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Pick the table store backend.
	var store tablestore.Store
	var readinessChecks []health.Checker
	switch cfg.StoreBackend {
	case "http":
		if cfg.StoreBaseURL == "" {
			log.Fatal("STORE_BASE_URL is required for the http store backend")
		}
		store = tablestore.NewHTTPStore(cfg.StoreBaseURL, cfg.StoreAPIKey)
	case "postgres":
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL is required for the postgres store backend")
		}
		pg, err := pgstore.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres store: %v", err)
		}
		defer pg.Close()
		if _, err := pg.EnsureTable(context.Background(), tablestore.UsersTableName); err != nil {
			log.Fatalf("ensure users table: %v", err)
		}
		store = pg
		readinessChecks = append(readinessChecks, checkers.NewPostgresChecker(pg.Pool()))
	case "memory":
		store = memory.New(tablestore.UsersTableName)
	default:
		log.Fatalf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	readinessChecks = append(readinessChecks, checkers.NewStoreChecker(store))

	// Registration lock: in-process by default, Redis when configured.
	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		locker = lock.NewRedisLocker(rdb)
		log.Printf("registration lock backed by redis at %s", cfg.RedisAddr)
	}

	// Wire dependencies
	storeClient := tablestore.NewClient(store)
	issuer := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	authUC := auth.NewService(storeClient, password.NewBcryptHasher(), issuer, locker)
	authHandler := handlers.NewAuthHandler(authUC, cfg.SessionTTL, cfg.Production())

	readiness := health.NewService(readinessChecks...)
	healthHandler := handlers.NewHealthHandler(readiness)

	authMW := jwt.NewAuthMiddleware(issuer)

	// Register routes
	httpapi.Register(app, authHandler, healthHandler, authMW)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	log.Printf("HTTP server listening on :%s (store backend: %s)", cfg.Port, cfg.StoreBackend)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
