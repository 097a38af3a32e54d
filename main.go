// Beverage Storefront - an online drinks shop built as a modular monolith.
//
// Modules:
//   - auth: accounts, bcrypt passwords, JWT access/refresh tokens
//   - catalog: products with Redis cache-aside reads
//   - cart: one cart per user with totals at current prices
//   - order: transactional checkout, order history, admin status updates
//   - review: one review per user and product, maintained rating aggregate
//   - notification: event log and live order updates over WebSocket
//   - api: Fiber HTTP surface with Redis rate limiting
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/example/beverage-storefront/config"
	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/middleware/ratelimit"
	"github.com/example/beverage-storefront/modules/api"
	"github.com/example/beverage-storefront/modules/auth"
	"github.com/example/beverage-storefront/modules/cache"
	"github.com/example/beverage-storefront/modules/cart"
	"github.com/example/beverage-storefront/modules/catalog"
	"github.com/example/beverage-storefront/modules/notification"
	"github.com/example/beverage-storefront/modules/order"
	"github.com/example/beverage-storefront/modules/review"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/moby/locker"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "online beverage storefront",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema and exit",
				Action: migrate,
			},
			{
				Name:  "create-admin",
				Usage: "create an admin account, or promote an existing one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Value: "Administrator", Usage: "display name"},
					&cli.StringFlag{Name: "email", Required: true, Usage: "login email"},
					&cli.StringFlag{Name: "password", Required: true, Usage: "login password", EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: createAdmin,
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase loads the configuration and opens a migrated database.
func openDatabase() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(database.Config{
		Driver: cfg.DB.Driver,
		DSN:    cfg.DB.DSN,
		Debug:  cfg.DB.Debug,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrate(_ *cli.Context) error {
	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	log.Println("Database schema is up to date")
	return nil
}

func createAdmin(c *cli.Context) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	authModule := auth.NewModule(db, jwtConfig(cfg))
	admin, created, err := authModule.Service().EnsureAdmin(c.Context, c.String("name"), c.String("email"), c.String("password"))
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	if created {
		log.Printf("Created admin %s (%s)", admin.Email, admin.ID)
	} else {
		log.Printf("Promoted existing account %s (%s) to admin", admin.Email, admin.ID)
	}
	return nil
}

func serve(c *cli.Context) error {
	log.Println("=== Beverage Storefront ===")

	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	store := database.NewStore(db)

	log.Printf("Configuration:")
	log.Printf("  Environment: %s", cfg.Env)
	log.Printf("  Database: %s", cfg.DB.Driver)
	log.Printf("  Redis Address: %s", cfg.Redis.Addr)
	log.Printf("  HTTP Port: %d", cfg.HTTPPort)

	logLevel := mono.LogLevelInfo
	if strings.EqualFold(cfg.LogLevel, "error") {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	cachePlugin := cache.NewPluginModule(cache.Config{
		Enabled:   cfg.Cache.Enabled,
		RedisAddr: cfg.Redis.Addr,
		Database:  cfg.Cache.Database,
		Prefix:    cfg.Cache.Prefix,
		TTL:       cfg.Cache.TTL,
	})
	if err := app.RegisterPlugin(cachePlugin, "cache"); err != nil {
		return fmt.Errorf("failed to register cache plugin: %w", err)
	}

	// cart edits and checkout serialize on the same per-user locks
	userLocks := locker.New()

	authModule := auth.NewModule(db, jwtConfig(cfg))
	catalogModule := catalog.NewModule(store)
	cartModule := cart.NewModule(store, userLocks)
	orderModule := order.NewModule(store, userLocks)
	reviewModule := review.NewModule(store)
	notificationModule := notification.NewModule()
	apiModule := api.NewModule(
		api.Config{
			Port:              cfg.HTTPPort,
			Development:       cfg.IsDevelopment(),
			IPPerMinute:       cfg.RateLimit.IPPerMinute,
			CheckoutPerMinute: cfg.RateLimit.CheckoutPerMinute,
		},
		newRateLimiter(c.Context, cfg),
		notificationModule,
		cachePlugin, authModule, catalogModule, cartModule, orderModule, reviewModule, notificationModule,
	)

	modules := []mono.Module{
		authModule,
		catalogModule,
		cartModule,
		orderModule,
		reviewModule,
		notificationModule,
		apiModule,
	}
	for _, module := range modules {
		if err := app.Register(module); err != nil {
			return fmt.Errorf("failed to register %s module: %w", module.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	printStartupInfo(cfg.HTTPPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	if err := database.Close(db); err != nil {
		log.Printf("Warning: failed to close database: %v", err)
	}
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
	return nil
}

// newRateLimiter connects the limiter to Redis. Without Redis every request
// is let through.
func newRateLimiter(ctx context.Context, cfg *config.Config) *ratelimit.Middleware {
	if !cfg.RateLimit.Enabled {
		log.Println("Rate limiting disabled")
		return ratelimit.NewMiddleware(nil)
	}

	client, err := ratelimit.Connect(ctx, cfg.Redis.Addr, cfg.RateLimit.Database)
	if err != nil {
		log.Printf("Warning: rate limiting disabled: %v", err)
		return ratelimit.NewMiddleware(nil)
	}
	return ratelimit.NewMiddleware(ratelimit.NewLimiter(client, "storefront:ratelimit:"))
}

func jwtConfig(cfg *config.Config) auth.JWTConfig {
	return auth.JWTConfig{
		SecretKey:            cfg.JWT.SecretKey,
		AccessTokenDuration:  cfg.JWT.AccessTTL,
		RefreshTokenDuration: cfg.JWT.RefreshTTL,
		Issuer:               cfg.JWT.Issuer,
	}
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("  GET    /health                           - Module health")
	log.Println("  POST   /api/v1/auth/register|login|refresh")
	log.Println("  GET    /api/v1/products[/:id]            - Catalog")
	log.Println("  GET    /api/v1/products/:id/reviews      - Reviews")
	log.Println("  GET    /api/v1/cart, POST /api/v1/cart/items")
	log.Println("  POST   /api/v1/orders                    - Checkout")
	log.Println("  GET    /api/v1/orders/mine               - Order history")
	log.Println("  GET    /api/v1/admin/stats|orders|users  - Back office")
	log.Printf("  WS     ws://localhost:%d/ws/orders?token=<access token>", port)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
