package main // Entry point package

import (
	"context"
	"log" // startup and fatal errors, before the echo logger is configured
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/canteen-preorder/internal/config"
	"github.com/iliyamo/canteen-preorder/internal/database"
	"github.com/iliyamo/canteen-preorder/internal/handler"
	"github.com/iliyamo/canteen-preorder/internal/middleware"
	"github.com/iliyamo/canteen-preorder/internal/queue"
	"github.com/iliyamo/canteen-preorder/internal/router"
	"github.com/iliyamo/canteen-preorder/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	glog.SetLevel(logLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unreachable: rate limiting and meal cache disabled")
	}
	cacheCfg := config.LoadCacheConfig().WithPrefix("meals")

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	requireAuth := middleware.JWTAuth(verifier)
	admin := []echo.MiddlewareFunc{requireAuth, middleware.RequireScope(cfg.Auth.AdminScopes...)}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.Queue.Enabled {
		events = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name)
	}
	if cfg.Queue.ConsumerEnabled {
		go func() {
			if err := queue.StartOrderConsumer(ctx, cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.LogPath); err != nil && ctx.Err() == nil {
				log.Printf("order consumer stopped: %v", err)
			}
		}()
	}

	clock := service.SystemClock(cfg.Location)
	users := service.NewUserService(db, cfg.BcryptCost, clock)
	meals := service.NewMealService(db)
	orders := service.NewOrderService(db, clock, events)
	auth := service.NewAuthService(db, service.AuthSettings{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.Auth.LocalIssuer,
		Audience: cfg.Auth.Audience,
		TTLMin:   cfg.AccessTTLMin,
	})

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			glog.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth), requireAuth)
	router.RegisterUsers(e, handler.NewUserHandler(users), admin...)
	router.RegisterMeals(e, handler.NewMealHandler(meals), router.MealMiddleware{
		Cache:      middleware.NewRedisCache(cacheCfg, rdb),
		Invalidate: middleware.InvalidateCache(cacheCfg, rdb),
		Admin:      admin,
	})
	router.RegisterOrders(e, handler.NewOrderHandler(orders))

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()
	if err := e.Start(addr); err != nil && ctx.Err() == nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

// newVerifier accepts locally issued HS256 tokens when a secret is set and
// identity provider tokens when AUTH_DOMAIN is set.  Each kind must carry
// its own issuer.
func newVerifier(ctx context.Context, cfg config.Config) (*middleware.Verifier, error) {
	var remote jwt.Keyfunc
	var methods []string
	if cfg.Auth.Domain != "" {
		var err error
		if remote, err = middleware.RemoteKeyfunc(ctx, cfg.Auth.JWKSURL()); err != nil {
			return nil, err
		}
		methods = append(methods, cfg.Auth.Algorithms...)
	}
	if cfg.JWTSecret != "" {
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	issuers := middleware.Issuers{Local: cfg.Auth.LocalIssuer, Remote: cfg.Auth.Issuer}
	return middleware.NewVerifier(middleware.CompositeKeyfunc(cfg.JWTSecret, remote), methods, cfg.Auth.Audience, issuers), nil
}

func logLevel(s string) glog.Lvl {
	switch s {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	}
	return glog.INFO
}
