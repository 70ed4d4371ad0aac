package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"punchin/internal/config"
	"punchin/internal/database"
	"punchin/internal/middleware"
	"punchin/internal/modules/booking"
	"punchin/internal/modules/catalog"
	jwtsvc "punchin/internal/pkg/jwt"
	"punchin/internal/pkg/logger"
	"punchin/internal/repository"
	"punchin/internal/repository/mongostore"
)

type stores struct {
	studios      booking.StudioRepository
	availability booking.AvailabilityRepository
	profiles     booking.ProfileRepository
	bookings     booking.BookingRepository
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("open stores", zap.Error(err))
	}
	defer st.close()

	locker, closeLocker := newLocker(ctx, cfg, zl)
	defer closeLocker()

	bookingService := booking.NewService(st.studios, st.availability, st.profiles, st.bookings, locker, zl, booking.Options{
		Currency:    cfg.BookingCurrency,
		MinDuration: cfg.BookingMinDuration,
		MaxDuration: cfg.BookingMaxDuration,
	})
	bookingHandler := booking.NewHandler(bookingService)
	catalogHandler := catalog.NewHandler(bookingService)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	submitLimiter := middleware.NewKeyedRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	studioCache := cache.New(cfg.StudioCacheTTL, 2*cfg.StudioCacheTTL)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.ErrorLogger(zl), middleware.CORS(cfg.CORSOrigins))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	{
		// public
		catalogHandler.RegisterRoutes(v1, middleware.Cache(studioCache, cfg.StudioCacheTTL))

		// protected
		protected := v1.Group("/", middleware.JWTAuth(j))
		bookingHandler.RegisterRoutes(protected, middleware.RateLimit(submitLimiter))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*stores, error) {
	if cfg.DBDriver == config.DriverMongo {
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		store := mongostore.New(client, cfg.MongoDB, cfg.BookingCurrency, zl)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return &stores{
			studios:      store,
			availability: store,
			profiles:     store,
			bookings:     store,
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					zl.Warn("mongo disconnect", zap.Error(err))
				}
			},
		}, nil
	}

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	return &stores{
		studios:      repository.NewStudioRepository(db),
		availability: repository.NewAvailabilityRepository(db, zl),
		profiles:     repository.NewProfileRepository(db),
		bookings:     repository.NewBookingRepository(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

// newLocker uses Redis when REDIS_ADDR is set, so several API instances share slot locks.
func newLocker(ctx context.Context, cfg *config.Config, zl *zap.Logger) (booking.Locker, func()) {
	if cfg.RedisAddr == "" {
		return booking.NewMemoryLocker(), func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		zl.Warn("redis unavailable, using in-process slot locks", zap.Error(err))
		_ = rdb.Close()
		return booking.NewMemoryLocker(), func() {}
	}
	return booking.NewRedisLocker(rdb, cfg.LockTTL), func() { _ = rdb.Close() }
}
