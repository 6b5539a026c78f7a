package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/service"
	"taskboard/internal/storage"
	"taskboard/internal/store"
)

type App struct {
	cfg    config.Config
	redis  *redis.Client // nil on the file backend
	router *gin.Engine
	store  *store.Store
	users  *service.UserService
}

// New wires the storage backend (file by default, redis when configured),
// seeds the admin account, initializes the store scope and builds the
// router.
func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var (
		st       storage.Storage
		sessions auth.SessionStore
	)
	if cfg.UseRedis() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		st = storage.NewRedisStorage(rdb, logger)
		sessions = auth.NewRedisStore(rdb, cfg.Session.TTL.Duration())
	} else {
		fs, err := storage.NewFileStorage(cfg.Store.DataDir, logger)
		if err != nil {
			return nil, err
		}
		st = fs
		sessions = auth.NewMemoryStore(cfg.Session.TTL.Duration())
	}

	ctx := context.Background()

	a.users = service.NewUserService(st, logger)
	a.users.Init(ctx)
	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		if err := a.users.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
			a.closeRedis()
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	a.store = store.New(st, store.Options{
		Latency:       cfg.Store.Latency.Duration(),
		DefaultUserID: cfg.Store.DefaultUserID,
		Logger:        logger,
	})
	a.store.Init(ctx)

	a.router = newRouter(cfg, a.store, a.users, sessions)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	a.closeRedis()
	return nil
}

func (a *App) closeRedis() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, s *store.Store, users *service.UserService, sessions auth.SessionStore) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, s, users, sessions)
	return r
}
