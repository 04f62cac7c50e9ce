package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/antarn88/userserver/internal/auth"
	"github.com/antarn88/userserver/internal/cache"
	"github.com/antarn88/userserver/internal/config"
	"github.com/antarn88/userserver/internal/domain/user"
	"github.com/antarn88/userserver/internal/http/handlers"
	"github.com/antarn88/userserver/internal/http/middlewares"
	"github.com/antarn88/userserver/internal/observability"
	"github.com/antarn88/userserver/internal/repo/memory"
	"github.com/antarn88/userserver/internal/repo/postgres"
	"github.com/antarn88/userserver/internal/security"
	"github.com/antarn88/userserver/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, cfg config.Config, pool *pgxpool.Pool, prom *observability.Prom) (*gin.Engine, error) {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("userserver"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up the store; without a pool the in-memory one keeps local
	// runs working
	var store service.Store

	if pool != nil {
		store = postgres.NewUsersRepo(pool, prom)
	} else {
		store = memory.NewUsersRepo()
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)

	authService, err := service.NewAuth(store, hasher, issuer)

	if err != nil {
		return nil, err
	}

	directory := service.NewDirectory(store, hasher)

	profileCache := cache.New[user.Profile](30 * time.Second)

	authHandler := handlers.NewAuthHandler(authService, prom)
	usersHandler := handlers.NewUsersHandler(directory, profileCache)

	authRequired := middlewares.NewAuthMiddleware(issuer).RequireAuth()

	r.POST("/auth/login", authHandler.Login)
	r.POST("/users", usersHandler.CreateUser)

	users := r.Group("/users", authRequired)
	users.GET("", usersHandler.ListUsers)
	users.GET("/by-email", usersHandler.GetUserByEmail)
	users.GET("/:id", usersHandler.GetUserByID)
	users.PUT("/:id", usersHandler.UpdateUser)
	users.DELETE("/:id", usersHandler.DeleteUser)

	return r, nil
}
