package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"booking-service/internal/app"
	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	cal := app.NewCalendarClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.JWTSecret)
	if cal == nil {
		zl.Info("Google Calendar integration disabled, no credentials configured")
	}

	appInstance := app.New(pool, cal, zl)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// OAuth2 callback (must stay outside the auth middleware)
	router.GET("/oauth2callback", appInstance.GoogleOAuth2CallbackHandler)

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("", appInstance.CreateUserHandler)
			users.GET("/:username/availability", appInstance.AvailabilityHandler)
			users.GET("/:username/blocked-dates", appInstance.BlockedDatesHandler)
			users.POST("/:username/schedule", appInstance.CreateScheduleHandler)
		}

		// Owner routes live under /me: gin cannot mix a static segment
		// with the :username param at the same position under /users.
		authed := api.Group("", app.AuthMiddleware(cfg.JWTSecret, cfg.StaticTokens))
		{
			authed.POST("/me/time-intervals", appInstance.SetTimeIntervalsHandler)
			authed.PUT("/me/profile", appInstance.UpdateProfileHandler)
			authed.GET("/me/bookings", appInstance.ListBookingsHandler)
			authed.GET("/calendar/auth", appInstance.GoogleAuthHandler)
		}
	}

	server.Run(router, cfg.AppPort, zl)
}
