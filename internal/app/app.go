// Package app assembles repositories, services and handlers into an echo server.
package app

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"prioritytracker/internal/auth"
	"prioritytracker/internal/cache"
	"prioritytracker/internal/config"
	"prioritytracker/internal/handler"
	"prioritytracker/internal/repository"
	"prioritytracker/internal/router"
	"prioritytracker/internal/seed"
	"prioritytracker/internal/service"
)

// New wires every layer on top of an open database. cacheClient may be nil.
func New(cfg *config.Config, gormDB *gorm.DB, cacheClient *cache.Client, log zerolog.Logger) *echo.Echo {
	loc := cfg.Location()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	initiativeRepo := repository.NewInitiativeRepository(gormDB)
	priorityRepo := repository.NewPriorityRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(userRepo, priorityRepo, cacheClient)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	initiativeService := service.NewInitiativeService(initiativeRepo, priorityRepo, cacheClient)
	priorityService := service.NewPriorityService(priorityRepo, userRepo, initiativeRepo, loc)
	analyticsService := service.NewAnalyticsService(priorityRepo, userRepo, initiativeRepo, loc)

	guard := auth.Guard(auth.GuardConfig{
		JWT:   jwtService,
		Store: tokenStore,
		Users: userService,
	})

	e := echo.New()
	router.Register(e, cfg, log, guard, router.Handlers{
		Auth:        handler.NewAuthHandler(authService, userService, jwtService, cfg.CookieSecure),
		Users:       handler.NewUserHandler(userService),
		Initiatives: handler.NewInitiativeHandler(initiativeService),
		Priorities:  handler.NewPriorityHandler(priorityService, loc),
		Analytics:   handler.NewAnalyticsHandler(analyticsService, loc),
		Weeks:       handler.NewWeekHandler(loc),
		Seed:        handler.NewSeedHandler(seed.New(userRepo, initiativeRepo, log), cfg.Admin),
	})
	return e
}
