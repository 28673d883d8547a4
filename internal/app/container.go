package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/meeting-scheduler/internal/api"
	"github.com/nekogravitycat/meeting-scheduler/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler/internal/booking"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction       bool
	ProdOrigins        string
	DBPool             *pgxpool.Pool
	JWTSecret          string
	JWTIssuer          string
	RateLimitPerMinute int
	SlotsAllRanges     bool
	// Clock overrides time.Now for booking rules.
	Clock func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
	ConfirmLimiter *api.RateLimiter
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	var jwtOpts []auth.JWTOption
	if cfg.JWTIssuer != "" {
		jwtOpts = append(jwtOpts, auth.WithIssuer(cfg.JWTIssuer))
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, jwtOpts...)
	confirmLimiter := api.NewRateLimiter(cfg.RateLimitPerMinute)

	// Availability Module
	availRepo := availability.NewPgxRepository(cfg.DBPool)
	availService := availability.NewService(availRepo)

	// Booking Module
	bookingOpts := []booking.ServiceOption{booking.WithAllRanges(cfg.SlotsAllRanges)}
	if cfg.Clock != nil {
		bookingOpts = append(bookingOpts, booking.WithClock(cfg.Clock))
	}
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, availService, bookingOpts...)

	// API Router Config
	routerParams := api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		AvailabilityService: availService,
		BookingService:      bookingService,
		JWTManager:          jwtManager,
		ConfirmLimiter:      confirmLimiter,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
		ConfirmLimiter: confirmLimiter,
	}
}
