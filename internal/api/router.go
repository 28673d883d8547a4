package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-scheduler/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	availHttp "github.com/nekogravitycat/meeting-scheduler/internal/availability/http"
	"github.com/nekogravitycat/meeting-scheduler/internal/booking"
	bookingHttp "github.com/nekogravitycat/meeting-scheduler/internal/booking/http"
)

// Config holds the dependencies required to build the router.
type Config struct {
	IsProduction        bool
	ProdOrigins         string
	AvailabilityService availability.Service
	BookingService      booking.Service
	JWTManager          *auth.JWTManager
	ConfirmLimiter      *RateLimiter
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: Request-scoped zerolog logger and access log.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	if origins := allowedOrigins(cfg.IsProduction, cfg.ProdOrigins); len(origins) > 0 {
		config.AllowOrigins = origins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	config.ExposeHeaders = []string{requestIDHeader}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	limiter := cfg.ConfirmLimiter
	if limiter == nil {
		limiter = NewRateLimiter(10)
	}

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	availHandler := availHttp.NewHandler(cfg.AvailabilityService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	root := r.Group("")
	{
		availHttp.RegisterRoutes(root, availHandler, authMiddleware)
		bookingHttp.RegisterRoutes(root, bookingHandler, authMiddleware, limiter.Middleware())
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{"http://localhost:3000", "http://localhost:8081"}
	}
	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
