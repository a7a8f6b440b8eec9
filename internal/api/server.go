package api

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"travelnosql/pkg/cache"
	"travelnosql/pkg/logger"
	"travelnosql/pkg/metrics"
	"travelnosql/pkg/utils"
)

// Server exposes the query layer: relational analytics on the source
// database and document lookups plus booking management on the target.
type Server struct {
	pg       *gorm.DB
	mongo    *mongo.Database
	cache    *cache.Cache
	validate *validator.Validate
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewServer(pg *gorm.DB, mongoDB *mongo.Database, c *cache.Cache, log logger.Logger, m *metrics.Metrics) *Server {
	return &Server{
		pg:       pg,
		mongo:    mongoDB,
		cache:    c,
		validate: validator.New(),
		log:      log,
		metrics:  m,
	}
}

// App assembles the fiber application with all routes registered.
func (s *Server) App(readTimeout, writeTimeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "travelnosql",
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	app.Use(cors.New())
	app.Use(s.observeRequests)

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", fiberlogger.New())
	v1 := api.Group("/v1")

	analytics := v1.Group("/analytics")
	analytics.Get("/flight-operations", s.FlightOperations)
	analytics.Get("/route-performance", s.RoutePerformance)
	analytics.Get("/passenger-demand", s.PassengerDemand)
	analytics.Get("/revenue", s.RevenueAnalysis)
	analytics.Get("/resource-planning", s.ResourcePlanning)
	analytics.Get("/advanced-metrics", s.AdvancedMetrics)
	analytics.Get("/document-summary", s.DocumentSummary)

	bookings := v1.Group("/bookings")
	bookings.Get("/", s.ListBookings)
	bookings.Get("/:bookRef", s.GetBooking)
	bookings.Post("/", s.CreateBooking)
	bookings.Put("/:bookRef", s.UpdateBooking)
	bookings.Delete("/:bookRef", s.DeleteBooking)

	flights := v1.Group("/flights")
	flights.Get("/", s.ListFlights)
	flights.Get("/:flightId", s.GetFlight)

	aircrafts := v1.Group("/aircrafts")
	aircrafts.Get("/", s.ListAircrafts)
	aircrafts.Get("/:code", s.GetAircraft)

	airports := v1.Group("/airports")
	airports.Get("/", s.ListAirports)
	airports.Get("/:code", s.GetAirport)

	return app
}

// observeRequests records request counts and latency per route pattern.
func (s *Server) observeRequests(c *fiber.Ctx) error {
	if s.metrics == nil {
		return c.Next()
	}
	start := time.Now()
	err := c.Next()

	path := c.Route().Path
	s.metrics.HTTPRequests.WithLabelValues(
		c.Method(), path, strconv.Itoa(c.Response().StatusCode()),
	).Inc()
	s.metrics.HTTPDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	return err
}
