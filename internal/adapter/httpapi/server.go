// Package httpapi exposes the read-only query facade over the live
// estimate, forecast, and spot tables, plus user registration and the
// operational health/readiness/metrics endpoints. It never writes to any
// table the live engine owns.
package httpapi

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swellsync/swellsync/internal/domain"
)

// Store is the read surface the facade needs, plus user registration.
type Store interface {
	ListSpots(ctx context.Context) ([]domain.Spot, error)
	BaselinesBySpot(ctx context.Context) (map[string]domain.Forecast, error)
	LiveSnapshot(ctx context.Context) (domain.SystemStatus, map[string]domain.LiveEstimate, error)
	SaveUser(ctx context.Context, name, email string) (domain.User, error)
	Users(ctx context.Context) ([]domain.User, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server is the HTTP query facade.
type Server struct {
	app      *fiber.App
	addr     string
	store    Store
	ready    ReadinessChecker
	validate *validator.Validate
	logger   *slog.Logger
}

// NewServer builds the Fiber app with all routes and middleware.
func NewServer(addr string, store Store, ready ReadinessChecker, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "swellsync",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	s := &Server{
		app:      app,
		addr:     addr,
		store:    store,
		ready:    ready,
		validate: validator.New(),
		logger:   logger,
	}

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/healthz", s.handleHealth)
	app.Get("/readyz", s.handleReady)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/spots", s.handleSpots)
	api.Get("/forecasts", s.handleForecasts)
	api.Get("/live", s.handleLive)
	api.Post("/users", s.handleCreateUser)
	api.Get("/users", s.handleUsers)

	return s
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully drains connections within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the Fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

func (s *Server) handleReady(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func (s *Server) handleSpots(c *fiber.Ctx) error {
	spots, err := s.store.ListSpots(c.Context())
	if err != nil {
		s.logger.Error("list spots failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}
	return c.JSON(spots)
}

func (s *Server) handleForecasts(c *fiber.Ctx) error {
	forecasts, err := s.store.BaselinesBySpot(c.Context())
	if err != nil {
		s.logger.Error("read forecasts failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}
	return c.JSON(forecasts)
}

// liveMeta and liveSpot mirror the wire format the front end polls: wave
// height with two decimals and wind speed with one, both as strings.
type liveMeta struct {
	Timestamp         time.Time `json:"timestamp"`
	ActiveRobots      int       `json:"activeRobots"`
	GlobalReliability string    `json:"globalReliability"`
	UpdateFrequencyMs int       `json:"updateFrequencyMs"`
	SystemStatus      string    `json:"systemStatus"`
}

type liveSpot struct {
	WaveHeight  string  `json:"waveHeight"`
	WavePeriod  float64 `json:"wavePeriod"`
	WindSpeed   string  `json:"windSpeed"`
	Reliability string  `json:"reliability"`
}

type liveResponse struct {
	Meta  liveMeta            `json:"_meta"`
	Spots map[string]liveSpot `json:"spots"`
}

func (s *Server) handleLive(c *fiber.Ctx) error {
	status, estimates, err := s.store.LiveSnapshot(c.Context())
	if err != nil {
		s.logger.Error("read live snapshot failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	resp := liveResponse{
		Meta: liveMeta{
			Timestamp:         status.Timestamp,
			ActiveRobots:      status.ActiveAgents,
			GlobalReliability: status.GlobalReliability,
			UpdateFrequencyMs: status.UpdateFrequencyMs,
			SystemStatus:      status.Status,
		},
		Spots: make(map[string]liveSpot, len(estimates)),
	}
	for id, est := range estimates {
		resp.Spots[id] = liveSpot{
			WaveHeight:  strconv.FormatFloat(est.WaveHeight, 'f', 2, 64),
			WavePeriod:  est.WavePeriod,
			WindSpeed:   strconv.FormatFloat(est.WindSpeed, 'f', 1, 64),
			Reliability: est.Reliability,
		}
	}
	return c.JSON(resp)
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}

	user, err := s.store.SaveUser(c.Context(), req.Name, req.Email)
	if err != nil {
		s.logger.Error("save user failed", "email", req.Email, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	s.logger.Info("user registered", "email", user.Email)
	return c.JSON(fiber.Map{"success": true, "user": user})
}

func (s *Server) handleUsers(c *fiber.Ctx) error {
	users, err := s.store.Users(c.Context())
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}
	return c.JSON(users)
}
