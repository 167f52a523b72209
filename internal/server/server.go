package server

import (
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"golang.org/x/time/rate"

	"github.com/dudu/snapfilter/internal/pipeline"
	"github.com/dudu/snapfilter/internal/screenshot"
)

// Processor applies a filter to a frame in place
type Processor interface {
	Process(frame *gocv.Mat, filterName string) (pipeline.Result, error)
}

type ServerOption func(*Server) error

// Server exposes the filter pipeline over HTTP and websockets
type Server struct {
	engine      *fiber.App
	log         *logrus.Logger
	validator   *validator.Validate
	processor   Processor
	store       screenshot.Store
	limiter     *rate.Limiter
	jpegQuality int
	debug       bool
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		limiter:     rate.NewLimiter(rate.Inf, 0),
		jpegQuality: 85,
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if server.processor == nil {
		return nil, fmt.Errorf("frame processor is required")
	}
	if server.store == nil {
		return nil, fmt.Errorf("screenshot store is required")
	}

	server.registerRoutes()
	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithProcessor(processor Processor) ServerOption {
	return func(s *Server) error {
		s.processor = processor
		return nil
	}
}

func WithScreenshotStore(store screenshot.Store) ServerOption {
	return func(s *Server) error {
		s.store = store
		return nil
	}
}

// WithRateLimit caps processed frames per second across all clients.
// Zero disables the limit.
func WithRateLimit(framesPerSecond float64) ServerOption {
	return func(s *Server) error {
		if framesPerSecond < 0 {
			return fmt.Errorf("rate limit must not be negative: %v", framesPerSecond)
		}
		if framesPerSecond == 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return nil
		}
		burst := int(math.Ceil(framesPerSecond))
		s.limiter = rate.NewLimiter(rate.Limit(framesPerSecond), burst)
		return nil
	}
}

func WithJPEGQuality(quality int) ServerOption {
	return func(s *Server) error {
		if quality < 1 || quality > 100 {
			return fmt.Errorf("JPEG quality must be in [1, 100]: %d", quality)
		}
		s.jpegQuality = quality
		return nil
	}
}

// WithDebug includes internal error details in 500 responses
func WithDebug(debug bool) ServerOption {
	return func(s *Server) error {
		s.debug = debug
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.engine.Use(recover.New())
	s.engine.Use(s.requestLogger())

	s.engine.Get("/health", s.health)
	s.engine.Get("/filters", s.filters)
	s.engine.Post("/process_frame", s.processFrame)
	s.engine.Post("/screenshot", s.screenshot)

	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
	s.engine.Use("/ws", wsMiddleware)
	s.engine.Get("/ws/frames", websocket.New(s.handleFrames))
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.engine
}

// Run listens on addr until Shutdown is called
func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("Server listening")
	return s.engine.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.engine.ShutdownWithContext(ctx)
}
