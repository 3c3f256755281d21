package server

import (
	"log"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"neuroviz-server/internal/bootstrap"
	"neuroviz-server/internal/config"
	"neuroviz-server/internal/pkg/serverutils"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // command bodies are small
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-State-Secret",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://%s:%s", s.container.Pairing.IP, s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	secret := serverutils.SecretMiddleware(c.Pairing.Secret)

	c.StateController.RegisterRoutes(app, secret)
	c.SessionController.RegisterRoutes(app, secret)
	c.PresetController.RegisterRoutes(app, secret)
	c.ExperimentController.RegisterRoutes(app, secret)
	c.ResultController.RegisterRoutes(app, secret)

	// Pairing and the parameter catalog are how a client joins; open.
	c.PairingController.RegisterRoutes(app)
	c.ParameterController.RegisterRoutes(app)

	c.EventHandler().RegisterRoutes(app)
}
