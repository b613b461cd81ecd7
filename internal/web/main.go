// Package web assembles the fiber application serving the JSON API.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	fiberlogger "github.com/pharmadesk/pharmadesk/internal/logger/adapter/fiber"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/login"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/logout"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/profile"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/rbac/assignment"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/rbac/check"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/rbac/permission"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/rbac/role"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/register"
	authmiddleware "github.com/pharmadesk/pharmadesk/internal/web/middleware/auth"
	"github.com/pharmadesk/pharmadesk/internal/web/session"
)

// HealthPath is the path of the check alive endpoint.
const HealthPath = "/healthz"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the web service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the check alive endpoint answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, issuer *auth.TokenIssuer, sessions *session.Revocations) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if issuer == nil || sessions == nil {
		panic("token issuer and sessions cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			BodyLimit:      cfg.Webserver.BodyLimit,
			ErrorHandler:   errorHandler,
		},
	)

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	accessLog := fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: HealthPath,
		UserID: func(c *fiber.Ctx) (uint64, bool) {
			if p := auth.PrincipalFromContext(c); p != nil {
				return p.ID, true
			}

			return 0, false
		},
	}
	app.Use(fiberlogger.New(accessLog))

	// the access log reads the principal after the chain returned, so it sees what this sets
	app.Use(authmiddleware.New(authmiddleware.Config{DB: db, Issuer: issuer, Sessions: sessions}))

	authService := auth.NewService(db)

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
		db:           db,
		authService:  authService,
	}
	service.alive.Store(true)

	app.Get(HealthPath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("ok")
	})

	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// init handlers (they register their own routes with permission checks)
	if err := login.Handler.Init(app, cfg, db, authService, issuer); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg, sessions)
	register.Handler.Init(app, cfg, db, authService, issuer)
	profile.Handler.Init(app, cfg, db, issuer, sessions)
	permission.Handler.Init(app, cfg, db, authService)
	role.Handler.Init(app, cfg, db, authService)
	assignment.Handler.Init(app, cfg, db, authService)
	check.Handler.Init(app, cfg, db, authService)

	return service
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(handler.ErrorResponse{Error: fiberErr.Message})
	}

	return handler.Error(c, err)
}
