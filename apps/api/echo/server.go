package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/malipo/core"
	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        *user.Service
		Engine         *fee.Engine
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps   ServerDeps
		app    *echo.Echo
		errCh  chan error
		shutCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:   deps,
		app:    echo.New(),
		errCh:  make(chan error, 1),
		shutCh: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerAuthAPI(v1, jwt, conf, s.deps.UserSvc)
	registerFeeAPI(v1, jwt, s.deps.Engine)
}

func (s *server) Start() {
	signal.Notify(s.shutCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
			s.errCh <- err
		}
	}()
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Errors() <-chan error { return s.errCh }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutCh }

// signalShutdown lets the error handler trigger a graceful shutdown when an
// unrecoverable error is caught.
func (s *server) signalShutdown() {
	s.shutCh <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Malipo API!")
}
