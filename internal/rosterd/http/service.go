package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/gate"
	"github.com/ysy950803/chatroster/internal/roster"
	"github.com/ysy950803/chatroster/internal/rosterd/conf"
)

type Service struct {
	conf   Config
	roster Roster
	gate   *gate.Gate

	router *gin.Engine
	server *http.Server

	// background refreshes live until Stop
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mcpServer           *server.MCPServer
	mcpSSEServer        *server.SSEServer
	mcpStreamableServer *server.StreamableHTTPServer
}

type Config interface {
	GetHTTPAddr() string
	GetPageSize() int
	GetResolver() conf.ResolverConfig
	SetResolver(conf.ResolverConfig) error
}

// Roster is what the service needs from the running manager.
type Roster interface {
	Store() *roster.Store
	Refresh(ctx context.Context) error
	Expansions() *roster.Expansions
}

// NewService builds the router. A nil gate leaves the API open. gin runs in
// debug mode only when zerolog is at debug level.
func NewService(conf Config, r Roster, g *gate.Gate) *Service {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("Failed to set trusted proxies")
	}

	router.Use(
		errors.RecoveryMiddleware(),
		errors.ErrorHandlerMiddleware(),
		gin.LoggerWithWriter(log.Logger, "/health"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		conf:   conf,
		roster: r,
		gate:   g,
		router: router,
		ctx:    ctx,
		cancel: cancel,
	}

	s.initMCPServer()
	s.initRouter()
	return s
}

func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:    s.conf.GetHTTPAddr(),
		Handler: s.router,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Failed to start HTTP server")
		}
	}()

	log.Info().Msg("Starting HTTP server on " + s.conf.GetHTTPAddr())
	return nil
}

func (s *Service) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    s.conf.GetHTTPAddr(),
		Handler: s.router,
	}

	log.Info().Msg("Starting HTTP server on " + s.conf.GetHTTPAddr())
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Service) Stop() error {
	s.cancel()
	s.wg.Wait()

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to shutdown HTTP server")
		return nil
	}

	log.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}
