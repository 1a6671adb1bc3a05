package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	"github.com/thrivekit/thrivekit/internal/config"
	implementationdomain "github.com/thrivekit/thrivekit/internal/implementation/domain"
	obslogger "github.com/thrivekit/thrivekit/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

type Server struct {
	cfg        config.Config
	log        *zap.Logger
	billingSvc billingdomain.Service
	implSvc    implementationdomain.Service
}

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	BillingSvc billingdomain.Service
	ImplSvc    implementationdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		billingSvc: p.BillingSvc,
		implSvc:    p.ImplSvc,
	}
}

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(obslogger.GinMiddleware(log))
	engine.Use(ErrorHandlingMiddleware())
	return engine
}

func RegisterRoutes(engine *gin.Engine, s *Server) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	{
		v1.POST("/webhooks/billing", s.HandleBillingWebhook)

		v1.POST("/implementations", s.CreateImplementation)
		v1.GET("/implementations/:id", s.GetImplementation)
		v1.PATCH("/implementations/:id", s.UpdateImplementation)
	}
}

func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
