package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/heysheet/heysheet/internal/analytics"
	"github.com/heysheet/heysheet/internal/config"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	"github.com/heysheet/heysheet/internal/observability/logger"
	obsmetrics "github.com/heysheet/heysheet/internal/observability/metrics"
	submissiondomain "github.com/heysheet/heysheet/internal/submission/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func registerGin(log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	genID         *snowflake.Node
	collector     *analytics.Collector
	formSvc       formdomain.Service
	submissionSvc submissiondomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	GenID         *snowflake.Node
	Collector     *analytics.Collector
	FormSvc       formdomain.Service
	SubmissionSvc submissiondomain.Service
	Registry      *prometheus.Registry
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		genID:         p.GenID,
		collector:     p.Collector,
		formSvc:       p.FormSvc,
		submissionSvc: p.SubmissionSvc,
	}

	svc.registerPublicRoutes()
	svc.registerAPIRoutes()
	svc.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	s.engine.POST("/s/:slug", s.Submit)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.UserRequired())

	api.POST("/forms", s.CreateForm)
	api.GET("/forms", s.ListForms)
	api.GET("/forms/:id", s.GetFormByID)
	api.PATCH("/forms/:id", s.UpdateForm)
	api.DELETE("/forms/:id", s.DeactivateForm)

	api.GET("/forms/:id/submissions", s.ListSubmissions)
}
