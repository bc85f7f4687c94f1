package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parleyhq/parley/internal/audio"
	"github.com/parleyhq/parley/internal/auth/session"
	"github.com/parleyhq/parley/internal/clock"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/conversation"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	"github.com/parleyhq/parley/internal/department"
	departmentdomain "github.com/parleyhq/parley/internal/department/domain"
	"github.com/parleyhq/parley/internal/observability"
	"github.com/parleyhq/parley/internal/recognition"
	"github.com/parleyhq/parley/internal/registry"
	"github.com/parleyhq/parley/internal/relay"
	sessionpkg "github.com/parleyhq/parley/internal/session"
	sessiondomain "github.com/parleyhq/parley/internal/session/domain"
	"github.com/parleyhq/parley/internal/text"
	"github.com/parleyhq/parley/internal/translation"
	"github.com/parleyhq/parley/internal/user"
	userdomain "github.com/parleyhq/parley/internal/user/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	observability.Module,
	registry.Module,
	clock.Module,
	session.Module,
	department.Module,
	user.Module,
	sessionpkg.Module,
	conversation.Module,
	text.Module,
	audio.Module,
	recognition.Module,
	translation.Module,
	relay.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, metrics *observability.Metrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(metricsMiddleware(metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	cookies       *session.Manager
	sessionSvc    sessiondomain.Service
	resolver      conversationdomain.Resolver
	relaySvc      relay.Service
	userSvc       userdomain.Service
	departmentSvc departmentdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Cookies       *session.Manager
	SessionSvc    sessiondomain.Service
	Resolver      conversationdomain.Resolver
	RelaySvc      relay.Service
	UserSvc       userdomain.Service
	DepartmentSvc departmentdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http"),
		cookies:       p.Cookies,
		sessionSvc:    p.SessionSvc,
		resolver:      p.Resolver,
		relaySvc:      p.RelaySvc,
		userSvc:       p.UserSvc,
		departmentSvc: p.DepartmentSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.POST("/authorization", s.handleLogin)
	api.GET("/langs", s.handleLanguages)

	authed := api.Group("")
	authed.Use(s.requireSession())
	{
		authed.POST("/logout", s.handleLogout)
		authed.GET("/session_exp", s.handleSessionExp)
		authed.POST("/close_other_sessions", s.handleCloseOthers)

		authed.POST("/conversation", s.handleJoinConversation)
		authed.GET("/conversation/:id/status", s.handleConversationStatus)
		authed.POST("/conversation/:id/lang", s.handleSetLanguage)
		authed.POST("/conversation/:id/utterance", s.handleSubmitUtterance)
		authed.GET("/conversation/:id/message", s.handlePullMessage)
		authed.GET("/conversation/:id/history", s.handleHistory)
		authed.POST("/conversation/:id/close", s.handleCloseConversation)
		authed.POST("/conversation/:id/questionnaire", s.handleQuestionnaire)
		authed.POST("/text/:id/fix", s.handleFixText)
		authed.GET("/audio/:id", s.handleGetAudio)
	}

	admin := api.Group("/admin")
	admin.Use(s.requireSession(), s.requireSuperuser())
	{
		admin.GET("/users", s.handleListUsers)
		admin.POST("/users", s.handleCreateUser)
		admin.PATCH("/users/:id", s.handleUpdateUser)
		admin.DELETE("/users/:id", s.handleDeleteUser)

		admin.GET("/departments", s.handleListDepartments)
		admin.POST("/departments", s.handleCreateDepartment)
		admin.PATCH("/departments/:id", s.handleUpdateDepartment)
		admin.DELETE("/departments/:id", s.handleDeleteDepartment)
	}
}
