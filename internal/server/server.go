package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/referralhub/internal/admission"
	admissiondomain "github.com/smallbiznis/referralhub/internal/admission/domain"
	"github.com/smallbiznis/referralhub/internal/audit"
	"github.com/smallbiznis/referralhub/internal/auth"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/internal/authorization"
	"github.com/smallbiznis/referralhub/internal/config"
	"github.com/smallbiznis/referralhub/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/referralhub/internal/dashboard/domain"
	"github.com/smallbiznis/referralhub/internal/intention"
	intentiondomain "github.com/smallbiznis/referralhub/internal/intention/domain"
	"github.com/smallbiznis/referralhub/internal/member"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	"github.com/smallbiznis/referralhub/internal/notification"
	"github.com/smallbiznis/referralhub/internal/observability"
	obsmiddleware "github.com/smallbiznis/referralhub/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/referralhub/internal/observability/metrics"
	obstracing "github.com/smallbiznis/referralhub/internal/observability/tracing"
	"github.com/smallbiznis/referralhub/internal/ratelimit"
	"github.com/smallbiznis/referralhub/internal/referral"
	referraldomain "github.com/smallbiznis/referralhub/internal/referral/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	authorization.Module,
	audit.Module,
	notification.Module,
	auth.Module,
	member.Module,
	intention.Module,
	admission.Module,
	referral.Module,
	dashboard.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) (*gin.Engine, error) {
	registerValidation()

	r := gin.New()
	// nil trusts no proxy, so ClientIP is the socket address.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok", "timestamp": time.Now().UTC()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	authsvc      authdomain.Service
	authzSvc     authorization.Service
	intentionSvc intentiondomain.Service
	admissionSvc admissiondomain.Service
	memberSvc    memberdomain.Service
	referralSvc  referraldomain.Service
	dashboardSvc dashboarddomain.Service
	limiter      *ratelimit.Limiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Authsvc      authdomain.Service
	AuthzSvc     authorization.Service
	IntentionSvc intentiondomain.Service
	AdmissionSvc admissiondomain.Service
	MemberSvc    memberdomain.Service
	ReferralSvc  referraldomain.Service
	DashboardSvc dashboarddomain.Service
	Limiter      *ratelimit.Limiter  `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		authsvc:      p.Authsvc,
		authzSvc:     p.AuthzSvc,
		intentionSvc: p.IntentionSvc,
		admissionSvc: p.AdmissionSvc,
		memberSvc:    p.MemberSvc,
		referralSvc:  p.ReferralSvc,
		dashboardSvc: p.DashboardSvc,
		limiter:      p.Limiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerIntentionRoutes()
	svc.registerMemberRoutes()
	svc.registerReferralRoutes()
	svc.registerDashboardRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/login", s.PublicRateLimit(), s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerIntentionRoutes() {
	intentions := s.engine.Group("/api/intencoes")

	intentions.POST("", s.PublicRateLimit(), s.SubmitIntention)
	intentions.GET("/token/:token", s.PublicRateLimit(), s.LookupIntentionByToken)

	admin := intentions.Group("/admin", s.AuthRequired())
	{
		admin.GET("", s.authorize(authorization.ObjectIntention, authorization.ActionView), s.ListIntentions)
		admin.GET("/estatisticas/geral", s.authorize(authorization.ObjectIntention, authorization.ActionView), s.IntentionStats)
		admin.GET("/:id", s.authorize(authorization.ObjectIntention, authorization.ActionView), s.GetIntention)
		admin.PUT("/:id/aprovar", s.authorize(authorization.ObjectIntention, authorization.ActionDecide), s.ApproveIntention)
		admin.PUT("/:id/rejeitar", s.authorize(authorization.ObjectIntention, authorization.ActionDecide), s.RejectIntention)
	}
}

func (s *Server) registerMemberRoutes() {
	members := s.engine.Group("/api/membros")

	members.POST("/cadastro/:token", s.PublicRateLimit(), s.RedeemInvitation)

	admin := members.Group("", s.AuthRequired())
	{
		admin.GET("", s.authorize(authorization.ObjectMember, authorization.ActionView), s.ListMembers)
		admin.GET("/estatisticas", s.authorize(authorization.ObjectMember, authorization.ActionView), s.MemberStats)
		admin.GET("/:id", s.authorize(authorization.ObjectMember, authorization.ActionView), s.GetMember)
		admin.PUT("/:id", s.authorize(authorization.ObjectMember, authorization.ActionUpdate), s.UpdateMember)
	}
}

func (s *Server) registerReferralRoutes() {
	indications := s.engine.Group("/api/indicacoes", s.AuthRequired())
	{
		indications.POST("", s.authorize(authorization.ObjectIndication, authorization.ActionCreate), s.CreateIndication)
		indications.GET("", s.authorize(authorization.ObjectIndication, authorization.ActionView), s.ListIndications)
		indications.GET("/:id", s.authorize(authorization.ObjectIndication, authorization.ActionView), s.GetIndication)
		indications.PUT("/:id/status", s.authorize(authorization.ObjectIndication, authorization.ActionTransition), s.TransitionIndication)
	}

	thanks := s.engine.Group("/api/obrigados", s.AuthRequired())
	{
		thanks.POST("", s.authorize(authorization.ObjectThanks, authorization.ActionCreate), s.RecordThanks)
		thanks.GET("", s.authorize(authorization.ObjectThanks, authorization.ActionView), s.ListThanks)
	}
}

func (s *Server) registerDashboardRoutes() {
	dashboard := s.engine.Group("/api/dashboard", s.AuthRequired())
	{
		dashboard.GET("", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.DashboardOverview)
		dashboard.GET("/indicacoes/grafico", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.DashboardChart)
		dashboard.GET("/relatorio.pdf", s.authorize(authorization.ObjectDashboard, authorization.ActionExport), s.DashboardReport)
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http.server")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
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
