package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	analyticsdomain "github.com/sds-studio/sds/internal/analytics/domain"
	authdomain "github.com/sds-studio/sds/internal/auth/domain"
	"github.com/sds-studio/sds/internal/auth/session"
	checkoutdomain "github.com/sds-studio/sds/internal/checkout/domain"
	"github.com/sds-studio/sds/internal/config"
	contactdomain "github.com/sds-studio/sds/internal/contact/domain"
	invoicedomain "github.com/sds-studio/sds/internal/invoice/domain"
	"github.com/sds-studio/sds/internal/observability/metrics"
	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
	projectdomain "github.com/sds-studio/sds/internal/project/domain"
	"github.com/sds-studio/sds/internal/ratelimit"
	"github.com/sds-studio/sds/internal/seo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServerParams struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	DB      *gorm.DB
	Metrics *metrics.Metrics

	Sessions    *session.Manager
	AuthSvc     authdomain.Service
	ContactSvc  contactdomain.Service
	Limiter     *ratelimit.ContactLimiter
	CheckoutSvc checkoutdomain.Service
	Ingestor    paymentdomain.Ingestor
	PaymentRepo paymentdomain.Repository
	ProjectSvc  projectdomain.Service
	InvoiceSvc  invoicedomain.Service
	Analytics   analyticsdomain.Service
	SEO         *seo.Service
}

type Server struct {
	log     *zap.Logger
	cfg     config.Config
	db      *gorm.DB
	metrics *metrics.Metrics

	sessions    *session.Manager
	authSvc     authdomain.Service
	contactSvc  contactdomain.Service
	limiter     *ratelimit.ContactLimiter
	checkoutSvc checkoutdomain.Service
	ingestor    paymentdomain.Ingestor
	paymentRepo paymentdomain.Repository
	projectSvc  projectdomain.Service
	invoiceSvc  invoicedomain.Service
	analytics   analyticsdomain.Service
	seo         *seo.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		log:         p.Log.Named("server"),
		cfg:         p.Cfg,
		db:          p.DB,
		metrics:     p.Metrics,
		sessions:    p.Sessions,
		authSvc:     p.AuthSvc,
		contactSvc:  p.ContactSvc,
		limiter:     p.Limiter,
		checkoutSvc: p.CheckoutSvc,
		ingestor:    p.Ingestor,
		paymentRepo: p.PaymentRepo,
		projectSvc:  p.ProjectSvc,
		invoiceSvc:  p.InvoiceSvc,
		analytics:   p.Analytics,
		seo:         p.SEO,
	}
}

func (s *Server) NewEngine() *gin.Engine {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.log))
	r.Use(metrics.GinMiddleware(s.metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.registerSEORoutes(r)
	s.registerAuthRoutes(r)
	s.registerAPIRoutes(r)
	s.registerAdminRoutes(r)

	return r
}

func (s *Server) registerSEORoutes(r *gin.Engine) {
	r.GET("/sitemap.xml", s.HandleSitemap)
	r.GET("/robots.txt", s.HandleRobots)
	r.GET("/og.svg", s.HandleOGImage)
}

func (s *Server) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	auth.POST("/login", s.HandleLogin)
	auth.POST("/logout", s.HandleLogout)

	me := auth.Group("")
	me.Use(s.AuthRequired())
	me.GET("/me", s.HandleMe)
	me.POST("/change-password", s.HandleChangePassword)
}

func (s *Server) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/contact", s.HandleContactIntake)

	api.POST("/checkout/stripe", s.HandleCreateStripeSession)
	api.GET("/checkout/stripe/:session_id", s.HandleGetStripeSession)
	api.POST("/checkout/crypto", s.HandleCreateCryptoCharge)
	api.GET("/checkout/crypto/:charge_id", s.HandleGetCryptoCharge)

	api.POST("/payments/webhooks/:provider", s.HandlePaymentWebhook)

	api.GET("/realisations", s.HandleListPublicProjects)

	api.POST("/analytics/events", s.HandleRecordAnalyticsEvent)
}

func (s *Server) registerAdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	admin.Use(s.AuthRequired())

	admin.GET("/contacts", s.HandleListContacts)
	admin.GET("/contacts/:id", s.HandleGetContact)
	admin.PATCH("/contacts/:id/status", s.RequireRole(authdomain.RoleAdmin, authdomain.RoleEditor), s.HandleUpdateContactStatus)

	admin.POST("/projects", s.RequireRole(authdomain.RoleAdmin, authdomain.RoleEditor), s.HandleCreateProject)
	admin.GET("/projects", s.HandleListProjects)
	admin.GET("/projects/:id", s.HandleGetProject)
	admin.PATCH("/projects/:id", s.RequireRole(authdomain.RoleAdmin, authdomain.RoleEditor), s.HandleUpdateProject)
	admin.DELETE("/projects/:id", s.RequireRole(authdomain.RoleAdmin), s.HandleDeleteProject)
	admin.GET("/projects/:id/tasks", s.HandleListProjectTasks)
	admin.PATCH("/tasks/:id", s.RequireRole(authdomain.RoleAdmin, authdomain.RoleEditor), s.HandleUpdateTask)

	admin.POST("/invoices", s.RequireRole(authdomain.RoleAdmin, authdomain.RoleEditor), s.HandleCreateInvoice)
	admin.GET("/invoices", s.HandleListInvoices)
	admin.GET("/invoices/:id", s.HandleGetInvoice)
	admin.PATCH("/invoices/:id/status", s.RequireRole(authdomain.RoleAdmin, authdomain.RoleEditor), s.HandleUpdateInvoiceStatus)

	admin.GET("/payments/events", s.HandleListUnprocessedPaymentEvents)

	admin.POST("/uploads", s.RequireRole(authdomain.RoleAdmin, authdomain.RoleEditor), s.HandleUpload)
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.NewEngine(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("starting http server", zap.String("addr", s.cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
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

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(run),
)
