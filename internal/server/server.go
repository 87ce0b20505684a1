package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/billfold/internal/auth"
	authdomain "github.com/smallbiznis/billfold/internal/auth/domain"
	authlocal "github.com/smallbiznis/billfold/internal/auth/local"
	"github.com/smallbiznis/billfold/internal/auth/session"
	"github.com/smallbiznis/billfold/internal/config"
	"github.com/smallbiznis/billfold/internal/customer"
	customerdomain "github.com/smallbiznis/billfold/internal/customer/domain"
	"github.com/smallbiznis/billfold/internal/invoice"
	invoicedomain "github.com/smallbiznis/billfold/internal/invoice/domain"
	"github.com/smallbiznis/billfold/internal/pagecache"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	pagecache.Module,
	auth.Module,
	customer.Module,
	invoice.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	log         *zap.Logger
	authsvc     authdomain.Service
	localAuth   *authlocal.Handler
	sessions    *session.Manager
	genID       *snowflake.Node
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
	pageCache   pagecache.Cache
	display     *config.DisplayConfigHolder
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	Authsvc     authdomain.Service
	LocalAuth   *authlocal.Handler
	Sessions    *session.Manager
	GenID       *snowflake.Node
	CustomerSvc customerdomain.Service
	InvoiceSvc  invoicedomain.Service
	PageCache   pagecache.Cache
	Display     *config.DisplayConfigHolder
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		log:         p.Log.Named("server"),
		authsvc:     p.Authsvc,
		localAuth:   p.LocalAuth,
		sessions:    p.Sessions,
		genID:       p.GenID,
		customerSvc: p.CustomerSvc,
		invoiceSvc:  p.InvoiceSvc,
		pageCache:   p.PageCache,
		display:     p.Display,
	}

	svc.registerAuthRoutes()
	svc.registerDashboardRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.localAuth.Login)
	auth.POST("/logout", s.localAuth.Logout)
	auth.GET("/me", s.localAuth.Me)
}

func (s *Server) registerDashboardRoutes() {
	dashboard := s.engine.Group("/dashboard", s.WebAuthRequired())

	dashboard.GET("", s.DashboardSummary)

	// -------- Invoices --------
	dashboard.GET("/invoices", s.ListInvoices)
	dashboard.POST("/invoices", s.CreateInvoice)
	dashboard.GET("/invoices/:id", s.GetInvoiceByID)
	dashboard.POST("/invoices/:id", s.UpdateInvoice)
	dashboard.DELETE("/invoices/:id", s.DeleteInvoice)

	// -------- Customers --------
	dashboard.GET("/customers", s.ListCustomers)
}
