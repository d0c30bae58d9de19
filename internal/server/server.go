package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/agenda"
	"github.com/drithh/setalip-mono-sub003/internal/auth"
	"github.com/drithh/setalip-mono-sub003/internal/booking"
	"github.com/drithh/setalip-mono-sub003/internal/class"
	"github.com/drithh/setalip-mono-sub003/internal/config"
	"github.com/drithh/setalip-mono-sub003/internal/credit"
	"github.com/drithh/setalip-mono-sub003/internal/location"
	"github.com/drithh/setalip-mono-sub003/internal/loyalty"
	"github.com/drithh/setalip-mono-sub003/internal/packages"
	"github.com/drithh/setalip-mono-sub003/internal/report"
	"github.com/drithh/setalip-mono-sub003/internal/upload"
	"github.com/drithh/setalip-mono-sub003/internal/user"
	"github.com/drithh/setalip-mono-sub003/internal/websetting"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	User     *user.Handler
	Location *location.Handler
	Class    *class.Handler
	Agenda   *agenda.Handler
	Booking  *booking.Handler
	Packages *packages.Handler
	Credit   *credit.Handler
	Loyalty  *loyalty.Handler
	Content  *websetting.Handler
	Report   *report.Handler
	Upload   *upload.Handler
	Daily    *DailyHandler
}

// Gates are the collaborators the auth middleware chain consults.
type Gates struct {
	Sessions auth.SessionStore
	Verifier auth.VerificationChecker
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, h Handlers, g Gates) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(), MetricsMiddleware(), corsMiddleware())

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)
	router.Static("/uploads", cfg.UploadDir)

	router.POST("/cron/daily", CronAuth(cfg.CronSecret), h.Daily.Run)

	authn := auth.AuthMiddleware(cfg.JWTSecret, g.Sessions)
	verified := auth.RequireVerified(g.Verifier)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.Refresh)
	}

	session := router.Group("/auth")
	session.Use(authn)
	{
		session.POST("/logout", h.User.Logout)
		session.POST("/verify/request", h.User.RequestVerification)
		session.POST("/verify", h.User.Verify)
	}

	open := router.Group("/api")
	{
		open.GET("/locations", h.Location.List)
		open.GET("/locations/:id", h.Location.Get)
		open.GET("/class-types", h.Class.ListTypes)
		open.GET("/classes", h.Class.List)
		open.GET("/classes/:id", h.Class.Get)
		open.GET("/agendas", h.Agenda.List)
		open.GET("/agendas/:id", h.Agenda.Get)
		open.GET("/packages", h.Packages.List)
		open.GET("/reviews", h.Content.ListReviews)
		open.GET("/faqs", h.Content.ListFAQs)
		open.GET("/settings", h.Content.GetSetting)
		open.GET("/loyalty/shop", h.Loyalty.ListShop)
	}

	account := router.Group("/api")
	account.Use(authn)
	{
		account.GET("/me", h.User.Me)
		account.PUT("/me", h.User.UpdateMe)
		account.POST("/uploads", h.Upload.Upload)
	}

	member := router.Group("/api")
	member.Use(authn, verified)
	{
		member.POST("/agendas/:id/book", h.Booking.Book)
		member.GET("/bookings", h.Booking.ListMine)
		member.POST("/bookings/:id/cancel", h.Booking.Cancel)

		member.POST("/packages/:id/purchase", h.Packages.Purchase)
		member.GET("/package-transactions", h.Packages.MyTransactions)
		member.PUT("/package-transactions/:id/proof", h.Packages.UploadProof)

		member.GET("/credits", h.Credit.MyBalances)
		member.GET("/credits/history", h.Credit.MyHistory)

		member.GET("/loyalty", h.Loyalty.MyBalance)
		member.GET("/loyalty/history", h.Loyalty.MyHistory)
		member.POST("/loyalty/shop/:id/redeem", h.Loyalty.Redeem)

		member.POST("/reviews", h.Content.CreateReview)
	}

	admin := router.Group("/admin")
	admin.Use(authn, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/users", h.User.List)
		admin.POST("/users", h.User.Create)
		admin.PUT("/users/:id/role", h.User.SetRole)
		admin.POST("/users/:id/verify", h.User.MarkVerified)
		admin.DELETE("/users/:id", h.User.Delete)
		admin.GET("/users/:id/credits", h.Credit.UserBalances)
		admin.GET("/users/:id/credits/history", h.Credit.UserHistory)

		admin.POST("/locations", h.Location.Create)
		admin.PUT("/locations/:id", h.Location.Update)
		admin.DELETE("/locations/:id", h.Location.Delete)
		admin.POST("/locations/:id/facilities", h.Location.AddFacility)
		admin.PUT("/facilities/:id", h.Location.UpdateFacility)
		admin.DELETE("/facilities/:id", h.Location.DeleteFacility)
		admin.POST("/locations/:id/assets", h.Location.AddAsset)
		admin.DELETE("/assets/:id", h.Location.DeleteAsset)

		admin.POST("/class-types", h.Class.CreateType)
		admin.PUT("/class-types/:id", h.Class.UpdateType)
		admin.DELETE("/class-types/:id", h.Class.DeleteType)
		admin.POST("/classes", h.Class.Create)
		admin.PUT("/classes/:id", h.Class.Update)
		admin.DELETE("/classes/:id", h.Class.Delete)
		admin.POST("/classes/:id/assets", h.Class.AddAsset)
		admin.DELETE("/class-assets/:id", h.Class.DeleteAsset)

		admin.POST("/agendas", h.Agenda.Create)
		admin.POST("/agendas/generate", h.Agenda.Generate)
		admin.PUT("/agendas/:id", h.Agenda.Update)
		admin.DELETE("/agendas/:id", h.Agenda.Delete)
		admin.GET("/agendas/:id/bookings", h.Booking.ListByAgenda)
		admin.GET("/recurrences", h.Agenda.ListRecurrences)
		admin.GET("/recurrences/:id", h.Agenda.GetRecurrence)
		admin.POST("/recurrences", h.Agenda.CreateRecurrence)
		admin.PUT("/recurrences/:id", h.Agenda.UpdateRecurrence)
		admin.DELETE("/recurrences/:id", h.Agenda.DeleteRecurrence)

		admin.POST("/bookings/:id/cancel", h.Booking.AdminCancel)
		admin.POST("/bookings/:id/check-in", h.Booking.CheckIn)

		admin.GET("/packages", h.Packages.AdminList)
		admin.GET("/packages/:id", h.Packages.Get)
		admin.POST("/packages", h.Packages.Create)
		admin.PUT("/packages/:id", h.Packages.Update)
		admin.DELETE("/packages/:id", h.Packages.Delete)
		admin.GET("/package-transactions", h.Packages.ListTransactions)
		admin.POST("/package-transactions/:id/approve", h.Packages.Approve)
		admin.POST("/package-transactions/:id/reject", h.Packages.Reject)

		admin.POST("/credits/adjust", h.Credit.Adjust)

		admin.POST("/loyalty/adjust", h.Loyalty.Adjust)
		admin.GET("/loyalty/rewards", h.Loyalty.ListRewards)
		admin.POST("/loyalty/rewards", h.Loyalty.CreateReward)
		admin.PUT("/loyalty/rewards/:id", h.Loyalty.UpdateReward)
		admin.DELETE("/loyalty/rewards/:id", h.Loyalty.DeleteReward)
		admin.POST("/loyalty/shop", h.Loyalty.CreateShopItem)
		admin.PUT("/loyalty/shop/:id", h.Loyalty.UpdateShopItem)
		admin.DELETE("/loyalty/shop/:id", h.Loyalty.DeleteShopItem)

		admin.PUT("/settings", h.Content.UpdateSetting)
		admin.POST("/faqs", h.Content.CreateFAQ)
		admin.PUT("/faqs/:id", h.Content.UpdateFAQ)
		admin.DELETE("/faqs/:id", h.Content.DeleteFAQ)
		admin.GET("/reviews", h.Content.AdminListReviews)
		admin.PUT("/reviews/:id/visibility", h.Content.SetReviewVisibility)
		admin.DELETE("/reviews/:id", h.Content.DeleteReview)

		admin.GET("/reports/bookings", h.Report.Bookings)
		admin.GET("/reports/credits", h.Report.Credits)
		admin.GET("/reports/sales", h.Report.Sales)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
