package routes

import (
	"net/http"

	"github.com/TimiOdusanya/tourbirth-backend/internal/container"
	"github.com/TimiOdusanya/tourbirth-backend/internal/handlers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/middleware"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	origins := container.Options.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.Recovery(container.Logger))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "tourbirth-api",
		})
	}
	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthMiddleware(container.AuthDeps())
	users := middleware.RequireRoles(models.RoleUser)
	admins := middleware.RequireRoles(models.RoleAdmin)
	companions := middleware.RequireRoles(models.RoleCompanion)
	signedIn := middleware.RequireRoles(models.RoleUser, models.RoleAdmin)

	as := container.AuthService
	ps := container.ProfileService
	bs := container.BookingService
	ds := container.DestinationService
	rs := container.ReviewService

	v1 := r.Group("/api/v1")
	v1.GET("/health", health)

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", handlers.Signup(as, models.RoleUser))
		authRoutes.POST("/login", handlers.Login(as, models.RoleUser))
		authRoutes.POST("/logout", handlers.Logout(as))
		authRoutes.POST("/verify", handlers.VerifyAccount(as))
		authRoutes.POST("/resend-verification", handlers.ResendVerification(as))
		authRoutes.POST("/forgot-password", handlers.ForgotPassword(as, models.RoleUser))
		authRoutes.POST("/verify-forgot-password", handlers.VerifyForgotPassword(as, models.RoleUser))
		authRoutes.PUT("/reset-password", handlers.ResetPassword(as, models.RoleUser))

		authRoutes.GET("/user-profile", auth, users, handlers.GetProfile(ps))
		authRoutes.PUT("/user-profile", auth, users, handlers.UpdateProfile(ps))
		authRoutes.PUT("/profile/picture", auth, users, handlers.UploadProfilePicture(ps))
		authRoutes.PUT("/change-password", auth, signedIn, handlers.ChangePassword(as))
		authRoutes.POST("/two-factor-auth/enable", auth, users, handlers.EnableTwoFactor(as))
		authRoutes.POST("/two-factor-auth/confirm", auth, users, handlers.ConfirmTwoFactor(as))
	}

	adminAuth := authRoutes.Group("/admin")
	{
		adminAuth.POST("/signup", handlers.Signup(as, models.RoleAdmin))
		adminAuth.POST("/login", handlers.Login(as, models.RoleAdmin))
		adminAuth.POST("/forgot-password", handlers.ForgotPassword(as, models.RoleAdmin))
		adminAuth.POST("/verify-forgot-password", handlers.VerifyForgotPassword(as, models.RoleAdmin))
		adminAuth.PUT("/reset-password", handlers.ResetPassword(as, models.RoleAdmin))
		adminAuth.GET("/profile", auth, admins, handlers.GetProfile(ps))
		adminAuth.PUT("/profile", auth, admins, handlers.UpdateProfile(ps))
		adminAuth.PUT("/profile/picture", auth, admins, handlers.UploadProfilePicture(ps))
	}

	companionAuth := authRoutes.Group("/companion")
	{
		companionAuth.POST("/login", handlers.CompanionLogin(as))
		companionAuth.POST("/complete-registration", handlers.CompleteRegistration(as))
		companionAuth.GET("/profile", auth, companions, handlers.GetCompanionProfile(as))
		companionAuth.PUT("/profile", auth, companions, handlers.UpdateCompanionProfile(as))
		companionAuth.PUT("/change-password", auth, companions, handlers.CompanionChangePassword(as))
	}

	userRoutes := v1.Group("/user", auth, users)
	{
		userRoutes.GET("/profile", handlers.GetProfile(ps))
		userRoutes.PATCH("/profile", handlers.UpdateProfile(ps))
		userRoutes.PUT("/profile/picture", handlers.UploadProfilePicture(ps))
		userRoutes.GET("/bookings", handlers.ListMyBookings(bs))
		userRoutes.GET("/bookings/stats", handlers.MyBookingStats(bs))
		userRoutes.GET("/bookings/:bookingId", handlers.GetMyBooking(bs))
	}

	reviewRoutes := v1.Group("/reviews")
	{
		reviewRoutes.GET("", handlers.ListPublicReviews(rs))
		reviewRoutes.GET("/my-reviews", auth, users, handlers.ListMyReviews(rs))
		reviewRoutes.GET("/:reviewId", handlers.GetPublicReview(rs))
		reviewRoutes.POST("", auth, users, handlers.CreateReview(rs))
		reviewRoutes.PATCH("/:reviewId", auth, users, handlers.UpdateMyReview(rs))
		reviewRoutes.DELETE("/:reviewId", auth, users, handlers.DeleteMyReview(rs))
	}

	v1.POST("/waitlist", handlers.JoinWaitlist(container.WaitlistService))
	v1.POST("/newsletter/subscribe", handlers.Subscribe(container.NewsletterService))
	v1.POST("/newsletter/unsubscribe", handlers.Unsubscribe(container.NewsletterService))
	v1.POST("/contact", handlers.SubmitContact(container.ContactService))

	v1.GET("/destinations", handlers.ListDestinations(ds))
	v1.GET("/destinations/all", handlers.ListAllDestinations(ds))

	admin := v1.Group("/admin", auth, admins)
	registerAdminRoutes(admin, container)

	return r
}

func registerAdminRoutes(admin *gin.RouterGroup, container *container.Container) {
	bs := container.BookingService
	ds := container.DestinationService
	rs := container.ReviewService
	ws := container.WaitlistService
	ns := container.NewsletterService
	cs := container.ContactService

	dashboard := admin.Group("/dashboard")
	{
		dashboard.GET("/stats", handlers.DashboardStats(container.DashboardService))
		dashboard.GET("/users", handlers.ListUsers(container.DashboardService))
	}

	bookings := admin.Group("/bookings")
	{
		bookings.POST("", handlers.CreateBooking(bs))
		bookings.GET("", handlers.ListBookings(bs))
		bookings.GET("/export", handlers.ExportBookings(bs))
		bookings.GET("/users/:userId", handlers.GetUserInfoAndBookings(bs))
		bookings.GET("/:bookingId", handlers.GetBooking(bs))
		bookings.PUT("/:bookingId", handlers.UpdateBooking(bs))
		bookings.PUT("/:bookingId/status", handlers.UpdateBookingStatus(bs))
		bookings.DELETE("/:bookingId", handlers.DeleteBooking(bs))
		bookings.POST("/:bookingId/companions", handlers.AddCompanions(bs))
		bookings.DELETE("/:bookingId/companions/:companionId", handlers.RemoveCompanion(bs))
		bookings.POST("/:bookingId/documents", handlers.UploadAttachments(bs, services.AttachmentDocuments))
		bookings.POST("/:bookingId/itineraries", handlers.UploadAttachments(bs, services.AttachmentItineraries))
		bookings.DELETE("/:bookingId/documents/:index", handlers.RemoveAttachment(bs, services.AttachmentDocuments))
		bookings.DELETE("/:bookingId/itineraries/:index", handlers.RemoveAttachment(bs, services.AttachmentItineraries))
	}

	destinations := admin.Group("/destinations")
	{
		destinations.POST("", handlers.CreateDestination(ds))
		destinations.POST("/bulk", handlers.BulkCreateDestinations(ds))
		destinations.DELETE("/bulk", handlers.BulkDeleteDestinations(ds))
		destinations.GET("/:id", handlers.GetDestination(ds))
		destinations.PUT("/:id", handlers.UpdateDestination(ds))
		destinations.DELETE("/:id", handlers.DeleteDestination(ds))
	}

	reviews := admin.Group("/reviews")
	{
		reviews.GET("", handlers.ListReviews(rs))
		reviews.GET("/stats", handlers.ReviewStats(rs))
		reviews.GET("/:reviewId", handlers.GetReview(rs))
		reviews.PATCH("/:reviewId/approve", handlers.ModerateReview(rs, true))
		reviews.PATCH("/:reviewId/reject", handlers.ModerateReview(rs, false))
		reviews.PATCH("/:reviewId/toggle-active", handlers.ToggleReviewActive(rs))
		reviews.DELETE("/:reviewId", handlers.DeleteReview(rs))
	}

	waitlist := admin.Group("/waitlist")
	{
		waitlist.GET("", handlers.ListWaitlist(ws))
		waitlist.GET("/stats", handlers.WaitlistStats(ws))
		waitlist.GET("/:id", handlers.GetWaitlistEntry(ws))
		waitlist.PUT("/:id", handlers.UpdateWaitlistEntry(ws))
		waitlist.DELETE("/:id", handlers.RemoveWaitlistEntry(ws))
	}

	newsletter := admin.Group("/newsletter")
	{
		newsletter.GET("", handlers.ListSubscriptions(ns))
		newsletter.GET("/stats", handlers.NewsletterStats(ns))
		newsletter.GET("/:id", handlers.GetSubscription(ns))
	}

	contact := admin.Group("/contact")
	{
		contact.GET("", handlers.ListContacts(cs))
		contact.GET("/:id", handlers.GetContact(cs))
		contact.PUT("/:id", handlers.UpdateContact(cs))
		contact.DELETE("/:id", handlers.RemoveContact(cs))
	}

	admin.POST("/media", handlers.UploadMedia(container.ProfileService))
}
