package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"tweettocourse/cmd/fx/account_fx"
	"tweettocourse/cmd/fx/controllers_fx"
	"tweettocourse/cmd/fx/course_fx"
	"tweettocourse/cmd/fx/dashboard_fx"
	"tweettocourse/cmd/fx/db_fx"
	"tweettocourse/cmd/fx/entitlement_fx"
	"tweettocourse/cmd/fx/export_fx"
	"tweettocourse/cmd/fx/feedback_fx"
	"tweettocourse/cmd/fx/mail_fx"
	"tweettocourse/cmd/fx/memcache_fx"
	"tweettocourse/cmd/fx/payment_fx"
	"tweettocourse/cmd/fx/scheduler_fx"
	"tweettocourse/internal/api/controllers"
	"tweettocourse/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	app := fx.New(
		db_fx.Module,
		memcache_fx.Module,
		mail_fx.Module,

		account_fx.Module,
		entitlement_fx.Module,
		course_fx.Module,
		export_fx.Module,
		payment_fx.Module,
		feedback_fx.Module,
		dashboard_fx.Module,
		scheduler_fx.Module,

		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				logrus.WithField("port", port).Info("starting HTTP server")
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logrus.Info("stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	entitlementController *controllers.EntitlementController,
	courseController *controllers.CourseController,
	exportController *controllers.ExportController,
	paymentController *controllers.PaymentController,
	feedbackController *controllers.FeedbackController,
	dashboardController *controllers.DashboardController) *gin.Engine {

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r,
		accountController,
		entitlementController,
		courseController,
		exportController,
		paymentController,
		feedbackController,
		dashboardController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	entitlementController *controllers.EntitlementController,
	courseController *controllers.CourseController,
	exportController *controllers.ExportController,
	paymentController *controllers.PaymentController,
	feedbackController *controllers.FeedbackController,
	dashboardController *controllers.DashboardController) {

	accounts := r.Group("/accounts")
	accounts.POST("/register", accountController.Register)
	accounts.POST("/login", accountController.Login)
	accounts.POST("/forgot-password", accountController.ForgotPassword)
	accounts.POST("/verify-otp", accountController.VerifyOtpToken)
	accounts.POST("/reset-password", accountController.ResetPasswordWithOtp)

	payments := r.Group("/payments")
	payments.GET("/plans", paymentController.GetPlans)
	payments.GET("/plans/:id", paymentController.GetPlanById)
	payments.POST("/webhook", paymentController.HandleWebhook)
	payments.POST("/create-checkout", middleware.JWTAuthMiddleware(), paymentController.CreateCheckoutRequest)
	payments.GET("/subscription", middleware.JWTAuthMiddleware(), paymentController.GetSubscriptionStatus)

	authed := r.Group("/", middleware.JWTAuthMiddleware())

	authed.GET("/entitlements/me", entitlementController.GetMyEntitlements)

	courses := authed.Group("/courses")
	courses.POST("/generate", courseController.GenerateCourse)
	courses.GET("", courseController.ListCourses)
	courses.POST("/search", courseController.SearchCourses)
	courses.GET("/:id", courseController.GetCourse)
	courses.DELETE("/:id", courseController.DeleteCourse)

	exports := authed.Group("/exports")
	exports.POST("/pdf", exportController.ExportPDF)
	exports.POST("/notion", exportController.ExportNotion)

	authed.POST("/feedback", feedbackController.CreateFeedback)

	admin := authed.Group("/admin", middleware.RoleMiddleware("admin"))
	admin.GET("/accounts", accountController.GetAllAccounts)
	admin.GET("/entitlements/:id", entitlementController.GetAccountEntitlements)
	admin.POST("/entitlements/change-tier", entitlementController.ChangeTier)
	admin.POST("/entitlements/reset-usage", entitlementController.ResetUsage)
	admin.GET("/feedback", feedbackController.GetFeedback)
	admin.GET("/dashboard", dashboardController.GetDashboard)
}
