// Package api assembles the gin router from the per-domain handlers.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nutriwise/nutriwise-api/internal/api/admin"
	"github.com/nutriwise/nutriwise-api/internal/api/classify"
	"github.com/nutriwise/nutriwise-api/internal/api/complaints"
	"github.com/nutriwise/nutriwise-api/internal/api/mealplans"
	"github.com/nutriwise/nutriwise-api/internal/api/middleware"
	"github.com/nutriwise/nutriwise-api/internal/api/profiles"
	"github.com/nutriwise/nutriwise-api/internal/api/progress"
	"github.com/nutriwise/nutriwise-api/internal/api/rewards"
	"github.com/nutriwise/nutriwise-api/internal/api/users"
	"github.com/nutriwise/nutriwise-api/internal/config"
	"github.com/nutriwise/nutriwise-api/internal/service/auth"
)

// Handlers bundles every API handler the router mounts.
type Handlers struct {
	Users      *users.Handler
	Admin      *admin.Handler
	Rewards    *rewards.Handler
	Progress   *progress.Handler
	Profiles   *profiles.Handler
	MealPlans  *mealplans.Handler
	Complaints *complaints.Handler
	Classify   *classify.Handler
}

// New builds the gin engine with all routes mounted. User-facing
// routes require a user token, admin routes an admin token; account
// bootstrap routes (signup, login, password reset) are public.
func New(cfg *config.Config, validator middleware.TokenValidator, h Handlers) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")

	// Public account bootstrap.
	api.POST("/users/signup", h.Users.SignupInit)
	api.POST("/users/verify", h.Users.Verify)
	api.POST("/users/login", h.Users.Login)

	api.POST("/admin/signup", h.Admin.SignupInit)
	api.POST("/admin/signup/verify", h.Admin.VerifySignup)
	api.POST("/admin/login", h.Admin.Login)
	api.POST("/admin/forgot-password", h.Admin.ForgotPassword)
	api.POST("/admin/verify-reset-code", h.Admin.VerifyResetCode)
	api.POST("/admin/reset-password", h.Admin.ResetPassword)

	// App surface, user token required.
	user := api.Group("", middleware.RequireRole(validator, auth.RoleUser))
	user.GET("/rewards", h.Rewards.GetState)
	user.POST("/rewards/check", h.Rewards.Check)
	user.POST("/rewards/redeem", h.Rewards.Redeem)

	user.POST("/progress/my-hub", h.Progress.GetHub)
	user.POST("/progress/log-water", h.Progress.LogWater)
	user.POST("/progress/log-weight", h.Progress.LogWeight)
	user.POST("/activities", h.Progress.LogActivity)
	user.POST("/foodlog", h.Progress.LogFood)
	user.GET("/foodlog/:date", h.Progress.GetFoodLogs)

	user.POST("/user-details", h.Profiles.Save)
	user.GET("/user-details", h.Profiles.Get)
	user.GET("/user-details/dietary", h.Profiles.GetDietary)

	user.POST("/mealplan", h.MealPlans.Save)
	user.GET("/mealplan", h.MealPlans.GetLatest)
	user.GET("/mealplan/today", h.MealPlans.GetToday)
	user.POST("/mealplan/log/:mealId", h.MealPlans.LogMeal)

	user.POST("/complaints", h.Complaints.Create)
	user.POST("/classify", h.Classify.Classify)

	// Admin surface, admin token required.
	adm := api.Group("/admin", middleware.RequireRole(validator, auth.RoleAdmin))
	adm.GET("/profile", h.Admin.GetProfile)
	adm.PUT("/profile", h.Admin.UpdateProfile)
	adm.POST("/profile/verify-email", h.Admin.VerifyNewEmail)
	adm.POST("/change-password", h.Admin.ChangePassword)

	adm.GET("/dashboard", h.Admin.GetDashboard)
	adm.GET("/analytics/bmi", h.Admin.GetBMIDistribution)
	adm.GET("/analytics/diets", h.Admin.GetDietDistribution)
	adm.GET("/analytics/goals", h.Admin.GetGoalDistribution)
	adm.GET("/analytics/allergies", h.Admin.GetAllergyFrequency)
	adm.GET("/analytics/growth", h.Admin.GetUserGrowth)

	adm.GET("/users", h.Admin.ListUsers)
	adm.DELETE("/users/:id", h.Admin.DeleteUser)
	adm.POST("/users/cleanup-orphans", h.Admin.CleanupOrphans)

	adm.GET("/complaints", h.Admin.ListComplaints)
	adm.PUT("/complaints/:id", h.Admin.UpdateComplaintStatus)

	return router
}
