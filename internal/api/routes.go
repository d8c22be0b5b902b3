package api

import (
	"net/http"

	"alcyxob/fitness-planner/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the full API surface on the given router.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	plannerService service.PlannerService,
	exerciseService service.ExerciseService,
) {

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	dayHandler := NewDayHandler(plannerService)
	exerciseHandler := NewExerciseHandler(exerciseService, plannerService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.PATCH("/auth/password", authHandler.ChangePassword)

		// --- Profile ---
		protected.GET("/me", userHandler.GetProfile)
		protected.PATCH("/me", userHandler.UpdateProfile)
		protected.DELETE("/me", userHandler.DeleteAccount)
		protected.POST("/me/planner-date", userHandler.SetPlannerDate)

		// --- Plan days ---
		dayGroup := protected.Group("/days")
		{
			dayGroup.POST("", dayHandler.AddDay)
			dayGroup.GET("", dayHandler.GetDays)
			dayGroup.PATCH("/:dayId", dayHandler.RenameDay)
			dayGroup.DELETE("/:dayId", dayHandler.DeleteDay)

			// Exercises scoped to a day.
			dayGroup.GET("/:dayId/exercises", exerciseHandler.GetExercisesByDay)
			dayGroup.PATCH("/:dayId/exercises/:exerciseId", exerciseHandler.UpdateExercise)
			dayGroup.DELETE("/:dayId/exercises/:exerciseId", exerciseHandler.DeleteExercise)
			dayGroup.POST("/:dayId/exercises/:exerciseId/media", exerciseHandler.RequestMediaUpload)
			dayGroup.GET("/:dayId/exercises/:exerciseId/media", exerciseHandler.GetMediaDownload)
		}

		// --- Exercises ---
		exerciseGroup := protected.Group("/exercises")
		{
			// One request can schedule the exercise on several days at once.
			exerciseGroup.POST("", exerciseHandler.AddExercise)
			exerciseGroup.GET("/today", exerciseHandler.GetTodayExercises)
		}
	}
}
