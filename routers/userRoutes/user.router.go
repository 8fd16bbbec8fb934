package userRoutes

import (
	userControllers "elearn/controllers/userControllers"
	"elearn/middleware"
	"elearn/models"
	userValidators "elearn/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user")

	userGroup.Get("/profile", middleware.JWTMiddleware, userControllers.GetProfile)
	userGroup.Put("/profile", middleware.JWTMiddleware, userValidators.UpdateProfile(), userControllers.UpdateProfile)

	// Examination types
	userGroup.Get("/examination-types", middleware.JWTMiddleware, userControllers.ListExaminationTypes)
	userGroup.Post("/examination-types", middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin),
		userValidators.CreateExaminationType(), userControllers.CreateExaminationType)

	// Staff dashboard
	staffGroup := app.Group("/staff")
	staffGroup.Get("/dashboard", middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
		userControllers.StaffDashboardStats)
	staffGroup.Get("/students", middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
		userControllers.StaffStudents)
}
