package progressRoutes

import (
	progressControllers "elearn/controllers/progress"
	"elearn/middleware"
	"elearn/models"
	courseValidators "elearn/validators/course"
	examValidators "elearn/validators/exam"
	progressValidators "elearn/validators/progress"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App) {
	student := middleware.RequireRole(models.RoleStudent)

	progressGroup := app.Group("/progress")

	progressGroup.Get("/courses", middleware.JWTMiddleware, student, progressControllers.GetMyProgress)
	progressGroup.Get("/course/:courseId", middleware.JWTMiddleware, student, courseValidators.CourseID(), progressControllers.GetCourseProgress)
	progressGroup.Get("/exam/:examId", middleware.JWTMiddleware, student, examValidators.ExamID(), progressControllers.GetExamProgress)
	progressGroup.Get("/stats", middleware.JWTMiddleware, student, progressControllers.LearningStats)
	progressGroup.Get("/activity", middleware.JWTMiddleware, student, progressControllers.RecentActivity)

	lessonGroup := app.Group("/lesson")
	lessonGroup.Patch("/:lessonId/progress", middleware.JWTMiddleware, student, courseValidators.LessonID(), progressValidators.LessonProgress(), progressControllers.UpdateLessonProgress)
	lessonGroup.Post("/:lessonId/complete", middleware.JWTMiddleware, student, courseValidators.LessonID(), progressControllers.CompleteLesson)
}
