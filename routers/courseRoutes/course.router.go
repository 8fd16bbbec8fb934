package courseRoutes

import (
	controllers "elearn/controllers/course"
	"elearn/middleware"
	"elearn/models"
	validators "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")
	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)
	student := middleware.RequireRole(models.RoleStudent)

	// Catalog
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:courseId", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Course management
	courseGroup.Post("/create", middleware.JWTMiddleware, staff, validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Put("/:courseId", middleware.JWTMiddleware, staff, validators.CourseID(), validators.CreateCourse(), controllers.UpdateCourse)
	courseGroup.Delete("/:courseId", middleware.JWTMiddleware, staff, validators.CourseID(), controllers.DeleteCourse)
	courseGroup.Post("/:courseId/publish", middleware.JWTMiddleware, staff, validators.CourseID(), controllers.PublishCourse)

	// Module management, nested under the owning course
	courseGroup.Post("/:courseId/module", middleware.JWTMiddleware, staff, validators.CourseID(), validators.CreateModule(), controllers.CreateModule)
	courseGroup.Get("/:courseId/modules", middleware.JWTMiddleware, validators.CourseID(), controllers.ListModules)
	courseGroup.Put("/:courseId/module/:moduleId", middleware.JWTMiddleware, staff, validators.CourseID(), validators.ModuleID(), validators.CreateModule(), controllers.UpdateModule)
	courseGroup.Delete("/:courseId/module/:moduleId", middleware.JWTMiddleware, staff, validators.CourseID(), validators.ModuleID(), controllers.DeleteModule)

	// Lesson management, nested under the owning module
	courseGroup.Post("/:courseId/module/:moduleId/lesson", middleware.JWTMiddleware, staff, validators.CourseID(), validators.ModuleID(), validators.CreateLesson(), controllers.CreateLesson)
	courseGroup.Get("/:courseId/module/:moduleId/lessons", middleware.JWTMiddleware, validators.CourseID(), validators.ModuleID(), controllers.ListLessons)
	courseGroup.Put("/:courseId/module/:moduleId/lesson/:lessonId", middleware.JWTMiddleware, staff, validators.CourseID(), validators.ModuleID(), validators.LessonID(), validators.CreateLesson(), controllers.UpdateLesson)
	courseGroup.Delete("/:courseId/module/:moduleId/lesson/:lessonId", middleware.JWTMiddleware, staff, validators.CourseID(), validators.ModuleID(), validators.LessonID(), controllers.DeleteLesson)

	// Enrollment
	courseGroup.Post("/:courseId/enroll", middleware.JWTMiddleware, student, validators.CourseID(), controllers.EnrollInCourse)
	courseGroup.Delete("/:courseId/enroll", middleware.JWTMiddleware, student, validators.CourseID(), controllers.UnenrollFromCourse)
	app.Get("/enrollments", middleware.JWTMiddleware, student, validators.EnrollmentList(), controllers.GetEnrollments)

	// Ratings
	courseGroup.Post("/:courseId/rate", middleware.JWTMiddleware, student, validators.CourseID(), validators.RateCourse(), controllers.RateCourse)
	courseGroup.Get("/:courseId/ratings", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseRatings)

	// Subjects
	subjectGroup := app.Group("/subject")
	admin := middleware.RequireRole(models.RoleAdmin)
	subjectGroup.Get("/list", middleware.JWTMiddleware, controllers.ListSubjects)
	subjectGroup.Post("/create", middleware.JWTMiddleware, admin, validators.CreateSubject(), controllers.CreateSubject)
	subjectGroup.Put("/:subjectId", middleware.JWTMiddleware, admin, validators.SubjectID(), validators.CreateSubject(), controllers.UpdateSubject)
	subjectGroup.Delete("/:subjectId", middleware.JWTMiddleware, admin, validators.SubjectID(), controllers.DeleteSubject)
}
