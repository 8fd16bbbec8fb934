package examRoutes

import (
	examControllers "elearn/controllers/exam"
	"elearn/middleware"
	"elearn/models"
	courseValidators "elearn/validators/course"
	examValidators "elearn/validators/exam"

	"github.com/gofiber/fiber/v2"
)

func SetupExamRoutes(app *fiber.App) {
	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)
	student := middleware.RequireRole(models.RoleStudent)

	// Exams live under their course
	courseGroup := app.Group("/course")
	courseGroup.Post("/:courseId/exam", middleware.JWTMiddleware, staff, courseValidators.CourseID(), examValidators.CreateExam(), examControllers.CreateExam)
	courseGroup.Post("/:courseId/assignment", middleware.JWTMiddleware, staff, courseValidators.CourseID(), examValidators.CreateAssignment(), examControllers.CreateAssignment)
	courseGroup.Get("/:courseId/assignments", middleware.JWTMiddleware, courseValidators.CourseID(), examControllers.ListAssignments)

	examGroup := app.Group("/exam")
	examGroup.Get("/list", middleware.JWTMiddleware, examControllers.GetExams)
	examGroup.Get("/:examId", middleware.JWTMiddleware, examValidators.ExamID(), examControllers.GetExamDetails)
	examGroup.Put("/:examId", middleware.JWTMiddleware, staff, examValidators.ExamID(), examValidators.CreateExam(), examControllers.UpdateExam)
	examGroup.Post("/:examId/publish", middleware.JWTMiddleware, staff, examValidators.ExamID(), examControllers.PublishExam)
	examGroup.Delete("/:examId", middleware.JWTMiddleware, staff, examValidators.ExamID(), examControllers.DeleteExam)
	examGroup.Get("/:examId/results", middleware.JWTMiddleware, staff, examValidators.ExamID(), examControllers.GetExamResults)

	// Question management
	examGroup.Post("/:examId/question", middleware.JWTMiddleware, staff, examValidators.ExamID(), examValidators.CreateQuestion(), examControllers.AddQuestion)
	examGroup.Get("/:examId/questions", middleware.JWTMiddleware, staff, examValidators.ExamID(), examControllers.ListQuestions)
	examGroup.Put("/:examId/question/:questionId", middleware.JWTMiddleware, staff, examValidators.ExamID(), examValidators.QuestionID(), examValidators.CreateQuestion(), examControllers.UpdateQuestion)
	examGroup.Delete("/:examId/question/:questionId", middleware.JWTMiddleware, staff, examValidators.ExamID(), examValidators.QuestionID(), examControllers.DeleteQuestion)
	examGroup.Post("/:examId/questions/import", middleware.JWTMiddleware, staff, examValidators.ExamID(), examControllers.ImportQuestions)

	// Attempts
	examGroup.Post("/:examId/attempt", middleware.JWTMiddleware, student, examValidators.ExamID(), examControllers.StartAttempt)
	examGroup.Get("/:examId/attempts", middleware.JWTMiddleware, student, examValidators.ExamID(), examControllers.ListMyAttempts)

	attemptGroup := app.Group("/attempt")
	attemptGroup.Post("/:attemptId/submit", middleware.JWTMiddleware, student, examValidators.AttemptID(), examControllers.SubmitAttempt)
	attemptGroup.Get("/:attemptId", middleware.JWTMiddleware, student, examValidators.AttemptID(), examControllers.GetAttempt)
	attemptGroup.Patch("/:attemptId/answer/:answerId/grade", middleware.JWTMiddleware, staff, examValidators.AttemptID(), examValidators.AnswerID(), examValidators.GradeAnswer(), examControllers.GradeAnswer)

	// Assignments
	assignmentGroup := app.Group("/assignment")
	assignmentGroup.Put("/:assignmentId", middleware.JWTMiddleware, staff, examValidators.AssignmentID(), examValidators.CreateAssignment(), examControllers.UpdateAssignment)
	assignmentGroup.Post("/:assignmentId/publish", middleware.JWTMiddleware, staff, examValidators.AssignmentID(), examControllers.PublishAssignment)
	assignmentGroup.Delete("/:assignmentId", middleware.JWTMiddleware, staff, examValidators.AssignmentID(), examControllers.DeleteAssignment)
	assignmentGroup.Post("/:assignmentId/question", middleware.JWTMiddleware, staff, examValidators.AssignmentID(), examValidators.CreateQuestion(), examControllers.AddAssignmentQuestion)
	assignmentGroup.Post("/:assignmentId/submit", middleware.JWTMiddleware, student, examValidators.AssignmentID(), examControllers.SubmitAssignment)
	assignmentGroup.Get("/:assignmentId/submissions", middleware.JWTMiddleware, staff, examValidators.AssignmentID(), examControllers.ListSubmissions)

	submissionGroup := app.Group("/submission")
	submissionGroup.Patch("/:submissionId/grade", middleware.JWTMiddleware, staff, examValidators.SubmissionID(), examControllers.GradeSubmission)
}
