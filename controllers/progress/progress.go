package progressController

import (
	"math"
	"time"

	"elearn/database"
	"elearn/middleware"
	courseModels "elearn/models/course"
	examModels "elearn/models/exam"
	progressModels "elearn/models/progress"
	"elearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// lessonBelongsToCourse resolves a lesson through its module and checks the
// owning course.
func lessonBelongsToCourse(db *gorm.DB, lessonID uint) (courseModels.Lesson, uint, error) {
	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return lesson, 0, err
	}

	var module courseModels.Module
	if err := db.Where("id = ? AND is_deleted = ?", lesson.ModuleID, false).First(&module).Error; err != nil {
		return lesson, 0, err
	}
	return lesson, module.CourseID, nil
}

// countCourseLessons counts non-deleted lessons across all modules of a course
func countCourseLessons(db *gorm.DB, courseID uint) int64 {
	var total int64
	db.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ? AND modules.is_deleted = ? AND lessons.is_deleted = ?", courseID, false, false).
		Count(&total)
	return total
}

// GetCourseProgress returns the student's progress record for a course,
// creating an empty one on first access.
func GetCourseProgress(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	if !isEnrolled(db, user.ID, uint(courseID)) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	var progress progressModels.CourseProgress
	if err := db.Where(progressModels.CourseProgress{StudentID: user.ID, CourseID: uint(courseID)}).
		FirstOrCreate(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	var completed []progressModels.CompletedLesson
	db.Where("course_progress_id = ?", progress.ID).Find(&completed)

	completedIDs := make([]uint, 0, len(completed))
	for _, cl := range completed {
		completedIDs = append(completedIDs, cl.LessonID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"progress":          progress,
		"completed_lessons": completedIDs,
		"total_lessons":     countCourseLessons(db, uint(courseID)),
	})
}

func isEnrolled(db *gorm.DB, studentID, courseID uint) bool {
	var count int64
	db.Model(&courseModels.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count)
	return count > 0
}

// UpdateLessonProgress records playback state for a lesson without marking
// it complete.
func UpdateLessonProgress(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	reqData, ok := c.Locals("validatedLessonProgress").(*struct {
		TimeSpent    int `json:"time_spent"`
		LastPosition int `json:"last_position"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	_, courseID, err := lessonBelongsToCourse(db, uint(lessonID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	if !isEnrolled(db, user.ID, courseID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	var lessonProgress progressModels.LessonProgress
	if err := db.Where(progressModels.LessonProgress{StudentID: user.ID, LessonID: uint(lessonID)}).
		FirstOrCreate(&lessonProgress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson progress!", nil)
	}

	lessonProgress.TimeSpent += reqData.TimeSpent
	lessonProgress.LastPosition = reqData.LastPosition

	if err := db.Save(&lessonProgress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson progress!", nil)
	}

	// Remember where the student left off in the course
	lid := uint(lessonID)
	db.Model(&progressModels.CourseProgress{}).
		Where("student_id = ? AND course_id = ?", user.ID, courseID).
		Update("last_accessed_lesson_id", &lid)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress updated!", lessonProgress)
}

// CompleteLesson marks a lesson complete and recomputes the course progress
// percentage. The whole read-modify-write runs under the per-student course
// lock and a transaction so concurrent completions never lose lessons.
func CompleteLesson(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	db := database.Database.Db

	lesson, courseID, err := lessonBelongsToCourse(db, uint(lessonID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	if !isEnrolled(db, user.ID, courseID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	unlock := utils.ProgressLocks.Lock(utils.ProgressKey("course", user.ID, courseID))
	defer unlock()

	var progress progressModels.CourseProgress
	courseCompleted := false

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(progressModels.CourseProgress{StudentID: user.ID, CourseID: courseID}).
			FirstOrCreate(&progress).Error; err != nil {
			return err
		}

		now := time.Now()

		var lessonProgress progressModels.LessonProgress
		if err := tx.Where(progressModels.LessonProgress{StudentID: user.ID, LessonID: lesson.ID}).
			FirstOrCreate(&lessonProgress).Error; err != nil {
			return err
		}
		if !lessonProgress.IsCompleted {
			lessonProgress.IsCompleted = true
			lessonProgress.CompletedAt = &now
			if err := tx.Save(&lessonProgress).Error; err != nil {
				return err
			}
		}

		// Completing the same lesson twice is a no-op
		var existing progressModels.CompletedLesson
		if err := tx.Where(progressModels.CompletedLesson{CourseProgressID: progress.ID, LessonID: lesson.ID}).
			FirstOrCreate(&existing).Error; err != nil {
			return err
		}

		var completedCount int64
		if err := tx.Model(&progressModels.CompletedLesson{}).
			Where("course_progress_id = ?", progress.ID).
			Count(&completedCount).Error; err != nil {
			return err
		}

		totalLessons := countCourseLessons(tx, courseID)

		percentage := 0
		if totalLessons > 0 {
			percentage = int(math.Round(float64(completedCount) * 100 / float64(totalLessons)))
		}

		progress.ProgressPercentage = percentage
		progress.LastAccessedLessonID = &lesson.ID

		if percentage >= 100 && !progress.IsCompleted {
			progress.IsCompleted = true
			progress.CompletedAt = &now
			courseCompleted = true
		}

		if err := tx.Save(&progress).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"progress": float64(percentage)}
		if courseCompleted {
			updates["status"] = courseModels.EnrollmentCompleted
			updates["completed_at"] = &now
		}
		return tx.Model(&courseModels.Enrollment{}).
			Where("student_id = ? AND course_id = ?", user.ID, courseID).
			Updates(updates).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete lesson!", nil)
	}

	if courseCompleted {
		var course courseModels.Course
		if err := db.First(&course, courseID).Error; err == nil {
			go utils.SendCourseCompletionEmail(user.Email, user.Name, course.Title)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", progress)
}

// GetExamProgress returns the student's best-score summary for an exam
func GetExamProgress(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)

	db := database.Database.Db

	var exam examModels.Exam
	if err := db.Where("id = ? AND is_deleted = ?", examID, false).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	var progress progressModels.ExamProgress
	if err := db.Where("student_id = ? AND exam_id = ?", user.ID, examID).First(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "No attempts yet!", fiber.Map{
			"exam_id":       exam.ID,
			"attempt_count": 0,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam progress fetched successfully!", progress)
}

// GetMyProgress lists course progress across all of the student's enrollments
func GetMyProgress(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("student_id = ?", user.ID).Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	type courseEntry struct {
		Course   courseModels.Course            `json:"course"`
		Progress *progressModels.CourseProgress `json:"progress"`
		Status   string                         `json:"status"`
	}

	entries := make([]courseEntry, 0, len(enrollments))
	for _, enrollment := range enrollments {
		var course courseModels.Course
		if err := db.Where("id = ? AND is_deleted = ?", enrollment.CourseID, false).First(&course).Error; err != nil {
			continue
		}

		entry := courseEntry{Course: course, Status: enrollment.Status}

		var progress progressModels.CourseProgress
		if err := db.Where("student_id = ? AND course_id = ?", user.ID, enrollment.CourseID).
			First(&progress).Error; err == nil {
			entry.Progress = &progress
		}
		entries = append(entries, entry)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", entries)
}

// LearningStats aggregates a student's activity for the dashboard
func LearningStats(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var enrolledCourses, completedCourses, completedLessons, examAttempts int64
	db.Model(&courseModels.Enrollment{}).Where("student_id = ?", user.ID).Count(&enrolledCourses)
	db.Model(&courseModels.Enrollment{}).Where("student_id = ? AND status = ?", user.ID, courseModels.EnrollmentCompleted).Count(&completedCourses)
	db.Model(&progressModels.LessonProgress{}).Where("student_id = ? AND is_completed = ?", user.ID, true).Count(&completedLessons)
	db.Model(&examModels.ExamAttempt{}).Where("student_id = ? AND status <> ?", user.ID, examModels.AttemptInProgress).Count(&examAttempts)

	var totalTimeSpent int64
	db.Model(&progressModels.LessonProgress{}).Where("student_id = ?", user.ID).
		Select("COALESCE(SUM(time_spent), 0)").Scan(&totalTimeSpent)

	var averageBestScore float64
	db.Model(&progressModels.ExamProgress{}).Where("student_id = ? AND best_score IS NOT NULL", user.ID).
		Select("COALESCE(AVG(best_score), 0)").Scan(&averageBestScore)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learning stats fetched successfully!", fiber.Map{
		"enrolled_courses":   enrolledCourses,
		"completed_courses":  completedCourses,
		"completed_lessons":  completedLessons,
		"exam_attempts":      examAttempts,
		"time_spent":         totalTimeSpent,
		"average_best_score": averageBestScore,
	})
}

// RecentActivity returns the student's latest lesson and exam activity
func RecentActivity(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var lessons []progressModels.LessonProgress
	db.Where("student_id = ?", user.ID).Order("updated_at desc").Limit(10).Find(&lessons)

	var attempts []examModels.ExamAttempt
	db.Where("student_id = ?", user.ID).Order("updated_at desc").Limit(10).Find(&attempts)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Recent activity fetched successfully!", fiber.Map{
		"lessons":  lessons,
		"attempts": attempts,
	})
}
