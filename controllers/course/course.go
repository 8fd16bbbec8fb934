package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// loadOwnedCourse fetches a course and verifies the given user instructs it.
// Handlers use it so every mutation independently re-derives ownership.
func loadOwnedCourse(db *gorm.DB, courseID int, user models.User) (courseModels.Course, int) {
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return course, fiber.StatusNotFound
	}
	if course.InstructorID != user.ID {
		return course, fiber.StatusForbidden
	}
	return course, fiber.StatusOK
}

// GetAllCourses lists courses: students see the published catalog, teachers
// see their own courses, admins see everything.
func GetAllCourses(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, _ := c.Locals("validatedCourseList").(*struct {
		Page     *int   `json:"page"`
		Limit    *int   `json:"limit"`
		Search   string `json:"search"`
		Category string `json:"category"`
		Level    string `json:"level"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)

	switch user.Role {
	case models.RoleTeacher:
		db = db.Where("instructor_id = ?", user.ID)
	case models.RoleStudent:
		db = db.Where("is_published = ?", true)
	}

	if reqData != nil {
		if reqData.Search != "" {
			like := "%" + reqData.Search + "%"
			db = db.Where("title LIKE ? OR description LIKE ?", like, like)
		}
		if reqData.Category != "" {
			db = db.Where("category = ?", reqData.Category)
		}
		if reqData.Level != "" {
			db = db.Where("level = ?", reqData.Level)
		}
	}

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// GetCourseDetails returns one course with its modules, lessons and exams
func GetCourseDetails(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	var course courseModels.Course
	query := db.Where("id = ? AND is_deleted = ?", courseID, false)
	if user.Role == models.RoleStudent {
		query = query.Where("is_published = ?", true)
	}
	if err := query.First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var modules []courseModels.Module
	db.Where("course_id = ? AND is_deleted = ?", course.ID, false).Order("order_index asc").Find(&modules)

	type ModuleWithLessons struct {
		courseModels.Module
		Lessons []courseModels.Lesson `json:"lessons"`
	}

	result := make([]ModuleWithLessons, len(modules))
	for i, mod := range modules {
		var lessons []courseModels.Lesson
		db.Where("module_id = ? AND is_deleted = ?", mod.ID, false).Order("order_index asc").Find(&lessons)
		result[i] = ModuleWithLessons{Module: mod, Lessons: lessons}
	}

	var enrollmentCount int64
	db.Model(&courseModels.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollmentCount)

	var avgRating float64
	db.Model(&courseModels.CourseRating{}).Where("course_id = ?", course.ID).
		Select("COALESCE(AVG(rating), 0)").Scan(&avgRating)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":           course,
		"modules":          result,
		"enrollment_count": enrollmentCount,
		"average_rating":   avgRating,
	})
}
