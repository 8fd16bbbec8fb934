package userController

import (
	"time"

	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"
	examModels "elearn/models/exam"

	"github.com/gofiber/fiber/v2"
)

func GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProfile").(*struct {
		Name              string     `json:"name"`
		Bio               string     `json:"bio"`
		PhoneNumber       string     `json:"phone_number"`
		Address           string     `json:"address"`
		DateOfBirth       *time.Time `json:"date_of_birth"`
		ProfilePictureURL string     `json:"profile_picture_url"`
		InstitutionName   string     `json:"institution_name"`
		ExaminationTypeID *uint      `json:"examination_type_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{
		"bio":                 reqData.Bio,
		"phone_number":        reqData.PhoneNumber,
		"address":             reqData.Address,
		"profile_picture_url": reqData.ProfilePictureURL,
		"institution_name":    reqData.InstitutionName,
	}
	if reqData.Name != "" {
		updates["name"] = reqData.Name
	}
	if reqData.DateOfBirth != nil {
		updates["date_of_birth"] = reqData.DateOfBirth
	}
	if reqData.ExaminationTypeID != nil {
		var examType models.ExaminationType
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", *reqData.ExaminationTypeID, false).First(&examType).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Examination type not found!", nil)
		}
		updates["examination_type_id"] = reqData.ExaminationTypeID
	}

	if err := database.Database.Db.Model(&user).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", user)
}

// ListExaminationTypes lists the examination types students can register under
func ListExaminationTypes(c *fiber.Ctx) error {
	var types []models.ExaminationType
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("name asc").Find(&types).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch examination types!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Examination types fetched successfully!", types)
}

// CreateExaminationType is admin-only taxonomy management
func CreateExaminationType(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedExaminationType").(*struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := database.Database.Db.Where("name = ? AND is_deleted = ?", reqData.Name, false).First(&models.ExaminationType{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Examination type already exists!", nil)
	}

	examType := models.ExaminationType{
		Name:        reqData.Name,
		Description: reqData.Description,
	}

	if err := database.Database.Db.Create(&examType).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create examination type!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Examination type created!", examType)
}

// StaffDashboardStats aggregates platform counts for the staff dashboard
func StaffDashboardStats(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var totalStudents, totalCourses, totalEnrollments, totalExams, totalAttempts int64

	db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", models.RoleStudent, false).Count(&totalStudents)

	courseQuery := db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)
	examQuery := db.Model(&examModels.Exam{}).Where("exams.is_deleted = ?", false)
	enrollQuery := db.Model(&courseModels.Enrollment{})
	attemptQuery := db.Model(&examModels.ExamAttempt{})
	scoreQuery := db.Model(&examModels.ExamAttempt{}).
		Where("exam_attempts.status = ?", examModels.AttemptCompleted)
	recentQuery := db.Model(&courseModels.Enrollment{}).
		Order("enrollments.created_at desc").Limit(10)

	if user.Role == models.RoleTeacher {
		// Teachers see stats scoped to their own courses
		courseQuery = courseQuery.Where("instructor_id = ?", user.ID)
		examQuery = examQuery.Joins("JOIN courses ON courses.id = exams.course_id").
			Where("courses.instructor_id = ?", user.ID)
		enrollQuery = enrollQuery.Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.instructor_id = ?", user.ID)
		attemptQuery = attemptQuery.Joins("JOIN exams ON exams.id = exam_attempts.exam_id").
			Joins("JOIN courses ON courses.id = exams.course_id").
			Where("courses.instructor_id = ?", user.ID)
		scoreQuery = scoreQuery.Joins("JOIN exams ON exams.id = exam_attempts.exam_id").
			Joins("JOIN courses ON courses.id = exams.course_id").
			Where("courses.instructor_id = ?", user.ID)
		recentQuery = recentQuery.Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.instructor_id = ?", user.ID)
	}
	courseQuery.Count(&totalCourses)
	examQuery.Count(&totalExams)
	enrollQuery.Count(&totalEnrollments)
	attemptQuery.Count(&totalAttempts)

	var avgScore float64
	scoreQuery.Select("COALESCE(AVG(exam_attempts.score), 0)").Scan(&avgScore)

	var recentEnrollments []courseModels.Enrollment
	recentQuery.Find(&recentEnrollments)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"total_students":      totalStudents,
		"total_courses":       totalCourses,
		"total_enrollments":   totalEnrollments,
		"total_exams":         totalExams,
		"total_attempts":      totalAttempts,
		"average_score":       avgScore,
		"recent_enrollments":  recentEnrollments,
	})
}

// StaffStudents lists students, optionally filtered to a teacher's courses
func StaffStudents(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var students []models.User
	query := db.Model(&models.User{}).Where("users.role = ? AND users.is_deleted = ?", models.RoleStudent, false)

	if user.Role == models.RoleTeacher {
		query = query.Joins("JOIN enrollments ON enrollments.student_id = users.id").
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.instructor_id = ?", user.ID).
			Distinct("users.*")
	}

	if err := query.Order("users.created_at desc").Find(&students).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch students!", nil)
	}

	for i := range students {
		students[i].Password = ""
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Students fetched successfully!", students)
}
