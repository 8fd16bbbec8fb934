package userController_test

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"elearn/config"
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"
	examModels "elearn/models/exam"
	userRoutes "elearn/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupUserTest(t *testing.T) *fiber.App {
	config.AppConfig = &config.Config{
		JWTKey:            "testsecret",
		SaltRound:         4,
		AccessTokenHours:  1,
		RefreshTokenHours: 24,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	userRoutes.SetupUserRoutes(app)
	return app
}

func newUser(t *testing.T, name string, role models.Role) (models.User, string) {
	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := database.Database.Db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, string(user.Role), user.Email)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

func getJSON(t *testing.T, app *fiber.App, url, token string) (int, map[string]interface{}) {
	req := httptest.NewRequest("GET", url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var parsed map[string]interface{}
	json.NewDecoder(res.Body).Decode(&parsed)
	return res.StatusCode, parsed
}

// seedTaughtCourse builds a published course with one exam, one enrollment and
// one completed attempt for the given instructor.
func seedTaughtCourse(t *testing.T, instructor, student models.User, title string) {
	db := database.Database.Db

	course := courseModels.Course{Title: title, Description: "A course", InstructorID: instructor.ID, IsPublished: true}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	db.Create(&courseModels.Enrollment{StudentID: student.ID, CourseID: course.ID, Status: courseModels.EnrollmentEnrolled})

	exam := examModels.Exam{
		CourseID:    course.ID,
		Title:       title + " exam",
		Duration:    30,
		TotalMarks:  10,
		StartTime:   time.Now().Add(-time.Hour),
		EndTime:     time.Now().Add(time.Hour),
		IsPublished: true,
	}
	db.Create(&exam)

	db.Create(&examModels.ExamAttempt{
		ExamID:        exam.ID,
		StudentID:     student.ID,
		AttemptNumber: 1,
		Status:        examModels.AttemptCompleted,
		StartTime:     time.Now().Add(-30 * time.Minute),
		Score:         8,
	})
}

func TestStaffDashboardScopedToTeacher(t *testing.T) {
	app := setupUserTest(t)

	teacherA, tokenA := newUser(t, "dashboard-teacher-a", models.RoleTeacher)
	teacherB, _ := newUser(t, "dashboard-teacher-b", models.RoleTeacher)
	studentA, _ := newUser(t, "dashboard-student-a", models.RoleStudent)
	studentB, _ := newUser(t, "dashboard-student-b", models.RoleStudent)
	_, adminToken := newUser(t, "dashboard-admin", models.RoleAdmin)

	seedTaughtCourse(t, teacherA, studentA, "Physics")
	seedTaughtCourse(t, teacherB, studentB, "History")

	// A teacher only sees rows that roll up to their own courses
	status, body := getJSON(t, app, "/staff/dashboard", tokenA)
	assert.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_courses"])
	assert.Equal(t, float64(1), data["total_enrollments"])
	assert.Equal(t, float64(1), data["total_exams"])
	assert.Equal(t, float64(1), data["total_attempts"])
	assert.Len(t, data["recent_enrollments"].([]interface{}), 1)

	// Admins see the platform-wide totals
	status, body = getJSON(t, app, "/staff/dashboard", adminToken)
	assert.Equal(t, fiber.StatusOK, status)

	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_courses"])
	assert.Equal(t, float64(2), data["total_enrollments"])
	assert.Equal(t, float64(2), data["total_attempts"])
}
