package progressController_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"elearn/config"
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"
	progressModels "elearn/models/progress"
	progressRoutes "elearn/routers/progressRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupProgressTest(t *testing.T) *fiber.App {
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
	progressRoutes.SetupProgressRoutes(app)
	return app
}

// seedCourseWithLessons builds a course with two modules holding three
// lessons total and enrolls the student.
func seedCourseWithLessons(t *testing.T, student models.User) (courseModels.Course, []courseModels.Lesson) {
	db := database.Database.Db

	teacher := models.User{Name: "progress-teacher-" + t.Name(), Email: t.Name() + "-teacher@example.com", Password: "x", Role: models.RoleTeacher}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("failed to create teacher: %v", err)
	}

	course := courseModels.Course{Title: "History", Description: "World history", InstructorID: teacher.ID, IsPublished: true}
	db.Create(&course)
	db.Create(&courseModels.Enrollment{StudentID: student.ID, CourseID: course.ID, Status: courseModels.EnrollmentEnrolled})

	moduleA := courseModels.Module{CourseID: course.ID, Title: "Antiquity", OrderIndex: 1}
	db.Create(&moduleA)
	moduleB := courseModels.Module{CourseID: course.ID, Title: "Middle Ages", OrderIndex: 2}
	db.Create(&moduleB)

	lessons := []courseModels.Lesson{
		{ModuleID: moduleA.ID, Title: "Rome", OrderIndex: 1},
		{ModuleID: moduleA.ID, Title: "Greece", OrderIndex: 2},
		{ModuleID: moduleB.ID, Title: "Feudalism", OrderIndex: 1},
	}
	for i := range lessons {
		db.Create(&lessons[i])
	}
	return course, lessons
}

func progressRequest(t *testing.T, app *fiber.App, method, url, token string, body interface{}) (int, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
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

func newStudent(t *testing.T, name string) (models.User, string) {
	user := models.User{Name: name, Email: name + "@example.com", Password: "x", Role: models.RoleStudent}
	if err := database.Database.Db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	token, err := middleware.GenerateJWT(user.ID, user.Name, string(user.Role), user.Email)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

func TestCompleteLessonRecomputesPercentage(t *testing.T) {
	app := setupProgressTest(t)
	student, token := newStudent(t, "progress-student1")
	course, lessons := seedCourseWithLessons(t, student)

	status, body := progressRequest(t, app, "POST", fmt.Sprintf("/lesson/%d/complete", lessons[0].ID), token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(33), data["progress_percentage"])

	status, body = progressRequest(t, app, "POST", fmt.Sprintf("/lesson/%d/complete", lessons[1].ID), token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(67), data["progress_percentage"])

	status, body = progressRequest(t, app, "POST", fmt.Sprintf("/lesson/%d/complete", lessons[2].ID), token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["progress_percentage"])
	assert.Equal(t, true, data["is_completed"])

	// Enrollment follows the progress record
	var enrollment courseModels.Enrollment
	database.Database.Db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status)
	assert.NotNil(t, enrollment.CompletedAt)
	assert.Equal(t, float64(100), enrollment.Progress)
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	app := setupProgressTest(t)
	student, token := newStudent(t, "progress-student2")
	_, lessons := seedCourseWithLessons(t, student)

	progressRequest(t, app, "POST", fmt.Sprintf("/lesson/%d/complete", lessons[0].ID), token, nil)
	status, body := progressRequest(t, app, "POST", fmt.Sprintf("/lesson/%d/complete", lessons[0].ID), token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(33), data["progress_percentage"])

	var progress progressModels.CourseProgress
	database.Database.Db.Where("student_id = ?", student.ID).First(&progress)

	var completedCount int64
	database.Database.Db.Model(&progressModels.CompletedLesson{}).Where("course_progress_id = ?", progress.ID).Count(&completedCount)
	assert.Equal(t, int64(1), completedCount)
}

func TestCompleteLessonRequiresEnrollment(t *testing.T) {
	app := setupProgressTest(t)
	enrolled, _ := newStudent(t, "progress-student3")
	_, lessons := seedCourseWithLessons(t, enrolled)

	_, outsiderToken := newStudent(t, "progress-outsider")
	status, _ := progressRequest(t, app, "POST", fmt.Sprintf("/lesson/%d/complete", lessons[0].ID), outsiderToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestUpdateLessonProgressAccumulatesTime(t *testing.T) {
	app := setupProgressTest(t)
	student, token := newStudent(t, "progress-student4")
	_, lessons := seedCourseWithLessons(t, student)

	url := fmt.Sprintf("/lesson/%d/progress", lessons[0].ID)
	status, _ := progressRequest(t, app, "PATCH", url, token, fiber.Map{"time_spent": 30, "last_position": 30})
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = progressRequest(t, app, "PATCH", url, token, fiber.Map{"time_spent": 45, "last_position": 75})
	assert.Equal(t, fiber.StatusOK, status)

	var lessonProgress progressModels.LessonProgress
	database.Database.Db.Where("student_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).First(&lessonProgress)
	assert.Equal(t, 75, lessonProgress.TimeSpent)
	assert.Equal(t, 75, lessonProgress.LastPosition)
	assert.False(t, lessonProgress.IsCompleted)
}

func TestGetCourseProgressCreatesRecord(t *testing.T) {
	app := setupProgressTest(t)
	student, token := newStudent(t, "progress-student5")
	course, _ := seedCourseWithLessons(t, student)

	status, body := progressRequest(t, app, "GET", fmt.Sprintf("/progress/course/%d", course.ID), token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total_lessons"])

	progress := data["progress"].(map[string]interface{})
	assert.Equal(t, float64(0), progress["progress_percentage"])
}
