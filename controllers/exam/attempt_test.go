package examController_test

import (
	"bytes"
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
	progressModels "elearn/models/progress"
	examRoutes "elearn/routers/examRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupExamTest(t *testing.T) *fiber.App {
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
	examRoutes.SetupExamRoutes(app)
	return app
}

func createTestUser(t *testing.T, name string, role models.Role) (models.User, string) {
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

// seedExam builds a published exam with one MCQ worth 5, one true/false worth
// 5 and one essay worth 10, and enrolls the student.
func seedExam(t *testing.T, instructor, student models.User) (examModels.Exam, []examModels.Question) {
	db := database.Database.Db

	course := courseModels.Course{Title: "Algebra", Description: "Linear algebra basics", InstructorID: instructor.ID, IsPublished: true}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	if err := db.Create(&courseModels.Enrollment{StudentID: student.ID, CourseID: course.ID, Status: courseModels.EnrollmentEnrolled}).Error; err != nil {
		t.Fatalf("failed to enroll student: %v", err)
	}

	exam := examModels.Exam{
		CourseID:     course.ID,
		Title:        "Midterm",
		Duration:     60,
		TotalMarks:   20,
		PassingMarks: 10,
		StartTime:    time.Now().Add(-time.Hour),
		EndTime:      time.Now().Add(time.Hour),
		IsPublished:  true,
	}
	if err := db.Create(&exam).Error; err != nil {
		t.Fatalf("failed to create exam: %v", err)
	}

	mcq := examModels.Question{ExamID: exam.ID, QuestionText: "2+2?", QuestionType: examModels.QuestionMultipleChoice, Marks: 5, OrderIndex: 1}
	db.Create(&mcq)
	db.Create(&examModels.Choice{QuestionID: mcq.ID, ChoiceText: "3", IsCorrect: false})
	right := examModels.Choice{QuestionID: mcq.ID, ChoiceText: "4", IsCorrect: true}
	db.Create(&right)

	tf := examModels.Question{ExamID: exam.ID, QuestionText: "0 is even.", QuestionType: examModels.QuestionTrueFalse, Marks: 5, OrderIndex: 2}
	db.Create(&tf)
	tfRight := examModels.Choice{QuestionID: tf.ID, ChoiceText: "True", IsCorrect: true}
	db.Create(&tfRight)
	db.Create(&examModels.Choice{QuestionID: tf.ID, ChoiceText: "False", IsCorrect: false})

	essay := examModels.Question{ExamID: exam.ID, QuestionText: "Explain rank.", QuestionType: examModels.QuestionEssay, Marks: 10, OrderIndex: 3}
	db.Create(&essay)

	return exam, []examModels.Question{mcq, tf, essay}
}

func doRequest(t *testing.T, app *fiber.App, method, url, token string, body interface{}) (int, map[string]interface{}) {
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

func startAttempt(t *testing.T, app *fiber.App, exam examModels.Exam, token string) uint {
	status, body := doRequest(t, app, "POST", fmt.Sprintf("/exam/%d/attempt", exam.ID), token, nil)
	if status != fiber.StatusCreated && status != fiber.StatusOK {
		t.Fatalf("failed to start attempt: status %d", status)
	}
	data := body["data"].(map[string]interface{})
	return uint(data["ID"].(float64))
}

func correctChoice(t *testing.T, questionID uint) uint {
	var choice examModels.Choice
	if err := database.Database.Db.Where("question_id = ? AND is_correct = ?", questionID, true).First(&choice).Error; err != nil {
		t.Fatalf("no correct choice for question %d", questionID)
	}
	return choice.ID
}

func wrongChoice(t *testing.T, questionID uint) uint {
	var choice examModels.Choice
	if err := database.Database.Db.Where("question_id = ? AND is_correct = ?", questionID, false).First(&choice).Error; err != nil {
		t.Fatalf("no wrong choice for question %d", questionID)
	}
	return choice.ID
}

func TestSubmitAttemptRejectsPartialSubmission(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "teacher1", models.RoleTeacher)
	student, studentToken := createTestUser(t, "student1", models.RoleStudent)
	exam, questions := seedExam(t, instructor, student)

	attemptID := startAttempt(t, app, exam, studentToken)

	mcqChoice := correctChoice(t, questions[0].ID)
	status, body := doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", attemptID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": mcqChoice},
		},
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	data := body["data"].(map[string]interface{})
	missing := data["missing_questions"].([]interface{})
	assert.Len(t, missing, 2)

	// Nothing was written; the attempt is still open
	var attempt examModels.ExamAttempt
	database.Database.Db.First(&attempt, attemptID)
	assert.Equal(t, examModels.AttemptInProgress, attempt.Status)

	var answerCount int64
	database.Database.Db.Model(&examModels.Answer{}).Where("attempt_id = ?", attemptID).Count(&answerCount)
	assert.Zero(t, answerCount)
}

func TestSubmitAttemptRejectsDuplicateAnswers(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "teacher2", models.RoleTeacher)
	student, studentToken := createTestUser(t, "student2", models.RoleStudent)
	exam, questions := seedExam(t, instructor, student)

	attemptID := startAttempt(t, app, exam, studentToken)

	mcqChoice := correctChoice(t, questions[0].ID)
	status, body := doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", attemptID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": mcqChoice},
			{"question_id": questions[0].ID, "choice_id": mcqChoice},
			{"question_id": questions[1].ID, "choice_id": correctChoice(t, questions[1].ID)},
			{"question_id": questions[2].ID, "answer_text": "Rank is the dimension of the row space."},
		},
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["duplicate_questions"])
}

func TestSubmitAttemptGradesChoiceQuestions(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "teacher3", models.RoleTeacher)
	student, studentToken := createTestUser(t, "student3", models.RoleStudent)
	exam, questions := seedExam(t, instructor, student)

	attemptID := startAttempt(t, app, exam, studentToken)

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", attemptID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": correctChoice(t, questions[0].ID)},
			{"question_id": questions[1].ID, "choice_id": wrongChoice(t, questions[1].ID)},
			{"question_id": questions[2].ID, "answer_text": "Rank is the dimension of the row space."},
		},
	})
	assert.Equal(t, fiber.StatusOK, status)

	// Essay answer keeps the attempt in pending grading, choices already scored
	var attempt examModels.ExamAttempt
	database.Database.Db.First(&attempt, attemptID)
	assert.Equal(t, examModels.AttemptPendingGrading, attempt.Status)
	assert.Equal(t, 5, attempt.Score)

	var mcqAnswer examModels.Answer
	database.Database.Db.Where("attempt_id = ? AND question_id = ?", attemptID, questions[0].ID).First(&mcqAnswer)
	assert.True(t, mcqAnswer.IsGraded)
	assert.Equal(t, 5, *mcqAnswer.MarksObtained)

	var tfAnswer examModels.Answer
	database.Database.Db.Where("attempt_id = ? AND question_id = ?", attemptID, questions[1].ID).First(&tfAnswer)
	assert.True(t, tfAnswer.IsGraded)
	assert.Equal(t, 0, *tfAnswer.MarksObtained)
}

func TestSubmitAttemptTwiceConflicts(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "teacher4", models.RoleTeacher)
	student, studentToken := createTestUser(t, "student4", models.RoleStudent)
	exam, questions := seedExam(t, instructor, student)

	attemptID := startAttempt(t, app, exam, studentToken)

	answers := fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": correctChoice(t, questions[0].ID)},
			{"question_id": questions[1].ID, "choice_id": correctChoice(t, questions[1].ID)},
			{"question_id": questions[2].ID, "answer_text": "Rank."},
		},
	}

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", attemptID), studentToken, answers)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", attemptID), studentToken, answers)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestGradeAnswerFlow(t *testing.T) {
	app := setupExamTest(t)
	instructor, instructorToken := createTestUser(t, "teacher5", models.RoleTeacher)
	_, otherToken := createTestUser(t, "teacher6", models.RoleTeacher)
	student, studentToken := createTestUser(t, "student5", models.RoleStudent)
	exam, questions := seedExam(t, instructor, student)

	attemptID := startAttempt(t, app, exam, studentToken)
	doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", attemptID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": correctChoice(t, questions[0].ID)},
			{"question_id": questions[1].ID, "choice_id": correctChoice(t, questions[1].ID)},
			{"question_id": questions[2].ID, "answer_text": "Rank is the dimension of the row space."},
		},
	})

	var essayAnswer examModels.Answer
	database.Database.Db.Where("attempt_id = ? AND question_id = ?", attemptID, questions[2].ID).First(&essayAnswer)

	gradeURL := fmt.Sprintf("/attempt/%d/answer/%d/grade", attemptID, essayAnswer.ID)

	// Only the owning instructor may grade
	status, _ := doRequest(t, app, "PATCH", gradeURL, otherToken, fiber.Map{"marks": 8})
	assert.Equal(t, fiber.StatusForbidden, status)

	// Marks above the question's worth are rejected
	status, _ = doRequest(t, app, "PATCH", gradeURL, instructorToken, fiber.Map{"marks": 11})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doRequest(t, app, "PATCH", gradeURL, instructorToken, fiber.Map{"marks": 8, "feedback": "Good answer"})
	assert.Equal(t, fiber.StatusOK, status)

	// Grading the last open answer completes the attempt
	var attempt examModels.ExamAttempt
	database.Database.Db.First(&attempt, attemptID)
	assert.Equal(t, examModels.AttemptCompleted, attempt.Status)
	assert.Equal(t, 18, attempt.Score)

	var progress progressModels.ExamProgress
	database.Database.Db.Where("student_id = ? AND exam_id = ?", student.ID, exam.ID).First(&progress)
	assert.Equal(t, 18, *progress.BestScore)
	assert.Equal(t, 1, progress.AttemptCount)
}

func TestBestScoreKeptAcrossAttempts(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "teacher7", models.RoleTeacher)
	student, studentToken := createTestUser(t, "student7", models.RoleStudent)
	exam, questions := seedExam(t, instructor, student)

	// First attempt scores 10 on the choice questions
	first := startAttempt(t, app, exam, studentToken)
	doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", first), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": correctChoice(t, questions[0].ID)},
			{"question_id": questions[1].ID, "choice_id": correctChoice(t, questions[1].ID)},
			{"question_id": questions[2].ID, "choice_id": nil},
		},
	})

	// Pending grading does not count toward the best score yet; grade it to 0
	var essayAnswer examModels.Answer
	database.Database.Db.Where("attempt_id = ? AND question_id = ?", first, questions[2].ID).First(&essayAnswer)
	instructorToken, _ := middleware.GenerateJWT(instructor.ID, instructor.Name, string(instructor.Role), instructor.Email)
	doRequest(t, app, "PATCH", fmt.Sprintf("/attempt/%d/answer/%d/grade", first, essayAnswer.ID), instructorToken, fiber.Map{"marks": 0})

	// Second attempt scores 5
	second := startAttempt(t, app, exam, studentToken)
	assert.NotEqual(t, first, second)
	doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", second), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": correctChoice(t, questions[0].ID)},
			{"question_id": questions[1].ID, "choice_id": wrongChoice(t, questions[1].ID)},
			{"question_id": questions[2].ID, "choice_id": nil},
		},
	})
	var secondEssay examModels.Answer
	database.Database.Db.Where("attempt_id = ? AND question_id = ?", second, questions[2].ID).First(&secondEssay)
	doRequest(t, app, "PATCH", fmt.Sprintf("/attempt/%d/answer/%d/grade", second, secondEssay.ID), instructorToken, fiber.Map{"marks": 0})

	var progress progressModels.ExamProgress
	database.Database.Db.Where("student_id = ? AND exam_id = ?", student.ID, exam.ID).First(&progress)
	assert.Equal(t, 10, *progress.BestScore)
	assert.Equal(t, 2, progress.AttemptCount)

	var secondAttempt examModels.ExamAttempt
	database.Database.Db.First(&secondAttempt, second)
	assert.Equal(t, 2, secondAttempt.AttemptNumber)
}

func TestStartAttemptResumesOpenAttempt(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "teacher7", models.RoleTeacher)
	student, studentToken := createTestUser(t, "student7", models.RoleStudent)
	exam, _ := seedExam(t, instructor, student)

	status, body := doRequest(t, app, "POST", fmt.Sprintf("/exam/%d/attempt", exam.ID), studentToken, nil)
	assert.Equal(t, fiber.StatusCreated, status)
	first := uint(body["data"].(map[string]interface{})["ID"].(float64))

	// A second start resumes the open attempt instead of stacking one
	status, body = doRequest(t, app, "POST", fmt.Sprintf("/exam/%d/attempt", exam.ID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, first, uint(body["data"].(map[string]interface{})["ID"].(float64)))

	var count int64
	database.Database.Db.Model(&examModels.ExamAttempt{}).
		Where("exam_id = ? AND student_id = ?", exam.ID, student.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitAttemptPastDeadlineTimesOut(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "teacher8", models.RoleTeacher)
	student, studentToken := createTestUser(t, "student8", models.RoleStudent)
	exam, questions := seedExam(t, instructor, student)

	attemptID := startAttempt(t, app, exam, studentToken)

	// Push the start past the whole duration budget
	database.Database.Db.Model(&examModels.ExamAttempt{}).Where("id = ?", attemptID).
		Update("start_time", time.Now().Add(-2*time.Hour))

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/attempt/%d/submit", attemptID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": correctChoice(t, questions[0].ID)},
			{"question_id": questions[1].ID, "choice_id": correctChoice(t, questions[1].ID)},
			{"question_id": questions[2].ID, "answer_text": "Too late."},
		},
	})
	assert.Equal(t, fiber.StatusConflict, status)

	var attempt examModels.ExamAttempt
	database.Database.Db.First(&attempt, attemptID)
	assert.Equal(t, examModels.AttemptTimedOut, attempt.Status)

	var answerCount int64
	database.Database.Db.Model(&examModels.Answer{}).Where("attempt_id = ?", attemptID).Count(&answerCount)
	assert.Equal(t, int64(0), answerCount)
}
