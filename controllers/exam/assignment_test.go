package examController_test

import (
	"fmt"
	"testing"
	"time"

	"elearn/database"
	"elearn/models"
	courseModels "elearn/models/course"
	examModels "elearn/models/exam"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// seedAssignment builds a published assignment with one MCQ worth 4 and one
// essay worth 6, and enrolls the student.
func seedAssignment(t *testing.T, instructor, student models.User, due time.Time) (examModels.Assignment, []examModels.AssignmentQuestion) {
	db := database.Database.Db

	course := courseModels.Course{Title: "Chemistry", Description: "Organic chemistry", InstructorID: instructor.ID, IsPublished: true}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	db.Create(&courseModels.Enrollment{StudentID: student.ID, CourseID: course.ID, Status: courseModels.EnrollmentEnrolled})

	assignment := examModels.Assignment{
		CourseID:    course.ID,
		Title:       "Homework 1",
		DueDate:     due,
		TotalPoints: 10,
		IsPublished: true,
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("failed to create assignment: %v", err)
	}

	mcq := examModels.AssignmentQuestion{AssignmentID: assignment.ID, QuestionText: "Formula of water?", QuestionType: examModels.QuestionMultipleChoice, Points: 4, OrderIndex: 1}
	db.Create(&mcq)
	db.Create(&examModels.AssignmentChoice{QuestionID: mcq.ID, ChoiceText: "H2O", IsCorrect: true})
	db.Create(&examModels.AssignmentChoice{QuestionID: mcq.ID, ChoiceText: "CO2", IsCorrect: false})

	essay := examModels.AssignmentQuestion{AssignmentID: assignment.ID, QuestionText: "Describe esterification.", QuestionType: examModels.QuestionEssay, Points: 6, OrderIndex: 2}
	db.Create(&essay)

	return assignment, []examModels.AssignmentQuestion{mcq, essay}
}

func assignmentChoice(t *testing.T, questionID uint, correct bool) uint {
	var choice examModels.AssignmentChoice
	if err := database.Database.Db.Where("question_id = ? AND is_correct = ?", questionID, correct).First(&choice).Error; err != nil {
		t.Fatalf("no choice for question %d", questionID)
	}
	return choice.ID
}

func TestSubmitAssignmentAutoGradesChoices(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "asg-teacher1", models.RoleTeacher)
	student, studentToken := createTestUser(t, "asg-student1", models.RoleStudent)
	assignment, questions := seedAssignment(t, instructor, student, time.Now().Add(24*time.Hour))

	status, body := doRequest(t, app, "POST", fmt.Sprintf("/assignment/%d/submit", assignment.ID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": assignmentChoice(t, questions[0].ID, true)},
			{"question_id": questions[1].ID, "answer_text": "An acid and an alcohol form an ester."},
		},
	})
	assert.Equal(t, fiber.StatusCreated, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["pending_grading"])

	submission := data["submission"].(map[string]interface{})
	assert.Equal(t, float64(4), submission["score"])
	assert.Equal(t, false, submission["is_graded"])
}

func TestSubmitAssignmentTwiceConflicts(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "asg-teacher2", models.RoleTeacher)
	student, studentToken := createTestUser(t, "asg-student2", models.RoleStudent)
	assignment, questions := seedAssignment(t, instructor, student, time.Now().Add(24*time.Hour))

	answers := fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": assignmentChoice(t, questions[0].ID, true)},
			{"question_id": questions[1].ID, "answer_text": "Esters."},
		},
	}

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/assignment/%d/submit", assignment.ID), studentToken, answers)
	assert.Equal(t, fiber.StatusCreated, status)

	status, _ = doRequest(t, app, "POST", fmt.Sprintf("/assignment/%d/submit", assignment.ID), studentToken, answers)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestSubmitAssignmentPastDueDate(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "asg-teacher3", models.RoleTeacher)
	student, studentToken := createTestUser(t, "asg-student3", models.RoleStudent)
	assignment, questions := seedAssignment(t, instructor, student, time.Now().Add(-time.Hour))

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/assignment/%d/submit", assignment.ID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": assignmentChoice(t, questions[0].ID, true)},
			{"question_id": questions[1].ID, "answer_text": "Esters."},
		},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSubmitAssignmentRequiresFullCoverage(t *testing.T) {
	app := setupExamTest(t)
	instructor, _ := createTestUser(t, "asg-teacher4", models.RoleTeacher)
	student, studentToken := createTestUser(t, "asg-student4", models.RoleStudent)
	assignment, questions := seedAssignment(t, instructor, student, time.Now().Add(24*time.Hour))

	status, body := doRequest(t, app, "POST", fmt.Sprintf("/assignment/%d/submit", assignment.ID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": assignmentChoice(t, questions[0].ID, true)},
		},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	data := body["data"].(map[string]interface{})
	missing := data["missing_questions"].([]interface{})
	assert.Len(t, missing, 1)
}

func TestGradeSubmissionCompletesScore(t *testing.T) {
	app := setupExamTest(t)
	instructor, instructorToken := createTestUser(t, "asg-teacher5", models.RoleTeacher)
	student, studentToken := createTestUser(t, "asg-student5", models.RoleStudent)
	assignment, questions := seedAssignment(t, instructor, student, time.Now().Add(24*time.Hour))

	doRequest(t, app, "POST", fmt.Sprintf("/assignment/%d/submit", assignment.ID), studentToken, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": questions[0].ID, "choice_id": assignmentChoice(t, questions[0].ID, true)},
			{"question_id": questions[1].ID, "answer_text": "An acid and an alcohol form an ester."},
		},
	})

	var submission examModels.AssignmentSubmission
	database.Database.Db.Where("assignment_id = ? AND student_id = ?", assignment.ID, student.ID).First(&submission)

	var essayAnswer examModels.AssignmentAnswer
	database.Database.Db.Where("submission_id = ? AND question_id = ?", submission.ID, questions[1].ID).First(&essayAnswer)

	status, _ := doRequest(t, app, "PATCH", fmt.Sprintf("/submission/%d/grade", submission.ID), instructorToken, fiber.Map{
		"feedback": "Well done",
		"grades": []fiber.Map{
			{"answer_id": essayAnswer.ID, "points": 5},
		},
	})
	assert.Equal(t, fiber.StatusOK, status)

	database.Database.Db.First(&submission, submission.ID)
	assert.True(t, submission.IsGraded)
	assert.Equal(t, 9, submission.Score)
	assert.Equal(t, "Well done", submission.Feedback)
}
