package examValidator

import (
	"strconv"
	"strings"
	"time"

	examController "elearn/controllers/exam"
	"elearn/middleware"
	examModels "elearn/models/exam"

	"github.com/gofiber/fiber/v2"
)

// parseIDParam parses a numeric path parameter into an int local
func parseIDParam(c *fiber.Ctx, param, local, label string) error {
	raw := strings.TrimSpace(c.Params(param))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" ID must be a positive number!", nil)
	}
	c.Locals(local, id)
	return c.Next()
}

// ExamID validates the exam id in the URL
func ExamID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "examId", "examID", "Exam")
	}
}

// QuestionID validates the question id in the URL
func QuestionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "questionId", "questionID", "Question")
	}
}

// AttemptID validates the attempt id in the URL
func AttemptID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "attemptId", "attemptID", "Attempt")
	}
}

// AnswerID validates the answer id in the URL
func AnswerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "answerId", "answerID", "Answer")
	}
}

// CreateExam validator middleware, shared by create and update
func CreateExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string    `json:"title"`
			Description  string    `json:"description"`
			Duration     int       `json:"duration"`
			TotalMarks   int       `json:"total_marks"`
			PassingMarks int       `json:"passing_marks"`
			StartTime    time.Time `json:"start_time"`
			EndTime      time.Time `json:"end_time"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.Duration <= 0 {
			errors["duration"] = "Duration must be greater than 0!"
		}
		if reqData.TotalMarks <= 0 {
			errors["total_marks"] = "Total marks must be greater than 0!"
		}
		if reqData.PassingMarks < 0 || reqData.PassingMarks > reqData.TotalMarks {
			errors["passing_marks"] = "Passing marks must be between 0 and total marks!"
		}
		if !reqData.StartTime.IsZero() && !reqData.EndTime.IsZero() && !reqData.EndTime.After(reqData.StartTime) {
			errors["end_time"] = "End time must be after start time!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedExam", reqData)
		return c.Next()
	}
}

// CreateQuestion validator middleware, shared by exam and assignment questions
func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(examController.QuestionInput)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.QuestionText) == "" {
			errors["question_text"] = "Question text is required!"
		}
		if !examModels.ValidQuestionType(reqData.QuestionType) {
			errors["question_type"] = "Unknown question type!"
		}
		if reqData.Marks <= 0 {
			errors["marks"] = "Marks must be greater than 0!"
		}
		if examModels.ValidQuestionType(reqData.QuestionType) && reqData.QuestionType.AutoGradable() {
			if len(reqData.Choices) < 2 {
				errors["choices"] = "Choice questions need at least two choices!"
			} else {
				correct := 0
				for _, ch := range reqData.Choices {
					if ch.IsCorrect {
						correct++
					}
				}
				if correct != 1 {
					errors["choices"] = "Choice questions need exactly one correct choice!"
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

// GradeAnswer validator middleware
func GradeAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Marks    int    `json:"marks"`
			Feedback string `json:"feedback"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Marks < 0 {
			errors["marks"] = "Marks cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}
