package courseValidator

import (
	"fmt"
	"strings"

	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/learning"
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type QuestionRequest struct {
	QuestionText      string   `json:"question_text" validate:"required"`
	QuestionType      string   `json:"question_type" validate:"required,oneof=multiple_choice true_false short_answer"`
	Points            int      `json:"points" validate:"omitempty,gte=1"`
	Options           []string `json:"options"`
	CorrectAnswer     string   `json:"correct_answer" validate:"max=500"`
	AcceptableAnswers []string `json:"acceptable_answers"`
}

type QuizRequest struct {
	Title            string            `json:"title" validate:"max=200"`
	Description      string            `json:"description"`
	TimeLimitMinutes int               `json:"time_limit_minutes" validate:"omitempty,gte=1"`
	PassingScore     *int              `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	MaxAttempts      int               `json:"max_attempts" validate:"omitempty,gte=1"`
	IsPublished      bool              `json:"is_published"`
	Questions        []QuestionRequest `json:"questions" validate:"dive"`
}

type SubmitQuizRequest struct {
	Answers []learning.Answer `json:"answers" validate:"dive"`
}

// checkQuestions enforces what each question type needs to be gradable
func checkQuestions(questions []QuestionRequest) map[string]string {
	errors := make(map[string]string)
	for i, q := range questions {
		key := fmt.Sprintf("questions[%d]", i)
		switch q.QuestionType {
		case courseModels.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				errors[key] = "Multiple choice questions need at least two options!"
				continue
			}
			found := false
			for _, o := range q.Options {
				if o == q.CorrectAnswer {
					found = true
					break
				}
			}
			if !found {
				errors[key] = "Correct answer must be one of the options!"
			}
		case courseModels.QuestionTrueFalse:
			answer := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
			if answer != "true" && answer != "false" {
				errors[key] = "Correct answer must be true or false!"
			}
		case courseModels.QuestionShortAnswer:
			if len(q.AcceptableAnswers) == 0 {
				errors[key] = "Short answer questions need at least one acceptable answer!"
			}
		}
	}
	return errors
}

func SaveQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(QuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		if errors := checkQuestions(reqData.Questions); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

func SubmitQuiz() fiber.Handler {
	return validators.Body[SubmitQuizRequest]("validatedSubmission")
}
