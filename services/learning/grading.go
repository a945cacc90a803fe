package learning

import (
	"fmt"
	"strings"

	courseModels "lms/models/course"
)

// AnswerKey is the closed set of grading rules, one per question type.
// The unexported method keeps implementations inside this package.
type AnswerKey interface {
	Grade(answer string) bool
	answerKey()
}

// MultipleChoiceKey requires an exact, case-sensitive match
type MultipleChoiceKey struct{ Correct string }

// TrueFalseKey compares case-insensitively
type TrueFalseKey struct{ Correct string }

// ShortAnswerKey accepts any listed answer, ignoring case and surrounding space
type ShortAnswerKey struct{ Acceptable []string }

func (k MultipleChoiceKey) Grade(answer string) bool { return answer == k.Correct }

func (k TrueFalseKey) Grade(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(k.Correct))
}

func (k ShortAnswerKey) Grade(answer string) bool {
	answer = strings.TrimSpace(answer)
	for _, candidate := range k.Acceptable {
		if strings.EqualFold(answer, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}

func (MultipleChoiceKey) answerKey() {}
func (TrueFalseKey) answerKey()      {}
func (ShortAnswerKey) answerKey()    {}

// KeyFor converts a stored question into its grading variant
func KeyFor(q courseModels.QuizQuestion) (AnswerKey, error) {
	switch q.QuestionType {
	case courseModels.QuestionMultipleChoice:
		return MultipleChoiceKey{Correct: q.CorrectAnswer}, nil
	case courseModels.QuestionTrueFalse:
		return TrueFalseKey{Correct: q.CorrectAnswer}, nil
	case courseModels.QuestionShortAnswer:
		return ShortAnswerKey{Acceptable: courseModels.StringList(q.AcceptableAnswers)}, nil
	default:
		return nil, fmt.Errorf("%w %q on question %d", ErrUnknownQuestionType, q.QuestionType, q.ID)
	}
}

// Answer is one submitted response
type Answer struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	AnswerText string `json:"answer_text"`
}

type GradedAnswer struct {
	QuestionID   uint   `json:"question_id"`
	AnswerText   string `json:"answer_text"`
	IsCorrect    bool   `json:"is_correct"`
	PointsEarned int    `json:"points_earned"`
}

type GradeResult struct {
	Answers        []GradedAnswer `json:"answers"`
	EarnedPoints   int            `json:"earned_points"`
	TotalPoints    int            `json:"total_points"`
	CorrectAnswers int            `json:"correct_answers"`
	Score          float64        `json:"score"`
}

// Score is earned/total as a percentage, 0 when the quiz carries no points
func Score(earned, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(earned) / float64(total) * 100
}

// Grade scores answers against the full question set of a quiz. Every question
// counts toward the total; unanswered ones earn nothing. There is no partial credit.
func Grade(questions []courseModels.QuizQuestion, answers []Answer) (GradeResult, error) {
	byID := make(map[uint]courseModels.QuizQuestion, len(questions))
	var result GradeResult
	for _, q := range questions {
		byID[q.ID] = q
		result.TotalPoints += q.Points
	}

	seen := make(map[uint]bool, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return GradeResult{}, fmt.Errorf("%w: question %d", ErrUnknownQuestion, a.QuestionID)
		}
		if seen[a.QuestionID] {
			return GradeResult{}, fmt.Errorf("%w: question %d", ErrDuplicateAnswer, a.QuestionID)
		}
		seen[a.QuestionID] = true

		key, err := KeyFor(q)
		if err != nil {
			return GradeResult{}, err
		}

		graded := GradedAnswer{QuestionID: q.ID, AnswerText: a.AnswerText}
		if key.Grade(a.AnswerText) {
			graded.IsCorrect = true
			graded.PointsEarned = q.Points
			result.EarnedPoints += q.Points
			result.CorrectAnswers++
		}
		result.Answers = append(result.Answers, graded)
	}

	result.Score = Score(result.EarnedPoints, result.TotalPoints)
	return result, nil
}
