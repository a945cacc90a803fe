package learning

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func question(id uint, qType string, points int, correct string, acceptable ...string) courseModels.QuizQuestion {
	q := courseModels.QuizQuestion{
		QuestionType:      qType,
		Points:            points,
		CorrectAnswer:     correct,
		AcceptableAnswers: courseModels.JSONList(acceptable),
	}
	q.Model = gorm.Model{ID: id}
	return q
}

func TestAnswerKeysPerQuestionType(t *testing.T) {
	tests := []struct {
		name   string
		q      courseModels.QuizQuestion
		answer string
		want   bool
	}{
		{"multiple choice exact", question(1, courseModels.QuestionMultipleChoice, 1, "Paris"), "Paris", true},
		{"multiple choice is case sensitive", question(1, courseModels.QuestionMultipleChoice, 1, "Paris"), "paris", false},
		{"true false ignores case", question(1, courseModels.QuestionTrueFalse, 1, "True"), "TRUE", true},
		{"true false mismatch", question(1, courseModels.QuestionTrueFalse, 1, "True"), "false", false},
		{"short answer membership", question(1, courseModels.QuestionShortAnswer, 1, "", "goroutine", "go routine"), " Go Routine ", true},
		{"short answer miss", question(1, courseModels.QuestionShortAnswer, 1, "", "goroutine"), "thread", false},
		{"short answer empty set", question(1, courseModels.QuestionShortAnswer, 1, ""), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := KeyFor(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key.Grade(tt.answer))
		})
	}
}

func TestKeyForRejectsUnknownType(t *testing.T) {
	_, err := KeyFor(question(7, "essay", 1, ""))
	assert.ErrorIs(t, err, ErrUnknownQuestionType)
}

func TestGradeCountsUnansweredQuestionsInTotal(t *testing.T) {
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionMultipleChoice, 1, "A"),
		question(2, courseModels.QuestionTrueFalse, 2, "false"),
		question(3, courseModels.QuestionShortAnswer, 3, "", "gorm"),
	}

	result, err := Grade(questions, []Answer{{QuestionID: 3, AnswerText: "GORM"}})
	require.NoError(t, err)

	assert.Equal(t, 3, result.EarnedPoints)
	assert.Equal(t, 6, result.TotalPoints)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.InDelta(t, 50.0, result.Score, 1e-9)
}

func TestGradeIsDeterministic(t *testing.T) {
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionMultipleChoice, 1, "A"),
		question(2, courseModels.QuestionMultipleChoice, 2, "B"),
	}
	answers := []Answer{{QuestionID: 1, AnswerText: "A"}, {QuestionID: 2, AnswerText: "C"}}

	first, err := Grade(questions, answers)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Grade(questions, answers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.InDelta(t, 100.0/3.0, first.Score, 1e-9)
}

func TestGradeRejectsMalformedSubmissions(t *testing.T) {
	questions := []courseModels.QuizQuestion{question(1, courseModels.QuestionMultipleChoice, 1, "A")}

	_, err := Grade(questions, []Answer{{QuestionID: 99, AnswerText: "A"}})
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	_, err = Grade(questions, []Answer{{QuestionID: 1, AnswerText: "A"}, {QuestionID: 1, AnswerText: "B"}})
	assert.ErrorIs(t, err, ErrDuplicateAnswer)
}

func TestScoreWithoutPointsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Score(0, 0))

	result, err := Grade(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
}
