package learning

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrNotAvailable        = errors.New("quiz is not available")
	ErrNotEnrolled         = errors.New("student is not enrolled in this course")
	ErrAttemptLimitReached = errors.New("maximum attempts reached")
	ErrUnknownQuestion     = errors.New("answer references a question outside this quiz")
	ErrDuplicateAnswer     = errors.New("question answered more than once")
	ErrUnknownQuestionType = errors.New("unknown question type")
	ErrAttemptConflict     = errors.New("another submission was recorded concurrently, please resubmit")
)
