package payment

import "errors"

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrFreeCourse      = errors.New("course is free, enroll directly")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentNotOpen  = errors.New("payment is no longer pending")
	ErrPaymentFailed   = errors.New("payment was not successful")
	ErrGatewayRejected = errors.New("payment provider rejected the request")
)
