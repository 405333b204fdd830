package training

import "errors"

var (
	ErrTrainingNotFound   = errors.New("training not found")
	ErrCategoryNotFound   = errors.New("training category not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this training")
	ErrTrainingFull       = errors.New("training has no seat left")
	ErrInvalidStatus      = errors.New("unknown enrollment status")
	ErrInvalidInput       = errors.New("invalid training")
	ErrDuplicateSlug      = errors.New("slug already used")
)
