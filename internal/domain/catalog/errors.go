package catalog

import "errors"

var (
	ErrStudioNotFound    = errors.New("studio not found")
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrServiceNotFound   = errors.New("service not found")
	ErrCategoryNotFound  = errors.New("equipment category not found")
	ErrDuplicateCode     = errors.New("code already in use")
	ErrInvalidInput      = errors.New("invalid input")
)
