package offer

import "errors"

var (
	ErrOfferNotFound       = errors.New("offer not found")
	ErrJobNotFound         = errors.New("job offer not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrOfferClosed         = errors.New("offer is not open for applications")
	ErrAlreadyApplied      = errors.New("already applied to this offer")
	ErrInvalidStatus       = errors.New("unknown status")
	ErrInvalidInput        = errors.New("invalid offer")
	ErrServiceNotFound     = errors.New("service not found")
	ErrDuplicateSlug       = errors.New("job slug already exists")
)
