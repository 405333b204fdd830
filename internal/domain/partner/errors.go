package partner

import "errors"

var (
	ErrApplicationNotFound = errors.New("partner application not found")
	ErrPartnerNotFound     = errors.New("business partner not found")
	ErrContractNotFound    = errors.New("contract not found")
	ErrRegionNotFound      = errors.New("region not found")
	ErrNotPartner          = errors.New("user is not a business partner")
	ErrPartnerInactive     = errors.New("business partner is suspended")
	ErrInvalidStatus       = errors.New("status change not allowed")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountTooLarge      = errors.New("amount exceeds the contract limit")
	ErrExceedsPending      = errors.New("amount exceeds pending commission")
	ErrInvalidMethod       = errors.New("unknown payment method")
	ErrContractMismatch    = errors.New("contract does not belong to partner or is not validated")
	ErrMissingEmail        = errors.New("application has no email address")
	ErrDuplicate           = errors.New("already exists")
)
