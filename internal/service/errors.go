package service

import "errors"

// Common service errors
var (
	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuotationNotFound is returned when a quotation does not exist
	ErrQuotationNotFound = errors.New("quotation not found")

	// ErrClientNotFound is returned when a client does not exist
	ErrClientNotFound = errors.New("client not found")

	// ErrProductNotFound is returned when a product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrSupplierNotFound is returned when a supplier does not exist
	ErrSupplierNotFound = errors.New("supplier not found")

	// ErrItemNotFound is returned when a quotation item does not exist
	ErrItemNotFound = errors.New("quotation item not found")

	// ErrInvalidTransition is returned when a status change is not a
	// legal edge of the lifecycle graph
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrQuotationLocked is returned when a mutation targets a
	// quotation in a terminal status
	ErrQuotationLocked = errors.New("quotation is locked")

	// ErrConcurrentModification is returned when an update loses an
	// optimistic concurrency check
	ErrConcurrentModification = errors.New("quotation was modified concurrently")

	// ErrRateLookupTimeout is returned when the exchange rate provider
	// does not answer in time; the calculation fails rather than using
	// a stale rate
	ErrRateLookupTimeout = errors.New("exchange rate lookup timed out")

	// ErrRateUnavailable is returned when no exchange rate can be
	// obtained and none was supplied
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrFreightLookupTimeout is returned when the freight rates
	// warehouse does not answer in time
	ErrFreightLookupTimeout = errors.New("freight rate lookup timed out")

	// ErrShareTokenInvalid is returned when a share token fails
	// signature, expiry or revocation checks
	ErrShareTokenInvalid = errors.New("share token is invalid")

	// ErrDuplicateSKU is returned when creating a product with an SKU
	// that already exists
	ErrDuplicateSKU = errors.New("product SKU already exists")

	// ErrDuplicateTaxID is returned when creating a client with a tax
	// ID that already exists
	ErrDuplicateTaxID = errors.New("client tax ID already exists")

	// ErrClientHasQuotations is returned when deleting a client that
	// still owns quotations
	ErrClientHasQuotations = errors.New("client has quotations")
)
