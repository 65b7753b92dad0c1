package billing

import "errors"

var (
	// ErrOrderNotFound indicates the basket has no completed order yet.
	ErrOrderNotFound = errors.New("billing: no completed order for basket")
	// ErrRecordNotFound indicates a missing transaction record.
	ErrRecordNotFound = errors.New("billing: transaction record not found")
	// ErrProfileNotFound indicates the basket has no billing profile.
	// Not a fault: payload assembly degrades to null address fields.
	ErrProfileNotFound = errors.New("billing: billing profile not found")
	// ErrInvalidVATIN indicates a VAT id that fails its country's format
	// rules. A user-input error, surfaced to the form, never a system fault.
	ErrInvalidVATIN = errors.New("billing: invalid vatin format for country")
	// ErrNotConfigured indicates the partner has no financial manager
	// integration. Expected steady state, not an error condition.
	ErrNotConfigured = errors.New("financial manager: integration not configured for partner")
	// ErrMissingSetting indicates a partner entry exists but a required
	// key is absent. Operator misconfiguration; always raised loudly.
	ErrMissingSetting = errors.New("financial manager: missing required setting")
)
