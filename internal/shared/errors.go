package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Remote catalogue errors
	ErrSessionExpired  = fmt.Errorf("catalogue session expired")
	ErrTrackNotFound   = fmt.Errorf("track not found")
	ErrPremiumRequired = fmt.Errorf("premium account required")
	ErrTransient       = fmt.Errorf("transient backend error")

	// Job control errors
	ErrBusy      = fmt.Errorf("a job is already running")
	ErrCancelled = fmt.Errorf("job cancelled")

	// State store errors
	ErrCorruptState = fmt.Errorf("state file corrupt")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
