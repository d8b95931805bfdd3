// Package fault holds the error taxonomy shared by the storefront services.
// Every failure crossing a service boundary wraps one of these sentinels so
// handlers can map it to a redirect, an inline message or a toast.
package fault

import "errors"

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrValidation         = errors.New("validation")
	ErrUpstream           = errors.New("upstream unavailable")
	ErrVerificationFailed = errors.New("verification failed")
)
