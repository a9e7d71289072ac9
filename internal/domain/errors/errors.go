package errors

import "errors"

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrSourceUnavailable      = errors.New("source unavailable")
	ErrRateLimited            = errors.New("rate limited by provider")
	ErrProviderSuspended      = errors.New("provider suspended")
	ErrUpstreamStatus         = errors.New("unexpected upstream status")
	ErrProviderPayload        = errors.New("provider returned error payload")
	ErrProviderConfigNotFound = errors.New("active provider config not found")
	ErrUnknownCompetition     = errors.New("unknown competition")
	ErrUnexpectedRecord       = errors.New("unexpected raw record type")
)
