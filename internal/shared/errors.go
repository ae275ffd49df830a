package shared

import "fmt"

var (
	// Target-scoped pipeline errors. Recovered at the sync executor boundary:
	// they abort the current target only and surface in the run summary.
	ErrFetch   = fmt.Errorf("catalog fetch failed")
	ErrLookup  = fmt.Errorf("id did not resolve")
	ErrAdd     = fmt.Errorf("playlist add rejected")
	ErrCacheIO = fmt.Errorf("cache storage error")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
