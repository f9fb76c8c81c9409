package cache

import "errors"

// Key errors.
var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Construction errors.
var (
	// ErrInvalidConfig wraps every configuration problem reported by
	// Config.Validate, New and Open.
	ErrInvalidConfig = errors.New("cache: invalid configuration")

	// ErrUnsupportedBackend indicates an unknown Config.Backend value.
	ErrUnsupportedBackend = errors.New("cache: unsupported backend")

	// ErrMissingEndpoint indicates a remote backend without an endpoint.
	ErrMissingEndpoint = errors.New("cache: remote endpoint is required")

	// ErrUnsupportedScheme indicates an endpoint URL scheme no backend serves.
	ErrUnsupportedScheme = errors.New("cache: unsupported endpoint scheme")

	// ErrRemoteRequiresOpen is returned by New for backends that must dial
	// the network. Use Open instead.
	ErrRemoteRequiresOpen = errors.New("cache: remote backend requires Open")

	// ErrBackendConstruction indicates a connection or liveness check failure.
	// Callers may retry by constructing again.
	ErrBackendConstruction = errors.New("cache: backend construction failed")
)

// Operational errors.
var (
	// ErrBackendUnavailable wraps remote failures returned from Set, Delete
	// and Clear. It is informational: the cache keeps working as a miss.
	ErrBackendUnavailable = errors.New("cache: backend unavailable")
)
