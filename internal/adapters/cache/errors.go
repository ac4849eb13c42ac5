package cache

import "errors"

var (
	ErrCacheClosed            = errors.New("resource cache is closed")
	ErrNilFactory             = errors.New("resource factory is nil")
	ErrNilResource            = errors.New("resource factory returned nil")
	ErrInvalidDuration        = errors.New("invalid cache duration")
	ErrAccessorNotInitialized = errors.New("cache accessor is not initialized")
	ErrNoAccessorInScope      = errors.New("no cache accessor in scope, wrap the context with ContextWithAccessor first")
)
