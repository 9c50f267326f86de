package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidCredentials indicates wrong username/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUnsupportedFormat indicates a file type outside pdf, csv and txt
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrExtractionFailed indicates text could not be pulled from the file
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmbeddingFailed indicates the embedding provider call failed
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates the generation provider call failed
	ErrGenerationFailed = errors.New("generation failed")

	// ErrLockNotAcquired indicates a distributed lock is held elsewhere
	ErrLockNotAcquired = errors.New("lock not acquired")
)
