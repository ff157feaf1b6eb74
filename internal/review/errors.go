package review

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrReviewNotFound is returned when no review exists with the requested ID
	ErrReviewNotFound = errors.New("review not found")

	// ErrUnparsableResponse is returned in strict mode when the provider
	// response carries no review text
	ErrUnparsableResponse = errors.New("unparsable review response")
)

// FallbackReview is stored as the review text when the provider response
// has an unexpected shape and strict parsing is off
const FallbackReview = "Unable to parse review response"

// ProviderError wraps a failure of the review provider call
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("review provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ValidationError maps request field names to messages
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func notFound(id int64) error {
	return fmt.Errorf("%w with ID: %d", ErrReviewNotFound, id)
}
