// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
)

// Validation errors. These surface to the caller unchanged and are never
// retried.
var (
	// ErrInvalidQuery indicates a Query failed validation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmptyQuery indicates the query text is empty after trimming.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrQueryTooLong indicates the query text exceeds the length bound.
	ErrQueryTooLong = errors.New("query exceeds maximum length")

	// ErrOnlyStopWords indicates the query contains no searchable content.
	ErrOnlyStopWords = errors.New("query contains only stop words")

	// ErrContextTooLong indicates the context exceeds the length bound.
	ErrContextTooLong = errors.New("context exceeds maximum length")

	// ErrInvalidMaxResults indicates maxResults is out of range.
	ErrInvalidMaxResults = errors.New("max results must be between 1 and 50")

	// ErrInvalidMinRelevance indicates minRelevance is out of range.
	ErrInvalidMinRelevance = errors.New("min relevance must be between 0.0 and 1.0")

	// ErrInvalidCitationStyle indicates an unknown citation style.
	ErrInvalidCitationStyle = errors.New("unknown citation style")
)

// Upstream and pipeline errors.
var (
	// ErrUpstreamTransient marks a dependency failure worth retrying
	// (timeout, 5xx-equivalent, connection refused).
	ErrUpstreamTransient = errors.New("transient upstream error")

	// ErrUpstreamPermanent marks a dependency failure that must not be
	// retried (4xx-equivalent).
	ErrUpstreamPermanent = errors.New("permanent upstream error")

	// ErrMalformedOutput indicates a generative response that did not match
	// the required shape. Resolved by per-stage fallbacks, never fatal.
	ErrMalformedOutput = errors.New("malformed agent output")

	// ErrSearchUnavailable indicates the search dependency is fully
	// unavailable after retries with its breaker open. Terminal.
	ErrSearchUnavailable = errors.New("search service unavailable")
)

// Transient wraps err so IsTransient reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUpstreamTransient, err)
}

// Permanent wraps err so IsPermanent reports true for it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUpstreamPermanent, err)
}

// IsTransient reports whether err is a retryable upstream failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUpstreamTransient)
}

// IsPermanent reports whether err is an upstream failure that must not be
// retried.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrUpstreamPermanent)
}

// IsValidation reports whether err is a query validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidQuery)
}
