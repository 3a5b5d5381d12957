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
	"fmt"
	"strings"
)

const (
	// MaxQueryLength bounds the query text after trimming.
	MaxQueryLength = 1000

	// MaxContextLength bounds the optional context text.
	MaxContextLength = 2000

	// MaxResultsLimit bounds how many chunks a query may request.
	MaxResultsLimit = 50
)

// ValidateQuery validates a Query according to domain rules.
//
// Validation rules:
//   - Text must be 1-1000 characters after trimming whitespace
//   - Text must contain at least one non-stop-word token
//   - Context must not exceed 2000 characters
//   - MaxResults must be between 1 and 50
//   - MinRelevance must be between 0.0 and 1.0
//   - Style must be a known citation style
//
// A failed validation is terminal for the request: no remote calls are made.
func ValidateQuery(query *Query) error {
	if query == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}

	trimmed := strings.TrimSpace(query.Text)
	if trimmed == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrEmptyQuery)
	}
	if len(trimmed) > MaxQueryLength {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrQueryTooLong)
	}
	if len(tokenizeAndFilter(trimmed)) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrOnlyStopWords)
	}

	if len(query.Context) > MaxContextLength {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrContextTooLong)
	}

	if query.MaxResults < 1 || query.MaxResults > MaxResultsLimit {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrInvalidMaxResults)
	}

	if query.MinRelevance < 0.0 || query.MinRelevance > 1.0 {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrInvalidMinRelevance)
	}

	if !query.Style.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidQuery, ErrInvalidCitationStyle, query.Style)
	}

	return nil
}
