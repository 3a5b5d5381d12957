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


package pipeline

import "errors"

var (
	// ErrSearchClientRequired is returned when a coordinator is constructed
	// without a search client.
	ErrSearchClientRequired = errors.New("search client is required")

	// ErrFilterStageRequired is returned when a coordinator is constructed
	// without a filter stage.
	ErrFilterStageRequired = errors.New("filter stage is required")

	// ErrRankStageRequired is returned when a coordinator is constructed
	// without a rank stage.
	ErrRankStageRequired = errors.New("rank stage is required")

	// ErrFormatStageRequired is returned when a coordinator is constructed
	// without a format stage.
	ErrFormatStageRequired = errors.New("format stage is required")

	// ErrExecutorRequired is returned when a coordinator is constructed
	// without a resilience executor.
	ErrExecutorRequired = errors.New("executor is required")
)
