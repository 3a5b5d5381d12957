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


package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"relevant": true}`,
			want:  `{"relevant": true}`,
		},
		{
			name:  "strips json fence",
			input: "```json\n{\"relevant\": true}\n```",
			want:  `{"relevant": true}`,
		},
		{
			name:  "strips bare fence",
			input: "```\n{\"relevant\": true}\n```",
			want:  `{"relevant": true}`,
		},
		{
			name:  "trims surrounding whitespace",
			input: "  \n{\"relevant\": true}\n  ",
			want:  `{"relevant": true}`,
		},
		{
			name:  "repairs missing opening quote on key",
			input: `{relevant": true, confidence": 0.8}`,
			want:  `{"relevant": true, "confidence": 0.8}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONResponse(tt.input))
		})
	}
}

func TestCleanJSONResponseProducesParseableOutput(t *testing.T) {
	cleaned := CleanJSONResponse("```json\n{relevant\": true, \"confidence\": 0.9}\n```")

	var parsed struct {
		Relevant   bool    `json:"relevant"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal([]byte(cleaned), &parsed))
	assert.True(t, parsed.Relevant)
	assert.Equal(t, 0.9, parsed.Confidence)
}
