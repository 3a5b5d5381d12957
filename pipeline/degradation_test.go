package pipeline

import (
	"testing"

	"github.com/poiesic/citesearch/resilience"
	"github.com/stretchr/testify/assert"
)

func TestDegradationPolicyDecide(t *testing.T) {
	var policy DegradationPolicy

	closed := resilience.StateClosed
	open := resilience.StateOpen
	halfOpen := resilience.StateHalfOpen

	tests := []struct {
		name                         string
		search, filter, rank, format resilience.CircuitState
		want                         Mode
	}{
		{name: "all closed", search: closed, filter: closed, rank: closed, format: closed, want: ModeFull},
		{name: "search open is terminal", search: open, filter: closed, rank: closed, format: closed, want: ModeSearchFailed},
		{name: "search open trumps agent state", search: open, filter: open, rank: open, format: open, want: ModeSearchFailed},
		{name: "filter open", search: closed, filter: open, rank: closed, format: closed, want: ModeNoAgents},
		{name: "rank open", search: closed, filter: closed, rank: open, format: closed, want: ModeNoAgents},
		{name: "format open", search: closed, filter: closed, rank: closed, format: open, want: ModeNoAgents},
		{name: "half-open counts as available", search: halfOpen, filter: halfOpen, rank: closed, format: closed, want: ModeFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Decide(tt.search, tt.filter, tt.rank, tt.format)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "full", ModeFull.String())
	assert.Equal(t, "no-agents", ModeNoAgents.String())
	assert.Equal(t, "search-failed", ModeSearchFailed.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
