package app

import "testing"

func TestCapExecutionBudget(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		onchain    int
		want       int
	}{
		{name: "onchain tighter than configured", configured: 60, onchain: 30, want: 30},
		{name: "configured tighter than onchain", configured: 15, onchain: 30, want: 15},
		{name: "equal bounds", configured: 30, onchain: 30, want: 30},
		{name: "zero onchain keeps configured", configured: 45, onchain: 0, want: 45},
		{name: "negative onchain keeps configured", configured: 45, onchain: -1, want: 45},
		{name: "zero configured takes onchain", configured: 0, onchain: 20, want: 20},
		{name: "both zero", configured: 0, onchain: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := capExecutionBudget(tt.configured, tt.onchain); got != tt.want {
				t.Errorf("capExecutionBudget(%d, %d) = %d, want %d", tt.configured, tt.onchain, got, tt.want)
			}
		})
	}
}
