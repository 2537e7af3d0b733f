package threshold

import (
	"testing"

	"github.com/example/strata/internal/core/effects"
)

func TestGenerateMarkPlan(t *testing.T) {
	tests := []struct {
		name      string
		input     MarkPlanInput
		wantWrite bool
	}{
		{
			name:      "flag normal value",
			input:     MarkPlanInput{KPIID: "K1", Period: "2024-01", Current: Normal{}, Exception: true, Reason: "strike"},
			wantWrite: true,
		},
		{
			name:      "clear exception",
			input:     MarkPlanInput{KPIID: "K1", Period: "2024-01", Current: ManualException{Reason: "strike"}},
			wantWrite: true,
		},
		{
			name:      "change exception reason",
			input:     MarkPlanInput{KPIID: "K1", Period: "2024-01", Current: ManualException{Reason: "strike"}, Exception: true, Reason: "flood"},
			wantWrite: true,
		},
		{
			name:  "already normal",
			input: MarkPlanInput{KPIID: "K1", Period: "2024-01", Current: nil},
		},
		{
			name:  "same exception",
			input: MarkPlanInput{KPIID: "K1", Period: "2024-01", Current: ManualException{Reason: "strike"}, Exception: true, Reason: "strike"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effs := GenerateMarkPlan(tt.input)

			if !tt.wantWrite {
				if len(effs) != 1 {
					t.Fatalf("effects count = %d, want 1", len(effs))
				}
				if _, ok := effs[0].(effects.NoEffect); !ok {
					t.Errorf("effect = %T, want NoEffect", effs[0])
				}
				return
			}

			if len(effs) != 2 {
				t.Fatalf("effects count = %d, want 2", len(effs))
			}
			mark, ok := effs[0].(effects.ValueMarkEffect)
			if !ok {
				t.Fatalf("first effect = %T, want ValueMarkEffect", effs[0])
			}
			if mark.Exception != tt.input.Exception {
				t.Errorf("Exception = %v, want %v", mark.Exception, tt.input.Exception)
			}
			if mark.Reason != tt.input.Reason {
				t.Errorf("Reason = %q, want %q", mark.Reason, tt.input.Reason)
			}
		})
	}
}

func TestCanSetException(t *testing.T) {
	tests := []struct {
		name        string
		input       MarkPlanInput
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "flag with reason",
			input:       MarkPlanInput{KPIID: "K1", Period: "2024-01", Exception: true, Reason: "strike"},
			wantAllowed: true,
		},
		{
			name:        "flag without reason",
			input:       MarkPlanInput{KPIID: "K1", Period: "2024-01", Exception: true},
			wantAllowed: false,
			wantReason:  "A reason is required to flag K1 2024-01 as an exception. Use --reason",
		},
		{
			name:        "clear without reason",
			input:       MarkPlanInput{KPIID: "K1", Period: "2024-01"},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanSetException(tt.input)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanSetException() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("CanSetException() Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}
