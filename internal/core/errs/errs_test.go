package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NotFound("kpi", "K9")
	if err.Error() != "kpi K9 not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "kpi K9 not found")
	}

	wrapped := fmt.Errorf("failed to evaluate: %w", err)
	if !IsNotFound(wrapped) {
		t.Error("expected IsNotFound to see through wrapping")
	}
	if IsInvalidState(wrapped) {
		t.Error("did not expect IsInvalidState")
	}
}

func TestInvalidStateError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		wantIs  error
	}{
		{
			name:    "with id and sentinel",
			err:     InvalidState("key_result", "KR-001", "custom key results are updated manually", ErrNotKPIBased),
			wantMsg: "invalid key_result KR-001 state: custom key results are updated manually",
			wantIs:  ErrNotKPIBased,
		},
		{
			name:    "without id",
			err:     InvalidState("thresholds", "", "no bands configured", ErrMalformedThresholds),
			wantMsg: "invalid thresholds state: no bands configured",
			wantIs:  ErrMalformedThresholds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantIs) {
				t.Errorf("errors.Is(%v) = false, want true", tt.wantIs)
			}
			if !IsInvalidState(tt.err) {
				t.Error("expected IsInvalidState")
			}
		})
	}
}
