package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		expect Kind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{429, KindRateLimit},
		{500, KindServer},
		{503, KindServer},
		{404, KindUnknown},
		{418, KindUnknown},
	}

	for _, tt := range tests {
		if got := FromStatus("op", tt.status).Kind; got != tt.expect {
			t.Errorf("FromStatus(%d).Kind = %v, want %v", tt.status, got, tt.expect)
		}
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err    error
		expect bool
	}{
		{E(KindNetwork, "op", errors.New("connection reset by peer")), true},
		{E(KindTimeout, "op", errors.New("deadline exceeded")), true},
		{FromStatus("op", 500), true},
		{FromStatus("op", 429), true},
		{FromStatus("op", 401), false},
		{FromStatus("op", 403), false},
		{E(KindValidation, "op", errors.New("bad payload")), false},
		{errors.New("plain unclassified error"), false},
	}

	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.expect {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := FromStatus("wb.fetch_box_tariffs", 429)
	wrapped := fmt.Errorf("cycle failed: %w", inner)

	if got := KindOf(wrapped); got != KindRateLimit {
		t.Errorf("KindOf(wrapped) = %v, want %v", got, KindRateLimit)
	}
	if !Retryable(wrapped) {
		t.Error("wrapped rate-limit error should stay retryable")
	}
}
