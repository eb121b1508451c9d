package models

import (
	// Go Internal Packages
	"testing"
)

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "PAID", want: StatusSuccess},
		{raw: "paid", want: StatusSuccess},
		{raw: "Success", want: StatusSuccess},
		{raw: "SUCCESS", want: StatusSuccess},
		{raw: "pending", want: StatusPending},
		{raw: "PENDING", want: StatusPending},
		{raw: "Failed", want: StatusFailed},
		{raw: "expired", want: StatusExpired},
		{raw: "Refunded", want: StatusRefunded},
		{raw: " paid ", want: StatusSuccess},
		{raw: "", want: StatusPending},
		{raw: "garbage", want: StatusPending},
	}

	for _, tc := range tests {
		if got := NormalizeStatus(tc.raw); got != tc.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestKnownStatus(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"PAID", "success", "Pending", "failed", "EXPIRED", "refunded"} {
		if !KnownStatus(raw) {
			t.Errorf("KnownStatus(%q) = false, want true", raw)
		}
	}
	for _, raw := range []string{"", "unknown", "ok"} {
		if KnownStatus(raw) {
			t.Errorf("KnownStatus(%q) = true, want false", raw)
		}
	}
}
