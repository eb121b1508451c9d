package models

import (
	// Go Internal Packages
	"strings"
)

// Transaction statuses, normalized at the boundary. The wire is
// case-insensitive and spells the success state two ways ("PAID",
// "success"); internally there is exactly one spelling per state.
const (
	StatusPending  = "pending"
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusExpired  = "expired"
	StatusRefunded = "refunded"
)

// NormalizeStatus maps a wire status to its internal lowercase form.
// Unrecognized values fall back to pending, the default display state.
func NormalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "success":
		return StatusSuccess
	case "pending":
		return StatusPending
	case "failed":
		return StatusFailed
	case "expired":
		return StatusExpired
	case "refunded":
		return StatusRefunded
	}
	return StatusPending
}

// KnownStatus reports whether raw names a recognized status in any casing.
func KnownStatus(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "success", "pending", "failed", "expired", "refunded":
		return true
	}
	return false
}
