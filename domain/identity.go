// Package domain contains core concepts of the chat room.
// This file defines Identity and its normalization rules.
// No runtime, network, or UI logic should be added here.
package domain

import "strings"

// Identity is the unique display name a client registers under for the
// lifetime of its session. Comparison is case-sensitive.
type Identity string

// NormalizeIdentity trims surrounding whitespace. The empty result means the
// identity is invalid and must be rejected before it reaches the registry.
func NormalizeIdentity(raw string) Identity {
	return Identity(strings.TrimSpace(raw))
}

func (i Identity) IsEmpty() bool {
	return i == ""
}

func (i Identity) String() string {
	return string(i)
}
