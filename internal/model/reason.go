package model

import (
	"errors"
	"strings"
)

// ReasonKind identifies which heuristic flagged a registration.
type ReasonKind int

const (
	// ReasonShort means the trimmed code block is shorter than the threshold.
	ReasonShort ReasonKind = iota

	// ReasonMarker means the trimmed code block contains a marker word.
	ReasonMarker
)

// String returns the lower-case name of the reason kind.
func (k ReasonKind) String() string {
	switch k {
	case ReasonShort:
		return "short"
	case ReasonMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name so JSON reports stay readable.
func (k ReasonKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *ReasonKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "short":
		*k = ReasonShort
	case "marker":
		*k = ReasonMarker
	default:
		return errors.New("unknown reason kind: " + string(text))
	}
	return nil
}

// Reason explains why a registration was reported as a stub.
type Reason struct {
	Kind ReasonKind `json:"kind"`

	// Marker is the marker word found. Empty for ReasonShort.
	Marker string `json:"marker,omitempty"`
}

// ShortReason returns the reason for a block under the length threshold.
func ShortReason() Reason {
	return Reason{Kind: ReasonShort}
}

// MarkerReason returns the reason for a block containing marker.
func MarkerReason(marker string) Reason {
	return Reason{Kind: ReasonMarker, Marker: marker}
}

// String returns "short" or "marker:<word>".
func (r Reason) String() string {
	if r.Kind == ReasonMarker {
		return r.Kind.String() + ":" + r.Marker
	}
	return r.Kind.String()
}

// JoinReasons renders reasons as a comma separated list.
func JoinReasons(reasons []Reason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
