package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths. Everything the fitting engine sees is CSS px (96 per inch).

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers, read as px
	UnitPX                  // CSS pixels
	UnitPT                  // points
	UnitMM                  // millimeters
	UnitCM                  // centimeters
	UnitIN                  // inches
	UnitEM                  // relative to the base font size
	UnitPercent             // relative to a reference length
)

// Conversion constants between CSS px, pt and mm.
const (
	PxPerIn = 96.0
	PtPerIn = 72.0
	MmPerIn = 25.4
	PxToPt  = PtPerIn / PxPerIn
	PtToPx  = PxPerIn / PtPerIn
	PxToMm  = MmPerIn / PxPerIn
	MmToPx  = PxPerIn / MmPerIn
)

var unitSuffixes = []struct {
	s string
	u Unit
}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"em", UnitEM}, {"%", UnitPercent}}

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	for _, suf := range unitSuffixes {
		if suf.u == u {
			return suf.s
		}
	}
	return ""
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX resolves the length in CSS px. em is the base font size in px and ref the
// reference length for percentages.
func (l Length) ToPX(em, ref float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	case UnitCM:
		return l.Value * 10 * MmToPx
	case UnitIN:
		return l.Value * PxPerIn
	case UnitEM:
		return l.Value * em
	case UnitPercent:
		return ref * l.Value / 100
	default:
		return l.Value
	}
}

// ParseLength parses a CSS-like length string ("12px", "9pt", "1.5em", "50%").
// The boolean is false when the numeric part is not a number.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// ParsePX parses value and resolves it in px, returning fallback when it does not parse.
func ParsePX(value string, em, ref, fallback float64) float64 {
	l, ok := ParseLength(value)
	if !ok {
		return fallback
	}
	return l.ToPX(em, ref)
}
