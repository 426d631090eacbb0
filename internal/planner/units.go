// internal/planner/units.go
package planner

import (
	"strings"

	"mcp-tpn-planner/internal/patient"
)

const perKilogramSegment = "kg"

// ReferenceValue is the weight used to scale per-kg doses: ideal body
// weight when positive, else actual weight when positive, else 1.
func ReferenceValue(p patient.Profile) float64 {
	if ibw := p.IdealBodyWeight(); ibw > 0 {
		return ibw
	}
	if p.WeightKG > 0 {
		return p.WeightKG
	}
	return 1
}

// IsPerKilogram reports whether a dose unit such as "g/kg" or "mg/kg/min"
// is expressed per kilogram. Anything else, including unparseable units,
// is absolute.
func IsPerKilogram(unit string) bool {
	_, ok := kilogramSegment(unit)
	return ok
}

// ScaledUnit drops the per-kg segment from a dose unit: "g/kg" becomes
// "g", "mg/kg/min" becomes "mg/min". Other units are returned unchanged.
func ScaledUnit(unit string) string {
	parts := strings.Split(unit, "/")
	idx, ok := kilogramSegment(unit)
	if !ok {
		return unit
	}
	return strings.Join(append(parts[:idx:idx], parts[idx+1:]...), "/")
}

func kilogramSegment(unit string) (int, bool) {
	parts := strings.Split(unit, "/")
	for i := 1; i < len(parts); i++ {
		if strings.EqualFold(strings.TrimSpace(parts[i]), perKilogramSegment) {
			return i, true
		}
	}
	return 0, false
}
