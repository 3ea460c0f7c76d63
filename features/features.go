// Package features extracts deterministic, fixed-point feature vectors
// from validator telemetry. It is the single boundary where external float
// readings (latency, uptime, entropy) are quantized and then frozen; every
// consumer downstream sees only fixedpoint.Fixed values.
package features

import (
	"sort"

	"github.com/dmrl789/ippan-core/fixedpoint"
)

// Telemetry is one validator's self-reported operating snapshot.
type Telemetry struct {
	ValidatorID string
	LocalTimeUs int64
	LatencyMs   float64
	UptimePct   float64
	PeerEntropy float64

	CPU               *float64
	Memory            *float64
	NetworkReliability *float64
}

// Vector is a single validator's normalized, sorted-by-id feature vector.
// Index order is fixed: [0]=delta_time_us, [1]=latency, [2]=uptime,
// [3]=peer_entropy, followed by any optional fields present for every
// validator in the set (cpu, memory, network_reliability), in that order.
type Vector struct {
	ValidatorID string
	Values      []int64
}

const (
	latencyClampMaxMs  = 10_000
	uptimeClampMaxMicro = 1_000_000
	entropyClampMaxMicro = 1_000_000
)

// Extract normalizes a telemetry snapshot relative to ippanTimeMedianUs and
// returns feature vectors sorted by ValidatorID, so two nodes observing
// identical telemetry and an identical median always produce byte-identical
// output (spec.md §4.5, §8 property 10).
func Extract(telemetry map[string]Telemetry, ippanTimeMedianUs int64) []Vector {
	ids := make([]string, 0, len(telemetry))
	for id := range telemetry {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	includeOptional := allHaveOptional(telemetry)

	vectors := make([]Vector, 0, len(ids))
	for _, id := range ids {
		t := telemetry[id]
		deltaTimeUs := t.LocalTimeUs - ippanTimeMedianUs

		latency := clampFixed(millisToFixed(t.LatencyMs), 0, fixedpoint.FromInteger(latencyClampMaxMs))
		uptime := clampFixed(percentToFixed(t.UptimePct), 0, fixedpoint.FromRaw(uptimeClampMaxMicro))
		entropy := clampFixed(percentToFixed(t.PeerEntropy), 0, fixedpoint.FromRaw(entropyClampMaxMicro))

		values := []int64{
			deltaTimeUs,
			latency.Raw(),
			uptime.Raw(),
			entropy.Raw(),
		}

		if includeOptional {
			values = append(values,
				optionalRaw(t.CPU),
				optionalRaw(t.Memory),
				optionalRaw(t.NetworkReliability),
			)
		}

		vectors = append(vectors, Vector{ValidatorID: id, Values: values})
	}
	return vectors
}

func allHaveOptional(telemetry map[string]Telemetry) bool {
	if len(telemetry) == 0 {
		return false
	}
	for _, t := range telemetry {
		if t.CPU == nil || t.Memory == nil || t.NetworkReliability == nil {
			return false
		}
	}
	return true
}

func optionalRaw(v *float64) int64 {
	if v == nil {
		return 0
	}
	return percentToFixed(*v).Raw()
}

// millisToFixed converts a millisecond float reading directly into Fixed
// units (1 ms == Fixed(1.0)).
func millisToFixed(ms float64) fixedpoint.Fixed {
	return fixedpoint.FromRaw(int64(ms * float64(fixedpoint.Scale)))
}

// percentToFixed converts a 0-100 percentage float reading into Fixed
// units where 100% maps to Fixed(1.0) (raw 1_000_000) — the representation
// spec.md's uptime_pct/peer_entropy clamp ranges assume.
func percentToFixed(pct float64) fixedpoint.Fixed {
	return fixedpoint.FromRaw(int64(pct / 100 * float64(fixedpoint.Scale)))
}

func clampFixed(v, lo, hi fixedpoint.Fixed) fixedpoint.Fixed {
	if v.Raw() < lo.Raw() {
		return lo
	}
	if v.Raw() > hi.Raw() {
		return hi
	}
	return v
}
