package renderapi

import (
	"math"
	"strconv"

	"github.com/iburimskiy/fourier-studio/internal/params"
)

// BuildMixParams flattens a parameter snapshot into the mix wire shape.
func BuildMixParams(snap params.Snapshot) MixParams {
	weights := make([]map[string]float64, 0, params.NumSlots)
	switch ws := snap.Weights.(type) {
	case params.MagPhaseWeights:
		for _, w := range ws {
			weights = append(weights, map[string]float64{
				"magnitude": w.Magnitude,
				"phase":     w.Phase,
			})
		}
	case params.RealImagWeights:
		for _, w := range ws {
			weights = append(weights, map[string]float64{
				"real": w.Real,
				"imag": w.Imag,
			})
		}
	}
	r := snap.Region
	return MixParams{
		Weights:      weights,
		RegionType:   r.Kind.String(),
		RegionWidth:  r.Width,
		RegionHeight: r.Height,
		RegionX:      r.CenterX,
		RegionY:      r.CenterY,
		MixMode:      snap.Weights.Mode().String(),
	}
}

// BuildArrayPayloads converts the snapshot's array list for the map request.
func BuildArrayPayloads(snap params.Snapshot) []ArrayPayload {
	out := make([]ArrayPayload, 0, len(snap.Arrays))
	for _, a := range snap.Arrays {
		out = append(out, arrayPayload(a))
	}
	return out
}

// BuildActiveArrayPayload returns the payload list for the profile request:
// the service reads only the first entry, so the active array goes first.
func BuildActiveArrayPayload(snap params.Snapshot) []ArrayPayload {
	if len(snap.Arrays) == 0 {
		return nil
	}
	i := snap.Active
	if i < 0 || i >= len(snap.Arrays) {
		i = 0
	}
	return []ArrayPayload{arrayPayload(snap.Arrays[i])}
}

func arrayPayload(a params.ArraySpec) ArrayPayload {
	p := ArrayPayload{
		Count:    a.Count,
		Geo:      a.Geometry.String(),
		Curve:    a.Curvature,
		X:        a.X,
		Y:        a.Y,
		Spacing:  a.Spacing,
		Steering: NormalizeSteering(a.Steering),
	}
	if len(a.Offsets) > 0 {
		p.AntennaOffsets = make(map[string]OffsetPayload, len(a.Offsets))
		for idx, off := range a.Offsets {
			p.AntennaOffsets[strconv.Itoa(idx)] = OffsetPayload{X: off.X, Y: off.Y}
		}
	}
	if len(a.FreqMultipliers) > 0 {
		p.FreqMultipliers = make(map[string]float64, len(a.FreqMultipliers))
		for idx, m := range a.FreqMultipliers {
			p.FreqMultipliers[strconv.Itoa(idx)] = m
		}
	}
	return p
}

// NormalizeSteering wraps an angle in degrees into [-180, 180).
func NormalizeSteering(deg float64) float64 {
	m := math.Mod(deg+180, 360)
	if m < 0 {
		m += 360
	}
	return m - 180
}
