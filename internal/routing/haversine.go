package routing

import (
	"context"
	"math"
)

// Haversine is the fallback provider: great-circle distances at a flat
// per-profile speed, no geometry. Good enough for tests and for callers that
// have no routing back-end deployed.
type Haversine struct {
	// SpeedKph per profile; unknown profiles fall back to 50 km/h.
	SpeedKph map[string]float64
}

// NewHaversine returns a provider with common profile speeds.
func NewHaversine() *Haversine {
	return &Haversine{SpeedKph: map[string]float64{
		"car":     50,
		"bicycle": 16,
		"foot":    5,
	}}
}

func (h *Haversine) speed(profile string) float64 {
	if s, ok := h.SpeedKph[profile]; ok && s > 0 {
		return s
	}
	return 50
}

// Matrix returns pairwise travel durations in seconds.
func (h *Haversine) Matrix(_ context.Context, profile string, coords [][2]float64) ([][]int64, error) {
	mps := h.speed(profile) / 3.6
	out := make([][]int64, len(coords))
	for i := range coords {
		out[i] = make([]int64, len(coords))
		for j := range coords {
			if i == j {
				continue
			}
			d := haversineMeters(coords[i][1], coords[i][0], coords[j][1], coords[j][0])
			out[i][j] = int64(math.Round(d / mps))
		}
	}
	return out, nil
}

// Geometry returns empty polylines: straight-line routing has no shape worth
// reporting.
func (h *Haversine) Geometry(_ context.Context, _ string, coords [][2]float64) ([]string, error) {
	if len(coords) < 2 {
		return nil, nil
	}
	return make([]string, len(coords)-1), nil
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
