package routing

import (
	"context"
	"testing"
)

func TestHaversineMatrixShape(t *testing.T) {
	p := NewHaversine()
	coords := [][2]float64{{2.35, 48.85}, {2.37, 48.86}, {2.30, 48.80}}
	m, err := p.Matrix(context.Background(), "car", coords)
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	if len(m) != 3 {
		t.Fatalf("rows: %d", len(m))
	}
	for i, row := range m {
		if len(row) != 3 {
			t.Fatalf("row %d: %d cols", i, len(row))
		}
		if row[i] != 0 {
			t.Fatalf("diagonal not zero: %d", row[i])
		}
	}
	if m[0][1] <= 0 || m[0][2] <= 0 {
		t.Fatalf("expected positive durations: %v", m)
	}
	// the flat-speed model is symmetric
	if m[0][1] != m[1][0] {
		t.Fatalf("expected symmetry: %d vs %d", m[0][1], m[1][0])
	}
}

func TestHaversineSlowerProfileTakesLonger(t *testing.T) {
	p := NewHaversine()
	coords := [][2]float64{{2.35, 48.85}, {2.37, 48.86}}
	car, _ := p.Matrix(context.Background(), "car", coords)
	bike, _ := p.Matrix(context.Background(), "bicycle", coords)
	if bike[0][1] <= car[0][1] {
		t.Fatalf("bicycle should be slower: %d vs %d", bike[0][1], car[0][1])
	}
}

func TestHaversineGeometryPerLeg(t *testing.T) {
	p := NewHaversine()
	coords := [][2]float64{{0, 0}, {1, 1}, {2, 2}}
	lines, err := p.Geometry(context.Background(), "car", coords)
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("legs: %d", len(lines))
	}
}
