package routing

import "context"

// DefaultProfile is assumed when vehicles carry no profile.
const DefaultProfile = "car"

// Provider is the contract a routing back-end fulfils: given coordinates and
// a profile name, return a square duration matrix and, optionally, a
// polyline per consecutive pair. The solver only ever sees the finished
// matrix.
type Provider interface {
	Matrix(ctx context.Context, profile string, coords [][2]float64) ([][]int64, error)
	// Geometry returns one encoded polyline per consecutive coordinate
	// pair; empty strings when the back-end has none.
	Geometry(ctx context.Context, profile string, coords [][2]float64) ([]string, error)
}
