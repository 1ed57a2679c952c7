package solver

import "math"

// UnreachableCost is the sentinel a matrix provider may use for pairs with no
// route between them. It is rejected at construction: the engine never sees
// unreachable pairs.
const UnreachableCost = math.MaxUint32

// maxCellCost bounds individual cells so a full-route sum fits comfortably in
// the signed 64-bit gain arithmetic.
const maxCellCost = math.MaxUint32 - 1

// Matrix is a read-only square matrix of travel costs between location
// indices. It is not assumed symmetric and m[i][i] is not assumed zero.
type Matrix struct {
	n     int
	cells []uint32
}

// NewMatrix validates rows and builds a Matrix. Rows must form a square,
// every cell must be a non-negative integer below the cost headroom bound,
// and the unreachable sentinel is refused.
func NewMatrix(rows [][]int64) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, errInput("empty matrix")
	}
	m := &Matrix{n: n, cells: make([]uint32, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, errInput("invalid matrix line %d: got %d entries, want %d", i, len(row), n)
		}
		for j, c := range row {
			if c < 0 {
				return nil, errInput("negative matrix entry (%d,%d)", i, j)
			}
			if c >= UnreachableCost {
				return nil, errInput("unreachable pair (%d,%d) in matrix", i, j)
			}
			if c > maxCellCost {
				return nil, errInput("matrix entry (%d,%d) exceeds cost headroom", i, j)
			}
			m.cells[i*n+j] = uint32(c)
		}
	}
	return m, nil
}

// Size returns the number of locations.
func (m *Matrix) Size() int { return m.n }

// At returns the travel cost from location i to location j.
func (m *Matrix) At(i, j int) int64 {
	return int64(m.cells[i*m.n+j])
}
