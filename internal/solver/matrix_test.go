package solver

import (
	"errors"
	"testing"
)

func TestNewMatrixValid(t *testing.T) {
	m, err := NewMatrix([][]int64{{0, 3}, {7, 0}})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	if m.Size() != 2 {
		t.Fatalf("size: got %d", m.Size())
	}
	if m.At(0, 1) != 3 || m.At(1, 0) != 7 {
		t.Fatalf("unexpected cells: %d %d", m.At(0, 1), m.At(1, 0))
	}
}

func TestNewMatrixRejectsNonSquare(t *testing.T) {
	if _, err := NewMatrix([][]int64{{0, 1}, {1}}); err == nil {
		t.Fatal("expected error for ragged matrix")
	}
	if _, err := NewMatrix(nil); err == nil {
		t.Fatal("expected error for empty matrix")
	}
}

func TestNewMatrixRejectsBadCells(t *testing.T) {
	if _, err := NewMatrix([][]int64{{0, -1}, {1, 0}}); err == nil {
		t.Fatal("expected error for negative cell")
	}
	_, err := NewMatrix([][]int64{{0, UnreachableCost}, {1, 0}})
	var se *Error
	if !errors.As(err, &se) || se.Kind != InputError {
		t.Fatalf("expected input error kind, got %v", err)
	}
}
