package solver

// Amount is a capacity demand vector. All amounts in one problem share the
// same length after input normalization.
type Amount []int64

// ZeroAmount returns an all-zero amount of the given arity.
func ZeroAmount(n int) Amount { return make(Amount, n) }

// Clone returns an independent copy.
func (a Amount) Clone() Amount {
	out := make(Amount, len(a))
	copy(out, a)
	return out
}

// Add accumulates b into a in place.
func (a Amount) Add(b Amount) {
	for i := range b {
		a[i] += b[i]
	}
}

// Sub removes b from a in place.
func (a Amount) Sub(b Amount) {
	for i := range b {
		a[i] -= b[i]
	}
}

// Plus returns a + b as a fresh amount.
func (a Amount) Plus(b Amount) Amount {
	out := a.Clone()
	out.Add(b)
	return out
}

// Minus returns a - b as a fresh amount.
func (a Amount) Minus(b Amount) Amount {
	out := a.Clone()
	out.Sub(b)
	return out
}

// LTE reports whether a <= b component-wise.
func (a Amount) LTE(b Amount) bool {
	for i := range a {
		if a[i] > b[i] {
			return false
		}
	}
	return true
}
