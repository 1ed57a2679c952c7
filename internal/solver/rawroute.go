package solver

// RawRoute is an ordered sequence of job ranks assigned to one vehicle. The
// capacity invariant is guarded by callers through operator validity checks.
type RawRoute struct {
	Jobs []int
}

// Size returns the number of jobs on the route.
func (r *RawRoute) Size() int { return len(r.Jobs) }

// Empty reports whether the route has no jobs.
func (r *RawRoute) Empty() bool { return len(r.Jobs) == 0 }

// At returns the job rank at position k.
func (r *RawRoute) At(k int) int { return r.Jobs[k] }

// Insert places job at position k, shifting the tail right.
func (r *RawRoute) Insert(k, job int) {
	r.Jobs = append(r.Jobs, 0)
	copy(r.Jobs[k+1:], r.Jobs[k:])
	r.Jobs[k] = job
}

// Remove drops count jobs starting at position k.
func (r *RawRoute) Remove(k, count int) {
	r.Jobs = append(r.Jobs[:k], r.Jobs[k+count:]...)
}

// Replace substitutes the half-open range [first, last) with jobs.
func (r *RawRoute) Replace(first, last int, jobs []int) {
	tail := append([]int(nil), r.Jobs[last:]...)
	r.Jobs = append(r.Jobs[:first], jobs...)
	r.Jobs = append(r.Jobs, tail...)
}

// Reverse flips the closed range [k1, k2] in place.
func (r *RawRoute) Reverse(k1, k2 int) {
	for a, b := k1, k2; a < b; a, b = a+1, b-1 {
		r.Jobs[a], r.Jobs[b] = r.Jobs[b], r.Jobs[a]
	}
}
