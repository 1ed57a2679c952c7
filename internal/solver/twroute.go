package solver

// TWRoute extends a RawRoute with a feasibility cache: for each position the
// earliest and latest feasible service start and the chosen time window. The
// cache lets insertion candidates be accepted or rejected without rescanning
// the whole route.
type TWRoute struct {
	RawRoute

	VehicleRank int
	Earliest    []int64
	Latest      []int64
	TWRank      []int
}

// NewTWRoute returns an empty route for the vehicle at the given rank.
func NewTWRoute(vehicleRank int) *TWRoute {
	return &TWRoute{VehicleRank: vehicleRank}
}

func (r *TWRoute) vehicle(in *Input) *Vehicle { return &in.Vehicles[r.VehicleRank] }

// previousInfo returns the departure time and location index in effect just
// before position rank. A negative location means no travel edge (vehicle
// without a start depot).
func (r *TWRoute) previousInfo(in *Input, rank int) (int64, int) {
	v := r.vehicle(in)
	if rank == 0 {
		if v.HasStart() {
			return v.TW.Start, v.Start.Index
		}
		return v.TW.Start, -1
	}
	prev := r.Jobs[rank-1]
	return r.Earliest[rank-1] + in.Jobs[prev].Service, in.JobIndex(prev)
}

func travel(in *Input, from, to int) int64 {
	if from < 0 {
		return 0
	}
	return in.Matrix().At(from, to)
}

// earliestStart picks the first window of job j able to host a service start
// at or after arrival. The second return is the window rank, -1 when no
// window fits.
func earliestStart(in *Input, j int, arrival int64) (int64, int) {
	for wi, tw := range in.Jobs[j].TWs {
		if arrival <= tw.End {
			if arrival < tw.Start {
				return tw.Start, wi
			}
			return arrival, wi
		}
	}
	return 0, -1
}

// updateSchedule recomputes the earliest/latest caches after a mutation.
// Returns false when the current sequence is infeasible, which after a valid
// apply is an invariant violation.
func (r *TWRoute) updateSchedule(in *Input) bool {
	n := r.Size()
	r.Earliest = resizeInt64(r.Earliest, n)
	r.Latest = resizeInt64(r.Latest, n)
	r.TWRank = resizeInt(r.TWRank, n)
	if n == 0 {
		return true
	}

	v := r.vehicle(in)

	t, loc := r.previousInfo(in, 0)
	for k, j := range r.Jobs {
		arrival := t + travel(in, loc, in.JobIndex(j))
		start, wi := earliestStart(in, j, arrival)
		if wi < 0 {
			return false
		}
		r.Earliest[k] = start
		r.TWRank[k] = wi
		t = start + in.Jobs[j].Service
		loc = in.JobIndex(j)
	}

	last := n - 1
	lastJob := r.Jobs[last]
	latest := v.TW.End - in.Jobs[lastJob].Service
	if v.HasEnd() {
		latest -= travel(in, in.JobIndex(lastJob), v.End.Index)
	}
	if end := in.Jobs[lastJob].TWs[r.TWRank[last]].End; end < latest {
		latest = end
	}
	r.Latest[last] = latest
	for k := last - 1; k >= 0; k-- {
		j := r.Jobs[k]
		latest := r.Latest[k+1] - in.Jobs[j].Service - travel(in, in.JobIndex(j), in.JobIndex(r.Jobs[k+1]))
		if end := in.Jobs[j].TWs[r.TWRank[k]].End; end < latest {
			latest = end
		}
		r.Latest[k] = latest
	}

	for k := range r.Jobs {
		if r.Earliest[k] > r.Latest[k] {
			return false
		}
	}
	return true
}

// IsValidAdditionForTW reports whether replacing the half-open range
// [first, last) with jobs keeps the route time-window feasible. An empty jobs
// slice checks a plain removal; first == last checks a plain insertion. Only
// the replaced span and its junction are scanned; the untouched prefix and
// suffix are covered by the cached bounds.
func (r *TWRoute) IsValidAdditionForTW(in *Input, jobs []int, first, last int) bool {
	v := r.vehicle(in)
	t, loc := r.previousInfo(in, first)

	for _, j := range jobs {
		arrival := t + travel(in, loc, in.JobIndex(j))
		start, wi := earliestStart(in, j, arrival)
		if wi < 0 {
			return false
		}
		t = start + in.Jobs[j].Service
		loc = in.JobIndex(j)
	}

	if last == r.Size() {
		if v.HasEnd() {
			if loc >= 0 {
				t += travel(in, loc, v.End.Index)
			}
		}
		return t <= v.TW.End
	}

	next := r.Jobs[last]
	arrival := t + travel(in, loc, in.JobIndex(next))
	start, wi := earliestStart(in, next, arrival)
	if wi < 0 {
		return false
	}
	return start <= r.Latest[last]
}

// Add inserts job at the given rank and refreshes the cache.
func (r *TWRoute) Add(in *Input, job, rank int) {
	r.Insert(rank, job)
	r.updateSchedule(in)
}

// RemoveJobs drops count jobs starting at rank and refreshes the cache.
func (r *TWRoute) RemoveJobs(in *Input, rank, count int) {
	r.Remove(rank, count)
	r.updateSchedule(in)
}

// ReplaceJobs substitutes [first, last) with jobs and refreshes the cache.
func (r *TWRoute) ReplaceJobs(in *Input, jobs []int, first, last int) {
	r.Replace(first, last, jobs)
	r.updateSchedule(in)
}

// ReverseSegment flips [k1, k2] and refreshes the cache.
func (r *TWRoute) ReverseSegment(in *Input, k1, k2 int) {
	r.Reverse(k1, k2)
	r.updateSchedule(in)
}

// Feasible recomputes the cache and reports time-window consistency. Used by
// invariant checks after applied moves.
func (r *TWRoute) Feasible(in *Input) bool { return r.updateSchedule(in) }

func resizeInt64(s []int64, n int) []int64 {
	if cap(s) < n {
		return make([]int64, n)
	}
	return s[:n]
}

func resizeInt(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}
