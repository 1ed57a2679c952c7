package solver

// Operator is a candidate move over one or two routes. Gain is deterministic
// and idempotent; Apply requires a preceding IsValid returning true.
type Operator interface {
	// Gain returns old cost minus new cost for the move, computing and
	// memoizing it on first call.
	Gain() int64
	// IsValid reports whether applying the move preserves capacity, skill
	// and time-window invariants on the affected routes.
	IsValid() bool
	// Apply mutates the underlying routes to realise the move.
	Apply()
	// AdditionCandidates lists vehicles whose room for unassigned jobs may
	// have changed.
	AdditionCandidates() []int
	// UpdateCandidates lists vehicles whose solution-state entries must be
	// refreshed.
	UpdateCandidates() []int
}

// opBase carries the parameter bundle shared by all operators.
type opBase struct {
	in     *Input
	state  *SolutionState
	source *TWRoute
	target *TWRoute

	sVehicle int
	sRank    int
	tVehicle int
	tRank    int

	storedGain   int64
	gainComputed bool

	// scratch backs short candidate sequences so hot-loop evaluation does
	// not allocate.
	scratch [4]int
}

func (o *opBase) matrix() *Matrix { return o.in.Matrix() }

// cost returns the matrix cost between two location indices, zero when
// either side is absent (open route end).
func (o *opBase) cost(from, to int) int64 {
	if from < 0 || to < 0 {
		return 0
	}
	return o.matrix().At(from, to)
}

// prevIndex is the location preceding position rank on r: previous job,
// vehicle start, or -1 for an open start.
func (o *opBase) prevIndex(r *TWRoute, rank int) int {
	if rank > 0 {
		return o.in.JobIndex(r.Jobs[rank-1])
	}
	v := r.vehicle(o.in)
	if v.HasStart() {
		return v.Start.Index
	}
	return -1
}

// nextIndex is the location following position rank on r: next job, vehicle
// end, or -1 for an open end.
func (o *opBase) nextIndex(r *TWRoute, rank int) int {
	if rank+1 < r.Size() {
		return o.in.JobIndex(r.Jobs[rank+1])
	}
	v := r.vehicle(o.in)
	if v.HasEnd() {
		return v.End.Index
	}
	return -1
}

// insertionNeighbors returns the locations surrounding an insertion slot at
// rank on r (rank may equal r.Size()).
func (o *opBase) insertionNeighbors(r *TWRoute, rank int) (int, int) {
	prev := o.prevIndex(r, rank)
	var next int
	if rank < r.Size() {
		next = o.in.JobIndex(r.Jobs[rank])
	} else {
		v := r.vehicle(o.in)
		if v.HasEnd() {
			next = v.End.Index
		} else {
			next = -1
		}
	}
	return prev, next
}

// seqCost is the chained cost prev -> seq... -> next with -1 meaning an open
// endpoint.
func (o *opBase) seqCost(prev int, seq []int, next int) int64 {
	var total int64
	loc := prev
	for _, j := range seq {
		total += o.cost(loc, o.in.JobIndex(j))
		loc = o.in.JobIndex(j)
	}
	total += o.cost(loc, next)
	return total
}

// removalGain is the saving of dropping the count jobs at [rank, rank+count)
// from r and reconnecting its neighbors.
func (o *opBase) removalGain(r *TWRoute, rank, count int) int64 {
	prev := o.prevIndex(r, rank)
	next := o.nextIndex(r, rank+count-1)
	return o.seqCost(prev, r.Jobs[rank:rank+count], next) - o.cost(prev, next)
}

// insertionCost is the price of splicing seq into r at rank.
func (o *opBase) insertionCost(r *TWRoute, rank int, seq []int) int64 {
	prev, next := o.insertionNeighbors(r, rank)
	return o.seqCost(prev, seq, next) - o.cost(prev, next)
}

// spanGain prices replacing the non-empty range [first, last) of r with seq.
func (o *opBase) spanGain(r *TWRoute, first, last int, seq []int) int64 {
	prev := o.prevIndex(r, first)
	next := o.nextIndex(r, last-1)
	return o.seqCost(prev, r.Jobs[first:last], next) - o.seqCost(prev, seq, next)
}
