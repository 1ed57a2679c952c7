package solver

// IntraRelocate moves a single job to another position of the same route.
// tRank is the insertion rank in the route after removal.
type IntraRelocate struct {
	opBase
	first int
	last  int
	moved []int
}

// NewIntraRelocate builds an intra-route relocate candidate with
// tRank != sRank, both in [0, route.Size()-1].
func NewIntraRelocate(in *Input, st *SolutionState, route *TWRoute, vehicle, sRank, tRank int) *IntraRelocate {
	return &IntraRelocate{opBase: opBase{
		in: in, state: st,
		source: route, target: route,
		sVehicle: vehicle, sRank: sRank,
		tVehicle: vehicle, tRank: tRank,
	}}
}

func (op *IntraRelocate) movedJobs() []int {
	if op.moved != nil {
		return op.moved
	}
	job := op.source.Jobs[op.sRank]
	if op.tRank < op.sRank {
		op.first, op.last = op.tRank, op.sRank+1
		op.moved = make([]int, 0, op.last-op.first)
		op.moved = append(op.moved, job)
		op.moved = append(op.moved, op.source.Jobs[op.tRank:op.sRank]...)
	} else {
		op.first, op.last = op.sRank, op.tRank+1
		op.moved = make([]int, 0, op.last-op.first)
		op.moved = append(op.moved, op.source.Jobs[op.sRank+1:op.tRank+1]...)
		op.moved = append(op.moved, job)
	}
	return op.moved
}

func (op *IntraRelocate) Gain() int64 {
	if !op.gainComputed {
		seq := op.movedJobs()
		op.storedGain = op.spanGain(op.source, op.first, op.last, seq)
		op.gainComputed = true
	}
	return op.storedGain
}

func (op *IntraRelocate) IsValid() bool {
	return op.source.IsValidAdditionForTW(op.in, op.movedJobs(), op.first, op.last)
}

func (op *IntraRelocate) Apply() {
	op.source.ReplaceJobs(op.in, op.movedJobs(), op.first, op.last)
}

func (op *IntraRelocate) AdditionCandidates() []int { return nil }

func (op *IntraRelocate) UpdateCandidates() []int { return []int{op.sVehicle} }
