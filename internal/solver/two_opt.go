package solver

// TwoOpt swaps the suffixes of two routes after the given ranks. The move is
// restricted to vehicle pairs agreeing on the presence of both start and end
// depots; mixing an open route with a depot-bound one is not explored.
type TwoOpt struct {
	opBase
}

// NewTwoOpt builds a 2-opt candidate. Both routes must be non-empty, with
// sRank < source.Size() and tRank < target.Size(), on distinct vehicles.
func NewTwoOpt(in *Input, st *SolutionState, source *TWRoute, sVehicle, sRank int, target *TWRoute, tVehicle, tRank int) *TwoOpt {
	return &TwoOpt{opBase{
		in: in, state: st,
		source: source, target: target,
		sVehicle: sVehicle, sRank: sRank,
		tVehicle: tVehicle, tRank: tRank,
	}}
}

func (op *TwoOpt) sTail() []int { return op.source.Jobs[op.sRank+1:] }
func (op *TwoOpt) tTail() []int { return op.target.Jobs[op.tRank+1:] }

// tailCost prices the junction from the pivot job through a replacement tail
// to the route's end depot.
func (op *TwoOpt) tailCost(r *TWRoute, pivotRank int, tail []int) int64 {
	pivot := op.in.JobIndex(r.Jobs[pivotRank])
	v := r.vehicle(op.in)
	end := -1
	if v.HasEnd() {
		end = v.End.Index
	}
	return op.seqCost(pivot, tail, end)
}

func (op *TwoOpt) Gain() int64 {
	if !op.gainComputed {
		old := op.tailCost(op.source, op.sRank, op.sTail()) +
			op.tailCost(op.target, op.tRank, op.tTail())
		swapped := op.tailCost(op.source, op.sRank, op.tTail()) +
			op.tailCost(op.target, op.tRank, op.sTail())
		op.storedGain = old - swapped
		op.gainComputed = true
	}
	return op.storedGain
}

func (op *TwoOpt) IsValid() bool {
	vs := &op.in.Vehicles[op.sVehicle]
	vt := &op.in.Vehicles[op.tVehicle]
	if vs.HasStart() != vt.HasStart() || vs.HasEnd() != vt.HasEnd() {
		return false
	}
	for _, j := range op.tTail() {
		if !op.in.VehicleOKWithJob(op.sVehicle, j) {
			return false
		}
	}
	for _, j := range op.sTail() {
		if !op.in.VehicleOKWithJob(op.tVehicle, j) {
			return false
		}
	}

	sLoad := op.headAmount(op.sVehicle, op.sRank).Plus(op.tailAmount(op.tVehicle, op.tRank))
	if !sLoad.LTE(vs.Capacity) {
		return false
	}
	tLoad := op.headAmount(op.tVehicle, op.tRank).Plus(op.tailAmount(op.sVehicle, op.sRank))
	if !tLoad.LTE(vt.Capacity) {
		return false
	}

	return op.source.IsValidAdditionForTW(op.in, op.tTail(), op.sRank+1, op.source.Size()) &&
		op.target.IsValidAdditionForTW(op.in, op.sTail(), op.tRank+1, op.target.Size())
}

// headAmount is the load of route v up to and including rank.
func (op *TwoOpt) headAmount(v, rank int) Amount {
	return op.state.FwdAmounts[v][rank]
}

// tailAmount is the load of route v strictly after rank.
func (op *TwoOpt) tailAmount(v, rank int) Amount {
	bwd := op.state.BwdAmounts[v]
	if rank+1 >= len(bwd) {
		return ZeroAmount(op.in.AmountSize())
	}
	return bwd[rank+1]
}

func (op *TwoOpt) Apply() {
	sTail := append([]int(nil), op.sTail()...)
	tTail := append([]int(nil), op.tTail()...)
	op.source.ReplaceJobs(op.in, tTail, op.sRank+1, op.source.Size())
	op.target.ReplaceJobs(op.in, sTail, op.tRank+1, op.target.Size())
}

func (op *TwoOpt) AdditionCandidates() []int { return []int{op.sVehicle, op.tVehicle} }

func (op *TwoOpt) UpdateCandidates() []int { return []int{op.sVehicle, op.tVehicle} }
