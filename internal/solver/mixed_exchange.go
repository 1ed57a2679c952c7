package solver

// MixedExchange swaps a single source job against a target edge of two
// consecutive jobs. The edge may land on the source route reversed.
type MixedExchange struct {
	opBase
	reverseTEdge bool
}

// NewMixedExchange builds a mixed-exchange candidate. Source must be
// non-empty and target must hold at least two jobs, with tRank <=
// target.Size()-2, on distinct vehicles.
func NewMixedExchange(in *Input, st *SolutionState, source *TWRoute, sVehicle, sRank int, target *TWRoute, tVehicle, tRank int) *MixedExchange {
	return &MixedExchange{opBase: opBase{
		in: in, state: st,
		source: source, target: target,
		sVehicle: sVehicle, sRank: sRank,
		tVehicle: tVehicle, tRank: tRank,
	}}
}

func (op *MixedExchange) tSegment(reversed bool) []int {
	a, b := op.target.Jobs[op.tRank], op.target.Jobs[op.tRank+1]
	if reversed {
		a, b = b, a
	}
	op.scratch[0], op.scratch[1] = a, b
	return op.scratch[:2]
}

func (op *MixedExchange) sJobSlice() []int {
	op.scratch[2] = op.source.Jobs[op.sRank]
	return op.scratch[2:3]
}

func (op *MixedExchange) Gain() int64 {
	if op.gainComputed {
		return op.storedGain
	}
	sPrev := op.prevIndex(op.source, op.sRank)
	sNext := op.nextIndex(op.source, op.sRank)
	sOld := op.seqCost(sPrev, op.source.Jobs[op.sRank:op.sRank+1], sNext)
	normal := sOld - op.seqCost(sPrev, op.tSegment(false), sNext)
	reversed := sOld - op.seqCost(sPrev, op.tSegment(true), sNext)
	sGain := normal
	if reversed > normal {
		op.reverseTEdge = true
		sGain = reversed
	}

	tPrev := op.prevIndex(op.target, op.tRank)
	tNext := op.nextIndex(op.target, op.tRank+1)
	tGain := op.seqCost(tPrev, op.target.Jobs[op.tRank:op.tRank+2], tNext) -
		op.seqCost(tPrev, op.sJobSlice(), tNext)

	op.storedGain = sGain + tGain
	op.gainComputed = true
	return op.storedGain
}

func (op *MixedExchange) IsValid() bool {
	sJob := op.source.Jobs[op.sRank]
	tJob, tAfter := op.target.Jobs[op.tRank], op.target.Jobs[op.tRank+1]

	if !op.in.VehicleOKWithJob(op.tVehicle, sJob) ||
		!op.in.VehicleOKWithJob(op.sVehicle, tJob) ||
		!op.in.VehicleOKWithJob(op.sVehicle, tAfter) {
		return false
	}

	sLoad := op.state.RouteAmount(op.in, op.sVehicle).
		Minus(op.in.Jobs[sJob].Amount).
		Plus(op.in.Jobs[tJob].Amount).Plus(op.in.Jobs[tAfter].Amount)
	if !sLoad.LTE(op.in.Vehicles[op.sVehicle].Capacity) {
		return false
	}
	tLoad := op.state.RouteAmount(op.in, op.tVehicle).
		Minus(op.in.Jobs[tJob].Amount).Minus(op.in.Jobs[tAfter].Amount).
		Plus(op.in.Jobs[sJob].Amount)
	if !tLoad.LTE(op.in.Vehicles[op.tVehicle].Capacity) {
		return false
	}

	return op.source.IsValidAdditionForTW(op.in, op.tSegment(op.reverseTEdge), op.sRank, op.sRank+1) &&
		op.target.IsValidAdditionForTW(op.in, op.sJobSlice(), op.tRank, op.tRank+2)
}

func (op *MixedExchange) Apply() {
	seg := append([]int(nil), op.tSegment(op.reverseTEdge)...)
	sJob := append([]int(nil), op.sJobSlice()...)
	op.source.ReplaceJobs(op.in, seg, op.sRank, op.sRank+1)
	op.target.ReplaceJobs(op.in, sJob, op.tRank, op.tRank+2)
}

func (op *MixedExchange) AdditionCandidates() []int { return []int{op.sVehicle, op.tVehicle} }

func (op *MixedExchange) UpdateCandidates() []int { return []int{op.sVehicle, op.tVehicle} }
