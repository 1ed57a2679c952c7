package solver

// CrossExchange swaps one edge of the source route against one edge of the
// target route. Each edge may be inserted reversed on the other side; both
// orientations are priced and the better one is kept, preferring the normal
// order on ties.
type CrossExchange struct {
	opBase

	// reverseSEdge places the source edge reversed on the target route,
	// reverseTEdge the target edge reversed on the source route.
	reverseSEdge bool
	reverseTEdge bool
}

// NewCrossExchange builds a cross-exchange candidate. Both routes must hold
// at least two jobs, with sRank <= source.Size()-2 and tRank <=
// target.Size()-2, on distinct vehicles.
func NewCrossExchange(in *Input, st *SolutionState, source *TWRoute, sVehicle, sRank int, target *TWRoute, tVehicle, tRank int) *CrossExchange {
	return &CrossExchange{opBase: opBase{
		in: in, state: st,
		source: source, target: target,
		sVehicle: sVehicle, sRank: sRank,
		tVehicle: tVehicle, tRank: tRank,
	}}
}

func (op *CrossExchange) Gain() int64 {
	if op.gainComputed {
		return op.storedGain
	}
	m := op.matrix()
	sIdx := op.in.JobIndex(op.source.Jobs[op.sRank])
	sAfterIdx := op.in.JobIndex(op.source.Jobs[op.sRank+1])
	tIdx := op.in.JobIndex(op.target.Jobs[op.tRank])
	tAfterIdx := op.in.JobIndex(op.target.Jobs[op.tRank+1])

	// Replacing the source edge with the target edge: the edges adjacent to
	// the swapped pair are repriced, the swapped inner edges cancel out
	// unless an orientation is flipped.
	sPrev := op.prevIndex(op.source, op.sRank)
	sNext := op.nextIndex(op.source, op.sRank+1)
	previousCost := op.cost(sPrev, tIdx)
	nextCost := op.cost(tAfterIdx, sNext)
	reversePreviousCost := op.cost(sPrev, tAfterIdx)
	reverseNextCost := op.cost(tIdx, sNext)

	edgeCosts := op.state.EdgeCostsAroundEdge[op.sVehicle][op.sRank]
	normalSGain := edgeCosts - previousCost - nextCost
	reverseEdgeCost := m.At(tIdx, tAfterIdx) - m.At(tAfterIdx, tIdx)
	reversedSGain := edgeCosts + reverseEdgeCost - reversePreviousCost - reverseNextCost
	if reversedSGain > normalSGain {
		op.reverseTEdge = true
	}

	tPrev := op.prevIndex(op.target, op.tRank)
	tNext := op.nextIndex(op.target, op.tRank+1)
	previousCost = op.cost(tPrev, sIdx)
	nextCost = op.cost(sAfterIdx, tNext)
	reversePreviousCost = op.cost(tPrev, sAfterIdx)
	reverseNextCost = op.cost(sIdx, tNext)

	edgeCosts = op.state.EdgeCostsAroundEdge[op.tVehicle][op.tRank]
	normalTGain := edgeCosts - previousCost - nextCost
	reverseEdgeCost = m.At(sIdx, sAfterIdx) - m.At(sAfterIdx, sIdx)
	reversedTGain := edgeCosts + reverseEdgeCost - reversePreviousCost - reverseNextCost
	if reversedTGain > normalTGain {
		op.reverseSEdge = true
	}

	op.storedGain = max64(normalSGain, reversedSGain) + max64(normalTGain, reversedTGain)
	op.gainComputed = true
	return op.storedGain
}

func (op *CrossExchange) sSegment() []int {
	a, b := op.source.Jobs[op.sRank], op.source.Jobs[op.sRank+1]
	if op.reverseSEdge {
		a, b = b, a
	}
	op.scratch[0], op.scratch[1] = a, b
	return op.scratch[:2]
}

func (op *CrossExchange) tSegment() []int {
	a, b := op.target.Jobs[op.tRank], op.target.Jobs[op.tRank+1]
	if op.reverseTEdge {
		a, b = b, a
	}
	op.scratch[2], op.scratch[3] = a, b
	return op.scratch[2:4]
}

func (op *CrossExchange) IsValid() bool {
	sJob, sAfter := op.source.Jobs[op.sRank], op.source.Jobs[op.sRank+1]
	tJob, tAfter := op.target.Jobs[op.tRank], op.target.Jobs[op.tRank+1]

	if !op.in.VehicleOKWithJob(op.tVehicle, sJob) || !op.in.VehicleOKWithJob(op.tVehicle, sAfter) ||
		!op.in.VehicleOKWithJob(op.sVehicle, tJob) || !op.in.VehicleOKWithJob(op.sVehicle, tAfter) {
		return false
	}

	sLoad := op.state.RouteAmount(op.in, op.sVehicle).
		Minus(op.in.Jobs[sJob].Amount).Minus(op.in.Jobs[sAfter].Amount).
		Plus(op.in.Jobs[tJob].Amount).Plus(op.in.Jobs[tAfter].Amount)
	if !sLoad.LTE(op.in.Vehicles[op.sVehicle].Capacity) {
		return false
	}
	tLoad := op.state.RouteAmount(op.in, op.tVehicle).
		Minus(op.in.Jobs[tJob].Amount).Minus(op.in.Jobs[tAfter].Amount).
		Plus(op.in.Jobs[sJob].Amount).Plus(op.in.Jobs[sAfter].Amount)
	if !tLoad.LTE(op.in.Vehicles[op.tVehicle].Capacity) {
		return false
	}

	return op.source.IsValidAdditionForTW(op.in, op.tSegment(), op.sRank, op.sRank+2) &&
		op.target.IsValidAdditionForTW(op.in, op.sSegment(), op.tRank, op.tRank+2)
}

func (op *CrossExchange) Apply() {
	sSeg := append([]int(nil), op.sSegment()...)
	tSeg := append([]int(nil), op.tSegment()...)
	op.source.ReplaceJobs(op.in, tSeg, op.sRank, op.sRank+2)
	op.target.ReplaceJobs(op.in, sSeg, op.tRank, op.tRank+2)
}

func (op *CrossExchange) AdditionCandidates() []int { return []int{op.sVehicle, op.tVehicle} }

func (op *CrossExchange) UpdateCandidates() []int { return []int{op.sVehicle, op.tVehicle} }

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
