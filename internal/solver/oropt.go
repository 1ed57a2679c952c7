package solver

// OrOpt moves an edge of two consecutive jobs from the source route to an
// insertion slot on the target route, forward or reversed, whichever gains
// more.
type OrOpt struct {
	opBase
	reverseSegment bool
}

// NewOrOpt builds an or-opt candidate. Source and target must be distinct,
// source.Size() >= 2, sRank <= source.Size()-2, tRank in [0, target.Size()].
func NewOrOpt(in *Input, st *SolutionState, source *TWRoute, sVehicle, sRank int, target *TWRoute, tVehicle, tRank int) *OrOpt {
	return &OrOpt{opBase: opBase{
		in: in, state: st,
		source: source, target: target,
		sVehicle: sVehicle, sRank: sRank,
		tVehicle: tVehicle, tRank: tRank,
	}}
}

func (op *OrOpt) segment(reversed bool) []int {
	a, b := op.source.Jobs[op.sRank], op.source.Jobs[op.sRank+1]
	if reversed {
		a, b = b, a
	}
	op.scratch[0], op.scratch[1] = a, b
	return op.scratch[:2]
}

func (op *OrOpt) Gain() int64 {
	if !op.gainComputed {
		removal := op.removalGain(op.source, op.sRank, 2)
		normal := removal - op.insertionCost(op.target, op.tRank, op.segment(false))
		reversed := removal - op.insertionCost(op.target, op.tRank, op.segment(true))
		if reversed > normal {
			op.reverseSegment = true
			op.storedGain = reversed
		} else {
			op.storedGain = normal
		}
		op.gainComputed = true
	}
	return op.storedGain
}

func (op *OrOpt) IsValid() bool {
	a, b := op.source.Jobs[op.sRank], op.source.Jobs[op.sRank+1]
	if !op.in.VehicleOKWithJob(op.tVehicle, a) || !op.in.VehicleOKWithJob(op.tVehicle, b) {
		return false
	}
	load := op.state.RouteAmount(op.in, op.tVehicle).Plus(op.in.Jobs[a].Amount)
	load.Add(op.in.Jobs[b].Amount)
	if !load.LTE(op.in.Vehicles[op.tVehicle].Capacity) {
		return false
	}
	return op.target.IsValidAdditionForTW(op.in, op.segment(op.reverseSegment), op.tRank, op.tRank)
}

func (op *OrOpt) Apply() {
	seg := op.segment(op.reverseSegment)
	op.target.ReplaceJobs(op.in, seg, op.tRank, op.tRank)
	op.source.RemoveJobs(op.in, op.sRank, 2)
}

func (op *OrOpt) AdditionCandidates() []int { return []int{op.sVehicle} }

func (op *OrOpt) UpdateCandidates() []int { return []int{op.sVehicle, op.tVehicle} }
