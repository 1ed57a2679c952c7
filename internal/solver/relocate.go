package solver

// Relocate moves a single job from source rank to an insertion slot on the
// target route.
type Relocate struct {
	opBase
}

// NewRelocate builds a relocate candidate. Source and target must be
// distinct, source non-empty, tRank in [0, target.Size()].
func NewRelocate(in *Input, st *SolutionState, source *TWRoute, sVehicle, sRank int, target *TWRoute, tVehicle, tRank int) *Relocate {
	return &Relocate{opBase{
		in: in, state: st,
		source: source, target: target,
		sVehicle: sVehicle, sRank: sRank,
		tVehicle: tVehicle, tRank: tRank,
	}}
}

func (op *Relocate) Gain() int64 {
	if !op.gainComputed {
		op.scratch[0] = op.source.Jobs[op.sRank]
		op.storedGain = op.removalGain(op.source, op.sRank, 1) -
			op.insertionCost(op.target, op.tRank, op.scratch[:1])
		op.gainComputed = true
	}
	return op.storedGain
}

func (op *Relocate) IsValid() bool {
	job := op.source.Jobs[op.sRank]
	if !op.in.VehicleOKWithJob(op.tVehicle, job) {
		return false
	}
	load := op.state.RouteAmount(op.in, op.tVehicle).Plus(op.in.Jobs[job].Amount)
	if !load.LTE(op.in.Vehicles[op.tVehicle].Capacity) {
		return false
	}
	op.scratch[0] = job
	return op.target.IsValidAdditionForTW(op.in, op.scratch[:1], op.tRank, op.tRank)
}

func (op *Relocate) Apply() {
	job := op.source.Jobs[op.sRank]
	op.target.Add(op.in, job, op.tRank)
	op.source.RemoveJobs(op.in, op.sRank, 1)
}

func (op *Relocate) AdditionCandidates() []int { return []int{op.sVehicle} }

func (op *Relocate) UpdateCandidates() []int { return []int{op.sVehicle, op.tVehicle} }
