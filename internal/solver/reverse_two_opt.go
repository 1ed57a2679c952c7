package solver

// ReverseTwoOpt reverses the portion of a single route between two ranks.
// Under an asymmetric matrix the reversed interior is repriced edge by edge.
type ReverseTwoOpt struct {
	opBase
	reversed []int
}

// NewReverseTwoOpt builds a reversal candidate over [sRank, tRank] with
// sRank < tRank, both within the route.
func NewReverseTwoOpt(in *Input, st *SolutionState, route *TWRoute, vehicle, sRank, tRank int) *ReverseTwoOpt {
	return &ReverseTwoOpt{opBase: opBase{
		in: in, state: st,
		source: route, target: route,
		sVehicle: vehicle, sRank: sRank,
		tVehicle: vehicle, tRank: tRank,
	}}
}

func (op *ReverseTwoOpt) segment() []int {
	if op.reversed == nil {
		seg := op.source.Jobs[op.sRank : op.tRank+1]
		op.reversed = make([]int, len(seg))
		for i, j := range seg {
			op.reversed[len(seg)-1-i] = j
		}
	}
	return op.reversed
}

func (op *ReverseTwoOpt) Gain() int64 {
	if !op.gainComputed {
		prev := op.prevIndex(op.source, op.sRank)
		next := op.nextIndex(op.source, op.tRank)
		op.storedGain = op.seqCost(prev, op.source.Jobs[op.sRank:op.tRank+1], next) -
			op.seqCost(prev, op.segment(), next)
		op.gainComputed = true
	}
	return op.storedGain
}

func (op *ReverseTwoOpt) IsValid() bool {
	return op.source.IsValidAdditionForTW(op.in, op.segment(), op.sRank, op.tRank+1)
}

func (op *ReverseTwoOpt) Apply() {
	op.source.ReverseSegment(op.in, op.sRank, op.tRank)
}

func (op *ReverseTwoOpt) AdditionCandidates() []int { return nil }

func (op *ReverseTwoOpt) UpdateCandidates() []int { return []int{op.sVehicle} }
